package employee

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id string) error
	// DeductBalance atomically subtracts days from the employee's balance.
	// Returns false when the employee is missing or the remaining balance
	// would go negative; nothing is written in that case.
	DeductBalance(ctx context.Context, id string, days int) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// Create inserts via raw SQL so the write can share the caller's
// transaction (signup pairs it with the credential insert).
func (r *repository) Create(ctx context.Context, e *Employee) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.UpdatedAt = e.CreatedAt

	query := `
INSERT INTO employees (
	id, name, email, department, role,
	hire_date, leave_balance, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
`

	_, err := r.execer().ExecContext(
		ctx, query,
		e.ID, e.Name, e.Email, e.Department, e.Role,
		e.HireDate, e.LeaveBalance, e.CreatedAt,
	)
	return err
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Employee{}, "id = ?", id).Error
}

func (r *repository) DeductBalance(ctx context.Context, id string, days int) (bool, error) {
	// Raw conditional UPDATE so the guard and the write are one statement,
	// and so it can run on the caller's transaction.
	query := `
UPDATE employees
SET leave_balance = leave_balance - $2, updated_at = NOW()
WHERE id = $1
	AND deleted_at IS NULL
	AND leave_balance >= $2
`

	res, err := r.execer().ExecContext(ctx, query, id, days)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return failingExecer{err: err}
	}
	return sqlDB
}

type failingExecer struct{ err error }

func (f failingExecer) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, f.err
}
