package leaverequest

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leaverequest_repo.go -destination=mock/leaverequest_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, lr *LeaveRequest) error
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	// TransitionStatus flips a pending request to its terminal status with a
	// single conditional UPDATE. Returns false when the request was not
	// pending anymore (already decided, or a concurrent reviewer won).
	TransitionStatus(ctx context.Context, id, toStatus string, reviewedAt time.Time, reviewedBy string) (bool, error)
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

// Create inserts via raw SQL so the write can share the caller's transaction
// with the outbox insert.
func (r *repository) Create(ctx context.Context, lr *LeaveRequest) error {
	query := `
INSERT INTO leave_requests (
	id, employee_id, employee_name, leave_type,
	start_date, end_date, days_requested, reason,
	status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
`

	_, err := r.execer().ExecContext(
		ctx, query,
		lr.ID, lr.EmployeeID, lr.EmployeeName, lr.LeaveType,
		lr.StartDate, lr.EndDate, lr.DaysRequested, lr.Reason,
		lr.Status, lr.CreatedAt,
	)
	return err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var lr LeaveRequest
	err := r.db.WithContext(ctx).First(&lr, "id = ?", id).Error
	return &lr, err
}

func (r *repository) TransitionStatus(ctx context.Context, id, toStatus string, reviewedAt time.Time, reviewedBy string) (bool, error) {
	query := `
UPDATE leave_requests
SET status = $2, reviewed_at = $3, reviewed_by = $4, updated_at = NOW()
WHERE id = $1 AND status = $5
`

	res, err := r.execer().ExecContext(ctx, query, id, toStatus, reviewedAt, reviewedBy, StatusPending)
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
