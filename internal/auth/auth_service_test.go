package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-leavedesk/internal/auth"
	autherrors "go-leavedesk/internal/auth/errors"
	"go-leavedesk/internal/employee"
	"go-leavedesk/internal/shared/clock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeAuthRepository struct {
	createFn     func(ctx context.Context, u *auth.User) error
	getByEmailFn func(ctx context.Context, email string) (*auth.User, error)
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*auth.User, error)
}

func (f *fakeAuthRepository) WithTx(tx *sql.Tx) auth.Repository {
	return f
}

func (f *fakeAuthRepository) Create(ctx context.Context, u *auth.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return nil
}

func (f *fakeAuthRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeEmployeeRepository struct {
	createFn func(ctx context.Context, e *employee.Employee) error
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository {
	return f
}

func (f *fakeEmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	return nil
}

func (f *fakeEmployeeRepository) FindAll(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) Update(ctx context.Context, e *employee.Employee) error {
	return nil
}

func (f *fakeEmployeeRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeEmployeeRepository) DeductBalance(ctx context.Context, id string, days int) (bool, error) {
	return true, nil
}

type fakeEmployeeService struct {
	createFn  func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error)
	getAllFn  func(ctx context.Context) ([]employee.EmployeeResponse, error)
	getByIDFn func(ctx context.Context, id string) (employee.EmployeeResponse, error)
	updateFn  func(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (f *fakeEmployeeService) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return employee.EmployeeResponse{}, nil
}

func (f *fakeEmployeeService) GetAll(ctx context.Context) ([]employee.EmployeeResponse, error) {
	if f.getAllFn != nil {
		return f.getAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeService) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return employee.EmployeeResponse{}, nil
}

func (f *fakeEmployeeService) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return employee.EmployeeResponse{}, nil
}

func (f *fakeEmployeeService) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type authServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service auth.Service
	repo    *fakeAuthRepository
	empRepo *fakeEmployeeRepository
	empSvc  *fakeEmployeeService
}

var fixedNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func setupAuthServiceTest(t *testing.T, clk clock.Clock) *authServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeAuthRepository{}
	empRepo := &fakeEmployeeRepository{}
	empSvc := &fakeEmployeeService{}
	svc := auth.NewService(db, repo, empRepo, empSvc, nil, clk)

	return &authServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		empRepo: empRepo,
		empSvc:  empSvc,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("success", func(t *testing.T) {
		deps := setupAuthServiceTest(t, clock.Fixed(fixedNow))
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		var createdEmployeeID uuid.UUID
		deps.empRepo.createFn = func(ctx context.Context, e *employee.Employee) error {
			assert.Equal(t, "Dewi Lestari", e.Name)
			assert.Equal(t, "dewi@example.com", e.Email)
			assert.Equal(t, employee.RoleEmployee, e.Role)
			assert.Equal(t, "2026-09-01", e.HireDate.Format("2006-01-02"))
			assert.Equal(t, employee.DefaultLeaveBalance, e.LeaveBalance)
			createdEmployeeID = e.ID
			return nil
		}
		deps.repo.createFn = func(ctx context.Context, u *auth.User) error {
			assert.Equal(t, createdEmployeeID, u.EmployeeID)
			assert.NotEqual(t, "secret123", u.Password)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")))
			return nil
		}

		resp, err := deps.service.Signup(ctx, auth.SignupRequest{
			Email:    "dewi@example.com",
			Password: "secret123",
			Name:     "Dewi Lestari",
		})

		assert.NoError(t, err)
		assert.Equal(t, createdEmployeeID.String(), resp.EmployeeID)
		assert.Equal(t, employee.RoleEmployee, resp.Role)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative email already registered", func(t *testing.T) {
		deps := setupAuthServiceTest(t, clock.Fixed(fixedNow))
		defer deps.db.Close()

		deps.repo.getByEmailFn = func(ctx context.Context, email string) (*auth.User, error) {
			return &auth.User{ID: uuid.New(), Email: email}, nil
		}

		_, err := deps.service.Signup(ctx, auth.SignupRequest{
			Email:    "dewi@example.com",
			Password: "secret123",
			Name:     "Dewi Lestari",
		})

		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative duplicate email lost the insert race", func(t *testing.T) {
		deps := setupAuthServiceTest(t, clock.Fixed(fixedNow))
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.empRepo.createFn = func(ctx context.Context, e *employee.Employee) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_email"}
		}

		_, err := deps.service.Signup(ctx, auth.SignupRequest{
			Email:    "dewi@example.com",
			Password: "secret123",
			Name:     "Dewi Lestari",
		})

		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative credential failure rolls back the profile", func(t *testing.T) {
		deps := setupAuthServiceTest(t, clock.Fixed(fixedNow))
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		employeeCreates := 0
		deps.empRepo.createFn = func(ctx context.Context, e *employee.Employee) error {
			employeeCreates++
			return nil
		}
		deps.repo.createFn = func(ctx context.Context, u *auth.User) error {
			return errors.New("connection reset by peer")
		}

		_, err := deps.service.Signup(ctx, auth.SignupRequest{
			Email:    "dewi@example.com",
			Password: "secret123",
			Name:     "Dewi Lestari",
		})

		assert.Error(t, err)
		// Both writes ran on the transaction, so the rollback asserted by
		// the sqlmock expectation discards the profile insert too.
		assert.Equal(t, 1, employeeCreates)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	t.Setenv("JWT_SECRET", "test-secret")

	userID := uuid.New()
	employeeID := uuid.New()
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)

	t.Run("success", func(t *testing.T) {
		deps := setupAuthServiceTest(t, clock.Fixed(fixedNow))
		defer deps.db.Close()

		deps.repo.getByEmailFn = func(ctx context.Context, email string) (*auth.User, error) {
			return &auth.User{ID: userID, EmployeeID: employeeID, Email: email, Password: string(hash)}, nil
		}
		deps.empSvc.getByIDFn = func(ctx context.Context, id string) (employee.EmployeeResponse, error) {
			assert.Equal(t, employeeID.String(), id)
			return employee.EmployeeResponse{ID: id, Name: "Dewi Lestari", Role: employee.RoleEmployee}, nil
		}

		access, refresh, resp, err := deps.service.Login(ctx, "dewi@example.com", "secret123")

		assert.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.Equal(t, userID.String(), resp.ID)
		assert.Equal(t, employeeID.String(), resp.EmployeeID)
	})

	t.Run("negative wrong password", func(t *testing.T) {
		deps := setupAuthServiceTest(t, clock.Fixed(fixedNow))
		defer deps.db.Close()

		deps.repo.getByEmailFn = func(ctx context.Context, email string) (*auth.User, error) {
			return &auth.User{ID: userID, EmployeeID: employeeID, Email: email, Password: string(hash)}, nil
		}

		_, _, _, err := deps.service.Login(ctx, "dewi@example.com", "wrong")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("negative unknown email", func(t *testing.T) {
		deps := setupAuthServiceTest(t, clock.Fixed(fixedNow))
		defer deps.db.Close()

		deps.repo.getByEmailFn = func(ctx context.Context, email string) (*auth.User, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, _, _, err := deps.service.Login(ctx, "nobody@example.com", "secret123")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	t.Setenv("JWT_SECRET", "test-secret")

	userID := uuid.New()
	employeeID := uuid.New()
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)

	setup := func(t *testing.T) *authServiceDeps {
		// System clock keeps the issued refresh token inside its validity
		// window when it is parsed back.
		deps := setupAuthServiceTest(t, clock.System())
		deps.repo.getByEmailFn = func(ctx context.Context, email string) (*auth.User, error) {
			return &auth.User{ID: userID, EmployeeID: employeeID, Email: email, Password: string(hash)}, nil
		}
		deps.repo.getByIDFn = func(ctx context.Context, id uuid.UUID) (*auth.User, error) {
			assert.Equal(t, userID, id)
			return &auth.User{ID: userID, EmployeeID: employeeID, Email: "dewi@example.com", Password: string(hash)}, nil
		}
		deps.empSvc.getByIDFn = func(ctx context.Context, id string) (employee.EmployeeResponse, error) {
			return employee.EmployeeResponse{ID: id, Name: "Dewi Lestari", Role: employee.RoleEmployee}, nil
		}
		return deps
	}

	t.Run("success", func(t *testing.T) {
		deps := setup(t)
		defer deps.db.Close()

		_, refresh, _, err := deps.service.Login(ctx, "dewi@example.com", "secret123")
		assert.NoError(t, err)

		access2, refresh2, resp, err := deps.service.RefreshToken(ctx, refresh)

		assert.NoError(t, err)
		assert.NotEmpty(t, access2)
		assert.NotEmpty(t, refresh2)
		assert.Equal(t, userID.String(), resp.ID)
	})

	t.Run("negative garbage token", func(t *testing.T) {
		deps := setup(t)
		defer deps.db.Close()

		_, _, _, err := deps.service.RefreshToken(ctx, "not-a-jwt")

		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates the self-service subset", func(t *testing.T) {
		deps := setupAuthServiceTest(t, clock.Fixed(fixedNow))
		defer deps.db.Close()

		employeeID := uuid.New().String()
		deps.empSvc.updateFn = func(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
			assert.Equal(t, employeeID, id)
			if assert.NotNil(t, req.Name) {
				assert.Equal(t, "Dewi L.", *req.Name)
			}
			assert.Nil(t, req.Role)
			assert.Nil(t, req.LeaveBalance)
			return employee.EmployeeResponse{ID: id, Name: *req.Name}, nil
		}

		name := "Dewi L."
		resp, err := deps.service.UpdateProfile(ctx, employeeID, auth.UpdateProfileRequest{Name: &name})

		assert.NoError(t, err)
		assert.Equal(t, "Dewi L.", resp.Name)
	})
}
