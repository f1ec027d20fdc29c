package holiday_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-leavedesk/internal/holiday"
	holidayerrors "go-leavedesk/internal/holiday/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepository struct {
	withTxFn      func(tx *sql.Tx) holiday.Repository
	createFn      func(ctx context.Context, h *holiday.Holiday) error
	findAllFn     func(ctx context.Context) ([]holiday.Holiday, error)
	findByIDFn    func(ctx context.Context, id string) (*holiday.Holiday, error)
	findInRangeFn func(ctx context.Context, start, end time.Time) ([]holiday.Holiday, error)
	deleteFn      func(ctx context.Context, id string) error
}

func (f *fakeRepository) WithTx(tx *sql.Tx) holiday.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeRepository) Create(ctx context.Context, h *holiday.Holiday) error {
	if f.createFn != nil {
		return f.createFn(ctx, h)
	}
	return nil
}

func (f *fakeRepository) FindAll(ctx context.Context) ([]holiday.Holiday, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (*holiday.Holiday, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindInRange(ctx context.Context, start, end time.Time) ([]holiday.Holiday, error) {
	if f.findInRangeFn != nil {
		return f.findInRangeFn(ctx, start, end)
	}
	return nil, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   holiday.Service
	repo      *fakeRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	dbRedis, redisMock := redismock.NewClientMock()

	repo := &fakeRepository{}
	svc := holiday.NewService(db, repo, dbRedis)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		redismock: redisMock,
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

func TestHolidayService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.redismock.ExpectDel(holiday.CalendarCacheKey).SetVal(1)

		deps.repo.createFn = func(ctx context.Context, h *holiday.Holiday) error {
			assert.Equal(t, "Independence Day", h.Name)
			assert.Equal(t, "2026-08-17", h.Date.Format("2006-01-02"))
			assert.Equal(t, holiday.TypePublic, h.Type)
			return nil
		}

		resp, err := deps.service.Create(ctx, holiday.CreateHolidayRequest{
			Name: "Independence Day",
			Date: "2026-08-17",
			Type: holiday.TypePublic,
		})

		assert.NoError(t, err)
		assert.Equal(t, "Independence Day", resp.Name)
		assert.Equal(t, "2026-08-17", resp.Date)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("duplicate dates are allowed", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.redismock.ExpectDel(holiday.CalendarCacheKey).SetVal(1)
		expectTx(t, deps.sqlMock, true)
		deps.redismock.ExpectDel(holiday.CalendarCacheKey).SetVal(1)

		created := 0
		deps.repo.createFn = func(ctx context.Context, h *holiday.Holiday) error {
			created++
			return nil
		}

		req := holiday.CreateHolidayRequest{Name: "Company Day", Date: "2026-10-01", Type: holiday.TypeCompany}
		_, err := deps.service.Create(ctx, req)
		assert.NoError(t, err)
		_, err = deps.service.Create(ctx, req)
		assert.NoError(t, err)

		assert.Equal(t, 2, created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative malformed date", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, holiday.CreateHolidayRequest{
			Name: "Broken",
			Date: "17/08/2026",
			Type: holiday.TypePublic,
		})

		assert.ErrorIs(t, err, holidayerrors.ErrInvalidDateFormat)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestHolidayService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the database", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expected := []holiday.HolidayResponse{
			{ID: uuid.New().String(), Name: "Independence Day", Date: "2026-08-17", Type: holiday.TypePublic},
		}
		jsonResp, _ := json.Marshal(expected)
		deps.redismock.ExpectGet(holiday.CalendarCacheKey).SetVal(string(jsonResp))

		dbCalls := 0
		deps.repo.findAllFn = func(ctx context.Context) ([]holiday.Holiday, error) {
			dbCalls++
			return nil, nil
		}

		resp, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, 0, dbCalls)
	})

	t.Run("cache miss reads the database", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		rows := []holiday.Holiday{
			{ID: uuid.New(), Name: "Company Day", Date: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Type: holiday.TypeCompany},
		}
		cached, _ := json.Marshal([]holiday.HolidayResponse{
			{
				ID:        rows[0].ID.String(),
				Name:      rows[0].Name,
				Date:      rows[0].Date.Format("2006-01-02"),
				Type:      rows[0].Type,
				CreatedAt: rows[0].CreatedAt.UTC().Format(time.RFC3339),
			},
		})

		deps.redismock.ExpectGet(holiday.CalendarCacheKey).RedisNil()
		deps.redismock.ExpectSet(holiday.CalendarCacheKey, cached, 1*time.Hour).SetVal("OK")

		deps.repo.findAllFn = func(ctx context.Context) ([]holiday.Holiday, error) {
			return rows, nil
		}

		resp, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "Company Day", resp[0].Name)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("negative database failure", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.redismock.ExpectGet(holiday.CalendarCacheKey).RedisNil()
		deps.repo.findAllFn = func(ctx context.Context) ([]holiday.Holiday, error) {
			return nil, errors.New("database connection lost")
		}

		_, err := deps.service.GetAll(ctx)

		assert.Error(t, err)
	})
}

func TestHolidayService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.redismock.ExpectDel(holiday.CalendarCacheKey).SetVal(1)

		id := uuid.New()
		deps.repo.findByIDFn = func(ctx context.Context, gotID string) (*holiday.Holiday, error) {
			return &holiday.Holiday{ID: id, Name: "Company Day"}, nil
		}
		deleteCalls := 0
		deps.repo.deleteFn = func(ctx context.Context, gotID string) error {
			deleteCalls++
			assert.Equal(t, id.String(), gotID)
			return nil
		}

		err := deps.service.Delete(ctx, id.String())

		assert.NoError(t, err)
		assert.Equal(t, 1, deleteCalls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative malformed id", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		err := deps.service.Delete(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, holidayerrors.ErrInvalidHolidayID)
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*holiday.Holiday, error) {
			return nil, gorm.ErrRecordNotFound
		}

		err := deps.service.Delete(ctx, uuid.NewString())

		assert.ErrorIs(t, err, holidayerrors.ErrHolidayNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
