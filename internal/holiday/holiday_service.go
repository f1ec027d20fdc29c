package holiday

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	holidayerrors "go-leavedesk/internal/holiday/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// CalendarCacheKey caches the holiday listing; the leave engine reads the
// calendar on every submission, so this is the hottest read path.
const CalendarCacheKey = "holidays:all"

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	GetAll(ctx context.Context) ([]HolidayResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error) {
	s.logger.Debug("create holiday requested",
		zap.String("name", req.Name),
		zap.String("date", req.Date),
	)

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		s.logger.Warn("create holiday invalid date", zap.String("date", req.Date), zap.Error(err))
		return HolidayResponse{}, holidayerrors.ErrInvalidDateFormat
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create holiday begin tx failed", zap.Error(err))
		return HolidayResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// Duplicate dates permitted by design; no uniqueness check here.
	h := &Holiday{
		ID:   uuid.New(),
		Name: req.Name,
		Date: date,
		Type: req.Type,
	}

	if err := qtx.Create(ctx, h); err != nil {
		s.logger.Error("create holiday persist failed", zap.Error(err))
		return HolidayResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create holiday commit failed", zap.Error(err))
		return HolidayResponse{}, err
	}

	s.invalidateCalendarCache(ctx)
	s.logger.Info("create holiday success",
		zap.String("holiday_id", h.ID.String()),
		zap.String("date", req.Date),
	)

	return mapToResponse(*h), nil
}

func (s *service) GetAll(ctx context.Context) ([]HolidayResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, CalendarCacheKey).Result(); err == nil {
			var resp []HolidayResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(CalendarCacheKey, func() (interface{}, error) {
		holidays, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(holidays)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, CalendarCacheKey, jsonData, 1*time.Hour)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]HolidayResponse), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	s.logger.Debug("delete holiday requested", zap.String("holiday_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return holidayerrors.ErrInvalidHolidayID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return holidayerrors.ErrHolidayNotFound
		}
		return err
	}
	if err := qtx.Delete(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateCalendarCache(ctx)
	s.logger.Info("delete holiday success", zap.String("holiday_id", id))
	return nil
}

func (s *service) invalidateCalendarCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, CalendarCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate holiday cache",
			zap.Error(err),
			zap.String("key", CalendarCacheKey),
		)
	}
}

func mapToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:        h.ID.String(),
		Name:      h.Name,
		Date:      h.Date.Format("2006-01-02"),
		Type:      h.Type,
		CreatedAt: h.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(holidays []Holiday) []HolidayResponse {
	resp := make([]HolidayResponse, len(holidays))
	for i, h := range holidays {
		resp[i] = mapToResponse(h)
	}
	return resp
}
