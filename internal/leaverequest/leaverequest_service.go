package leaverequest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-leavedesk/internal/employee"
	employeeerrors "go-leavedesk/internal/employee/errors"
	"go-leavedesk/internal/events"
	"go-leavedesk/internal/holiday"
	leaverequesterrors "go-leavedesk/internal/leaverequest/errors"
	"go-leavedesk/internal/messaging/kafka"
	"go-leavedesk/internal/shared/apperror"
	"go-leavedesk/internal/shared/clock"
	"go-leavedesk/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leaverequest_service.go -destination=mock/leaverequest_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, employeeID string, req SubmitLeaveRequest) (LeaveRequestResponse, error)
	GetAll(ctx context.Context, actorEmployeeID string, canReadAll bool) ([]LeaveRequestResponse, error)
	GetByID(ctx context.Context, id string) (LeaveRequestResponse, error)
	Decide(ctx context.Context, id, decision, reviewerEmployeeID string) (LeaveRequestResponse, error)
}

type service struct {
	db           *sql.DB
	repo         Repository
	employeeRepo employee.Repository
	holidayRepo  holiday.Repository
	outbox       kafka.OutboxRepository
	rdb          *redis.Client
	clk          clock.Clock
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	holidayRepo holiday.Repository,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, employeeRepo, holidayRepo, nil, nil, clk, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	holidayRepo holiday.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leaverequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.service")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		holidayRepo:  holidayRepo,
		outbox:       outboxRepo,
		rdb:          rdb,
		clk:          clk,
		logger:       l,
	}
}

func (s *service) Submit(ctx context.Context, employeeID string, req SubmitLeaveRequest) (LeaveRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit leave request",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveRequestResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	emp, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return LeaveRequestResponse{}, err
	}

	startDate, endDate, days, err := s.validateSubmission(ctx, emp, req)
	if err != nil {
		s.logger.Warn("submit leave request rejected",
			zap.String("request_id", rid),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit leave request begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lr := &LeaveRequest{
		ID:            uuid.New(),
		EmployeeID:    employeeUUID,
		EmployeeName:  emp.Name,
		LeaveType:     req.LeaveType,
		StartDate:     startDate,
		EndDate:       endDate,
		DaysRequested: days,
		Reason:        req.Reason,
		Status:        StatusPending,
		CreatedAt:     s.clk.Now(),
	}

	if err := qtx.Create(ctx, lr); err != nil {
		s.logger.Error("submit leave request persist failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if s.outbox != nil {
		event := events.LeaveRequestSubmittedEvent{
			EventType:     "leave_request_submitted",
			RequestID:     rid,
			LeaveID:       lr.ID.String(),
			EmployeeID:    employeeID,
			LeaveType:     lr.LeaveType,
			DaysRequested: days,
			OccurredAt:    s.clk.Now(),
		}
		if err := s.queueOutboxEvent(ctx, tx, lr.ID.String(), rid, event.EventType, events.LeaveRequestSubmittedTopic, event); err != nil {
			s.logger.Error("submit leave request outbox persist failed", zap.Error(err))
			return LeaveRequestResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit leave request commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("submit leave request success",
		zap.String("request_id", rid),
		zap.String("leave_id", lr.ID.String()),
		zap.String("employee_id", employeeID),
		zap.Int("days_requested", days),
	)

	return mapToResponse(*lr), nil
}

// validateSubmission runs the rule chain in its fixed precedence order:
// leave type, date parse, range, past date, balance, holiday conflict. The
// first violated rule is returned so error selection stays deterministic.
func (s *service) validateSubmission(ctx context.Context, emp *employee.Employee, req SubmitLeaveRequest) (time.Time, time.Time, int, error) {
	if !IsValidLeaveType(req.LeaveType) {
		return time.Time{}, time.Time{}, 0, leaverequesterrors.ErrInvalidLeaveType
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}

	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, 0, leaverequesterrors.ErrInvalidDateRange
	}

	// The client checks this too, but the server is authoritative.
	if startDate.Before(s.clk.Today()) {
		return time.Time{}, time.Time{}, 0, leaverequesterrors.ErrDateInPast
	}

	days := inclusiveDays(startDate, endDate)
	if days > emp.LeaveBalance {
		return time.Time{}, time.Time{}, 0, leaverequesterrors.ErrInsufficientBalance
	}

	holidays, err := s.holidayRepo.FindInRange(ctx, startDate, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	if len(holidays) > 0 {
		names := make([]string, len(holidays))
		for i, h := range holidays {
			names[i] = h.Name
		}
		return time.Time{}, time.Time{}, 0, leaverequesterrors.ErrHolidayConflict.WithDetails(map[string]any{"holidays": names})
	}

	return startDate, endDate, days, nil
}

func (s *service) GetAll(ctx context.Context, actorEmployeeID string, canReadAll bool) ([]LeaveRequestResponse, error) {
	var (
		requests []LeaveRequest
		err      error
	)
	if canReadAll {
		requests, err = s.repo.FindAll(ctx)
	} else {
		requests, err = s.repo.FindAllByEmployee(ctx, actorEmployeeID)
	}
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveRequestResponse, error) {
	lr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrLeaveRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	return mapToResponse(*lr), nil
}

func (s *service) Decide(ctx context.Context, id, decision, reviewerEmployeeID string) (LeaveRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("decide leave request",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("decision", decision),
		zap.String("reviewer_id", reviewerEmployeeID),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidRequestID
	}
	if !IsValidDecision(decision) {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidDecision
	}

	// The route gate already requires the admin role; the reviewer record is
	// still resolved so the decision is attributed to a real admin even if a
	// stale token outlives a demotion.
	reviewer, err := s.employeeRepo.FindByID(ctx, reviewerEmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, apperror.ErrForbidden
		}
		return LeaveRequestResponse{}, err
	}
	if reviewer.Role != employee.RoleAdmin {
		return LeaveRequestResponse{}, apperror.ErrForbidden
	}

	lr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrLeaveRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide leave request begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.clk.Now()

	// Conditional on status = pending: only the first of two racing
	// reviewers flips the row, the loser sees InvalidTransition.
	transitioned, err := qtx.TransitionStatus(ctx, id, decision, now, reviewer.Name)
	if err != nil {
		s.logger.Error("decide leave request transition failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}
	if !transitioned {
		s.logger.Warn("decide leave request not pending",
			zap.String("leave_id", id),
			zap.String("current_status", lr.Status),
			zap.String("decision", decision),
		)
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidStatusTransition
	}

	// Balance deduction shares the transaction with the status flip; both
	// commit or neither does.
	if decision == StatusApproved {
		empQtx := s.employeeRepo.WithTx(tx)
		deducted, err := empQtx.DeductBalance(ctx, lr.EmployeeID.String(), lr.DaysRequested)
		if err != nil {
			s.logger.Error("decide leave request balance deduction failed",
				zap.String("leave_id", id),
				zap.Error(err),
			)
			return LeaveRequestResponse{}, err
		}
		if !deducted {
			return LeaveRequestResponse{}, leaverequesterrors.ErrInsufficientBalance
		}
	}

	if s.outbox != nil {
		event := events.LeaveRequestDecidedEvent{
			EventType:     "leave_request_decided",
			RequestID:     rid,
			LeaveID:       id,
			EmployeeID:    lr.EmployeeID.String(),
			Status:        decision,
			DaysRequested: lr.DaysRequested,
			ReviewedBy:    reviewer.Name,
			OccurredAt:    now,
		}
		if err := s.queueOutboxEvent(ctx, tx, id, rid, event.EventType, events.LeaveRequestDecidedTopic, event); err != nil {
			s.logger.Error("decide leave request outbox persist failed", zap.Error(err))
			return LeaveRequestResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide leave request commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	// Approval changed a balance the directory cache may still hold.
	if decision == StatusApproved && s.rdb != nil {
		if err := s.rdb.Del(ctx, employee.DirectoryCacheKey).Err(); err != nil {
			s.logger.Error("failed to invalidate directory cache after approval", zap.Error(err))
		}
	}

	lr.Status = decision
	lr.ReviewedAt = &now
	reviewerName := reviewer.Name
	lr.ReviewedBy = &reviewerName

	s.logger.Info("decide leave request success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("status", decision),
		zap.String("reviewed_by", reviewer.Name),
	)

	return mapToResponse(*lr), nil
}

func (s *service) queueOutboxEvent(ctx context.Context, tx *sql.Tx, aggregateID, requestID, eventType, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		AggregateType: "leave_request",
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaverequesterrors.ErrInvalidDateFormat
	}
	return t, nil
}

// inclusiveDays counts both endpoints: one day on = 1.
func inclusiveDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func mapToResponse(lr LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:            lr.ID.String(),
		EmployeeID:    lr.EmployeeID.String(),
		EmployeeName:  lr.EmployeeName,
		LeaveType:     lr.LeaveType,
		StartDate:     lr.StartDate.Format("2006-01-02"),
		EndDate:       lr.EndDate.Format("2006-01-02"),
		DaysRequested: lr.DaysRequested,
		Reason:        lr.Reason,
		Status:        lr.Status,
		CreatedAt:     lr.CreatedAt.UTC().Format(time.RFC3339),
	}
	if lr.ReviewedAt != nil {
		v := lr.ReviewedAt.UTC().Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	resp.ReviewedBy = lr.ReviewedBy
	return resp
}

func mapToListResponse(requests []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(requests))
	for i, lr := range requests {
		resp[i] = mapToResponse(lr)
	}
	return resp
}
