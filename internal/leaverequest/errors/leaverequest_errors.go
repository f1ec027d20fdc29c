package leaverequesterrors

import (
	"net/http"

	"go-leavedesk/internal/shared/apperror"
)

var (
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrLeaveRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidLeaveType,
		"leave_type must be one of Sick, Vacation, Personal, Emergency",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidDateRange,
		"end_date must be on or after start_date",
		http.StatusBadRequest,
	)
	ErrDateInPast = apperror.New(
		apperror.CodeDateInPast,
		"start_date cannot be in the past",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance for the requested period",
		http.StatusBadRequest,
	)
	// HolidayConflict responses carry the colliding holiday names as details.
	ErrHolidayConflict = apperror.New(
		apperror.CodeHolidayConflict,
		"requested period overlaps one or more holidays",
		http.StatusBadRequest,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"status must be approved or rejected",
		http.StatusBadRequest,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidTransition,
		"leave request has already been decided",
		http.StatusBadRequest,
	)
)
