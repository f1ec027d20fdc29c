package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeInvalidLeaveType    = "INVALID_LEAVE_TYPE"
	CodeInvalidDateRange    = "INVALID_DATE_RANGE"
	CodeDateInPast          = "DATE_IN_PAST"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeHolidayConflict     = "HOLIDAY_CONFLICT"

	// Server errors (5xx)
	CodeInternalError    = "INTERNAL_ERROR"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)
