package leaverequest

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	TypeSick      = "Sick"
	TypeVacation  = "Vacation"
	TypePersonal  = "Personal"
	TypeEmergency = "Emergency"
)

func IsValidLeaveType(t string) bool {
	switch t {
	case TypeSick, TypeVacation, TypePersonal, TypeEmergency:
		return true
	default:
		return false
	}
}

func IsValidDecision(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

type LeaveRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee"`

	// EmployeeName is a point-in-time snapshot taken at submission; later
	// renames do not propagate to historical requests.
	EmployeeName string `gorm:"type:varchar(255);not null"`

	LeaveType string    `gorm:"type:varchar(30);not null"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`

	// DaysRequested is the inclusive day count, computed once at submission
	// and never recomputed.
	DaysRequested int    `gorm:"type:int;not null"`
	Reason        string `gorm:"type:text;not null"`

	Status     string `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedAt *time.Time
	ReviewedBy *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
