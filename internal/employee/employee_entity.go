package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// DefaultLeaveBalance is granted to every new employee record.
const DefaultLeaveBalance = 20

type Employee struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Email      string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_employee_email"`
	Department string    `gorm:"type:varchar(100)"`
	Role       string    `gorm:"type:varchar(20);not null;default:'employee'"`
	HireDate   time.Time `gorm:"type:date;not null"`

	// LeaveBalance is written only through Repository.DeductBalance; the
	// conditional UPDATE keeps it from ever going negative.
	LeaveBalance int `gorm:"type:int;not null;default:20"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
