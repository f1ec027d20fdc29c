package holiday

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypePublic  = "public"
	TypeCompany = "company"
)

// Holiday records are immutable once created; there is no update path.
// Duplicate dates are allowed on purpose.
type Holiday struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Date      time.Time `gorm:"type:date;not null;index"`
	Type      string    `gorm:"type:varchar(20);not null;default:'public'"`
	CreatedAt time.Time
}
