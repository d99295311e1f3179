package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment status values form a strictly forward state machine:
// scheduled → checked_in → checked_out. No skips, no reversals.
const (
	StatusScheduled  = "scheduled"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
)

// Appointment is one truck booking against the daily dock grid.
// Time is stored normalized as "HH:MM". At most one appointment may occupy a
// given (date, time) pair system-wide — enforced by the uni_appointments_slot
// unique index (see infra.applySchemaPatches).
type Appointment struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date          time.Time `gorm:"type:date;not null;index"`
	Time          string    `gorm:"type:varchar(5);not null"`
	PurchaseOrder string    `gorm:"not null"`
	TruckPlate    string    `gorm:"type:varchar(20);not null"`
	DriverName    string    `gorm:"not null"`
	Status        string    `gorm:"type:varchar(20);not null;default:'scheduled'"`
	// CheckInTime / CheckOutTime are set exactly once, by the matching transition.
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	SupplierID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

func (Appointment) TableName() string { return "appointments" }
