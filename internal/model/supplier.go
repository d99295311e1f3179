package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier represents a delivery company allowed to book dock slots.
// CNPJ is the Brazilian business registration number — unique and immutable
// once set. IsActive blocks new bookings; IsDeleted is a soft delete that
// hides the supplier from all active listings.
type Supplier struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CNPJ        string    `gorm:"column:cnpj;uniqueIndex;not null"`
	Description string    `gorm:"not null"`
	IsActive    bool      `gorm:"not null;default:true"`
	IsDeleted   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Users        []User        `gorm:"foreignKey:SupplierID"`
	Appointments []Appointment `gorm:"foreignKey:SupplierID"`
}

func (Supplier) TableName() string { return "suppliers" }
