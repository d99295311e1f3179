package model

import (
	"time"

	"github.com/google/uuid"
)

// ERPNotification tracks delivery of a check-in payload to the ERP gateway.
// Status: "pending" | "delivered" | "error".
// Rows are written in the same transaction as the check-in; the worker pool
// and the retry cron own the transitions afterwards.
type ERPNotification struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Payload is the serialized check-in document exactly as sent to the ERP.
	Payload     string `gorm:"type:jsonb;not null"`
	Status      string `gorm:"type:varchar(20);not null;default:'pending'"`
	RetryCount  int    `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ERPNotification) TableName() string { return "erp_notifications" }
