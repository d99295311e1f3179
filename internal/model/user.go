package model

import (
	"time"

	"github.com/google/uuid"
)

// Role values carried in JWT claims and checked by the middleware.
const (
	RoleAdmin    = "admin"
	RoleSupplier = "supplier"
)

// User stores portal accounts with role-based access.
// Role: "admin" | "supplier". SupplierID is set only for supplier accounts;
// admins have no supplier binding. Users are never deleted — they are
// deactivated when their supplier is soft-deleted.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(20);not null"`
	SupplierID   *uuid.UUID `gorm:"type:uuid"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }
