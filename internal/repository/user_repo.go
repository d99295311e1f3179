package repository

import (
	"context"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	CreateTx(tx *gorm.DB, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindBySupplierID(ctx context.Context, supplierID uuid.UUID) ([]model.User, error)
	DeactivateBySupplierTx(tx *gorm.DB, supplierID uuid.UUID) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) CreateTx(tx *gorm.DB, u *model.User) error {
	return tx.Create(u).Error
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	return &u, err
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	return &u, err
}

func (r *userRepo) FindBySupplierID(ctx context.Context, supplierID uuid.UUID) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Where("supplier_id = ?", supplierID).Find(&users).Error
	return users, err
}

// DeactivateBySupplierTx disables every account bound to a supplier. Called
// from the supplier soft-delete transaction.
func (r *userRepo) DeactivateBySupplierTx(tx *gorm.DB, supplierID uuid.UUID) error {
	return tx.Model(&model.User{}).Where("supplier_id = ?", supplierID).Update("is_active", false).Error
}
