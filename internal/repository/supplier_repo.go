package repository

import (
	"context"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	CreateTx(tx *gorm.DB, s *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	FindByCNPJ(ctx context.Context, cnpj string) (*model.Supplier, error)
	List(ctx context.Context) ([]model.Supplier, error)
	Update(ctx context.Context, s *model.Supplier) error
	UpdateTx(tx *gorm.DB, s *model.Supplier) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) DB() *gorm.DB { return r.db }

func (r *supplierRepo) CreateTx(tx *gorm.DB, s *model.Supplier) error {
	return tx.Create(s).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *supplierRepo) FindByCNPJ(ctx context.Context, cnpj string) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).Where("cnpj = ?", cnpj).First(&s).Error
	return &s, err
}

// List returns all non-deleted suppliers (active and blocked alike).
func (r *supplierRepo) List(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.WithContext(ctx).Where("is_deleted = false").Order("description").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) Update(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *supplierRepo) UpdateTx(tx *gorm.DB, s *model.Supplier) error {
	return tx.Save(s).Error
}
