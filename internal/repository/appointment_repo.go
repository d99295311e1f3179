package repository

import (
	"context"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppointmentRepository interface {
	CreateTx(tx *gorm.DB, a *model.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	// FindByDateForUpdate reads all appointments on a date inside tx with a
	// row-level lock (SELECT … FOR UPDATE). The slot conflict check must run
	// on this locked read; the uni_appointments_slot unique index remains the
	// hard guarantee against phantom inserts.
	FindByDateForUpdate(tx *gorm.DB, date time.Time) ([]model.Appointment, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Appointment, error)
	ListWeek(ctx context.Context, from, to time.Time) ([]model.Appointment, error)
	CountActiveBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error)
	UpdateTx(tx *gorm.DB, a *model.Appointment) error
	Update(ctx context.Context, a *model.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB
}

type appointmentRepo struct{ db *gorm.DB }

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository { return &appointmentRepo{db: db} }

func (r *appointmentRepo) DB() *gorm.DB { return r.db }

func (r *appointmentRepo) CreateTx(tx *gorm.DB, a *model.Appointment) error {
	return tx.Create(a).Error
}

func (r *appointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var a model.Appointment
	err := r.db.WithContext(ctx).Preload("Supplier").First(&a, id).Error
	return &a, err
}

func (r *appointmentRepo) FindByDateForUpdate(tx *gorm.DB, date time.Time) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("date = ?", date).
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepo) ListByDate(ctx context.Context, date time.Time) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.WithContext(ctx).Preload("Supplier").
		Where("date = ?", date).
		Order("time").
		Find(&appointments).Error
	return appointments, err
}

func (r *appointmentRepo) ListWeek(ctx context.Context, from, to time.Time) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.WithContext(ctx).Preload("Supplier").
		Where("date >= ? AND date <= ?", from, to).
		Order("date, time").
		Find(&appointments).Error
	return appointments, err
}

// CountActiveBySupplier counts bookings that block supplier deletion
// (scheduled or checked in; checked out does not block).
func (r *appointmentRepo) CountActiveBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("supplier_id = ? AND status IN ?", supplierID, []string{model.StatusScheduled, model.StatusCheckedIn}).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepo) UpdateTx(tx *gorm.DB, a *model.Appointment) error {
	return tx.Save(a).Error
}

func (r *appointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *appointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Appointment{}, id).Error
}
