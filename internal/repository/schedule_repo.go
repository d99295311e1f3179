package repository

import (
	"context"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduleRepository covers both override tiers: date-specific
// ScheduleConfig and weekday-generic DefaultSchedule.
type ScheduleRepository interface {
	FindConfig(ctx context.Context, date time.Time, timeStr string) (*model.ScheduleConfig, error)
	ListConfigsByDate(ctx context.Context, date time.Time) ([]model.ScheduleConfig, error)
	SaveConfig(ctx context.Context, c *model.ScheduleConfig) error
	DeleteConfig(ctx context.Context, id uuid.UUID) error

	FindDefault(ctx context.Context, dayOfWeek *model.Weekday, timeStr string) (*model.DefaultSchedule, error)
	// ListDefaultsForDay returns day-specific rows for the weekday plus the
	// all-days (NULL) rows; precedence between them is the resolver's concern.
	ListDefaultsForDay(ctx context.Context, dayOfWeek model.Weekday) ([]model.DefaultSchedule, error)
	ListDefaults(ctx context.Context) ([]model.DefaultSchedule, error)
	SaveDefault(ctx context.Context, d *model.DefaultSchedule) error
	DeleteDefault(ctx context.Context, id uuid.UUID) error
}

type scheduleRepo struct{ db *gorm.DB }

func NewScheduleRepository(db *gorm.DB) ScheduleRepository { return &scheduleRepo{db: db} }

func (r *scheduleRepo) FindConfig(ctx context.Context, date time.Time, timeStr string) (*model.ScheduleConfig, error) {
	var c model.ScheduleConfig
	err := r.db.WithContext(ctx).Where("date = ? AND time = ?", date, timeStr).First(&c).Error
	return &c, err
}

func (r *scheduleRepo) ListConfigsByDate(ctx context.Context, date time.Time) ([]model.ScheduleConfig, error) {
	var configs []model.ScheduleConfig
	err := r.db.WithContext(ctx).Where("date = ?", date).Order("time").Find(&configs).Error
	return configs, err
}

func (r *scheduleRepo) SaveConfig(ctx context.Context, c *model.ScheduleConfig) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *scheduleRepo) DeleteConfig(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ScheduleConfig{}, id).Error
}

func (r *scheduleRepo) FindDefault(ctx context.Context, dayOfWeek *model.Weekday, timeStr string) (*model.DefaultSchedule, error) {
	var d model.DefaultSchedule
	q := r.db.WithContext(ctx).Where("time = ?", timeStr)
	if dayOfWeek == nil {
		q = q.Where("day_of_week IS NULL")
	} else {
		q = q.Where("day_of_week = ?", *dayOfWeek)
	}
	err := q.First(&d).Error
	return &d, err
}

func (r *scheduleRepo) ListDefaultsForDay(ctx context.Context, dayOfWeek model.Weekday) ([]model.DefaultSchedule, error) {
	var defaults []model.DefaultSchedule
	err := r.db.WithContext(ctx).
		Where("day_of_week = ? OR day_of_week IS NULL", dayOfWeek).
		Order("time").
		Find(&defaults).Error
	return defaults, err
}

func (r *scheduleRepo) ListDefaults(ctx context.Context) ([]model.DefaultSchedule, error) {
	var defaults []model.DefaultSchedule
	err := r.db.WithContext(ctx).Order("day_of_week NULLS FIRST, time").Find(&defaults).Error
	return defaults, err
}

func (r *scheduleRepo) SaveDefault(ctx context.Context, d *model.DefaultSchedule) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *scheduleRepo) DeleteDefault(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.DefaultSchedule{}, id).Error
}
