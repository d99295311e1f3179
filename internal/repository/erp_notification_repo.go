package repository

import (
	"context"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ERPNotificationRepository interface {
	CreateTx(tx *gorm.DB, n *model.ERPNotification) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ERPNotification, error)
	Update(ctx context.Context, n *model.ERPNotification) error
	// ListPendingRetries returns pending notifications whose next_retry_at has
	// passed, oldest first — the retry cron's work queue.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.ERPNotification, error)
}

type erpNotificationRepo struct{ db *gorm.DB }

func NewERPNotificationRepository(db *gorm.DB) ERPNotificationRepository {
	return &erpNotificationRepo{db: db}
}

func (r *erpNotificationRepo) CreateTx(tx *gorm.DB, n *model.ERPNotification) error {
	return tx.Create(n).Error
}

func (r *erpNotificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ERPNotification, error) {
	var n model.ERPNotification
	err := r.db.WithContext(ctx).First(&n, id).Error
	return &n, err
}

func (r *erpNotificationRepo) Update(ctx context.Context, n *model.ERPNotification) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *erpNotificationRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.ERPNotification, error) {
	var notifications []model.ERPNotification
	err := r.db.WithContext(ctx).
		Where("status = 'pending' AND next_retry_at IS NOT NULL AND next_retry_at <= ?", now).
		Order("next_retry_at").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}
