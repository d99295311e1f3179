package worker

// erp_worker.go
// Processes check-in delivery jobs from QueueERP: posts the stored payload to
// the ERP gateway with exponential backoff and records the outcome on the
// erp_notifications row. Rows that still fail stay pending with a
// next_retry_at so the retry cron can pick them up.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/infra"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ERPJobPayload is the job envelope sent to QueueERP.
type ERPJobPayload struct {
	NotificationID string `json:"notification_id"`
}

// ERPWorker delivers check-in documents to the ERP gateway.
type ERPWorker struct {
	erpClient *infra.ERPClient
	notifRepo repository.ERPNotificationRepository
}

func NewERPWorker(erpClient *infra.ERPClient, notifRepo repository.ERPNotificationRepository) *ERPWorker {
	return &ERPWorker{erpClient: erpClient, notifRepo: notifRepo}
}

// Process handles a single delivery job:
//  1. Parse ERPJobPayload from the job envelope
//  2. Fetch the erp_notifications row
//  3. POST the stored payload with exponential backoff (max 3 attempts)
//  4. Record the outcome: delivered, error (rejected), or pending for the cron
func (w *ERPWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ERPJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("erp_worker: invalid payload")
		return
	}

	notifID, err := uuid.Parse(payload.NotificationID)
	if err != nil {
		log.Error().Str("notification_id", payload.NotificationID).Msg("erp_worker: invalid notification_id")
		return
	}

	notif, err := w.notifRepo.FindByID(ctx, notifID)
	if err != nil {
		log.Error().Err(err).Str("notification_id", payload.NotificationID).Msg("erp_worker: notification not found")
		return
	}
	if notif.Status == "delivered" {
		// Queue replay after a crash — nothing to do
		return
	}

	var erpResp *infra.ERPResponse
	deliverErr := withRetry(ctx, 3, func(attempt int) error {
		resp, err := w.erpClient.Deliver(ctx, []byte(notif.Payload))
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("notification_id", notifID.String()).
				Msg("erp_worker: delivery attempt failed, retrying")
			return err
		}
		erpResp = resp
		return nil
	})

	now := time.Now()
	switch {
	case deliverErr != nil:
		// Stays pending — the retry cron takes over from here
		notif.RetryCount++
		errMsg := deliverErr.Error()
		notif.LastError = &errMsg
		nextRetry := now.Add(computeRetryBackoff(notif.RetryCount))
		notif.NextRetryAt = &nextRetry
		_ = w.notifRepo.Update(ctx, notif)
		log.Error().
			Err(deliverErr).
			Str("notification_id", notifID.String()).
			Time("next_retry_at", nextRetry).
			Msg("erp_worker: delivery failed after all attempts, handed to retry cron")

	case erpResp != nil && erpResp.Accepted:
		notif.Status = "delivered"
		notif.DeliveredAt = &now
		notif.NextRetryAt = nil
		notif.LastError = nil
		_ = w.notifRepo.Update(ctx, notif)
		log.Info().
			Str("notification_id", notifID.String()).
			Str("protocol", erpResp.Protocol).
			Msg("erp_worker: check-in delivered")

	default:
		// Gateway answered but refused the document — no point retrying
		notif.Status = "error"
		msg := "gateway rejected the document"
		if erpResp != nil && erpResp.Message != "" {
			msg = erpResp.Message
		}
		notif.LastError = &msg
		notif.NextRetryAt = nil
		_ = w.notifRepo.Update(ctx, notif)
		log.Warn().
			Str("notification_id", notifID.String()).
			Str("reason", msg).
			Msg("erp_worker: gateway rejected check-in")
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
