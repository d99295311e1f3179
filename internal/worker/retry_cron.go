package worker

// retry_cron.go
// Background goroutine that periodically re-attempts ERP deliveries for
// notifications stuck in status='pending' with a next_retry_at in the past.
// Uses the circuit breaker to avoid hammering a downed gateway.

import (
	"context"
	"fmt"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/infra"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	// MaxDeliveryRetries counts cron rounds, not individual HTTP attempts.
	MaxDeliveryRetries = 5
)

// computeRetryBackoff spaces cron rounds out: 1m, 2m, 4m … capped at 30m.
func computeRetryBackoff(retryCount int) time.Duration {
	backoff := time.Duration(1<<uint(retryCount-1)) * time.Minute
	if backoff > 30*time.Minute || backoff <= 0 {
		return 30 * time.Minute
	}
	return backoff
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	NotifRepo repository.ERPNotificationRepository
	ERPClient *infra.ERPClient
	CB        *infra.CircuitBreaker
	RDB       *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries pending notifications, and re-attempts delivery through the
// circuit breaker. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If the breaker is open, skip the whole tick
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	notifications, err := cfg.NotifRepo.ListPendingRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(notifications) == 0 {
		return
	}

	log.Info().Int("count", len(notifications)).Msg("retry_cron: processing pending notifications")

	for i := range notifications {
		notif := &notifications[i]

		// Re-check before each call — the breaker may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		var erpResp *infra.ERPResponse
		cbErr := cfg.CB.Execute(func() error {
			resp, err := cfg.ERPClient.Deliver(ctx, []byte(notif.Payload))
			if err != nil {
				return err
			}
			erpResp = resp
			return nil
		})

		if cbErr != nil {
			notif.RetryCount++
			errMsg := cbErr.Error()
			notif.LastError = &errMsg
			nextRetry := time.Now().Add(computeRetryBackoff(notif.RetryCount))
			notif.NextRetryAt = &nextRetry

			if notif.RetryCount >= MaxDeliveryRetries {
				notif.Status = "error"
				notif.NextRetryAt = nil
				log.Error().
					Str("notification_id", notif.ID.String()).
					Str("appointment_id", notif.AppointmentID.String()).
					Int("retries", notif.RetryCount).
					Msg("retry_cron: max retries exceeded, moving to error/DLQ")

				payload := fmt.Sprintf(`{"notification_id":"%s","appointment_id":"%s"}`, notif.ID, notif.AppointmentID)
				SendToDLQ(ctx, cfg.RDB, QueueERP, "erp_delivery", []byte(payload),
					fmt.Sprintf("max retries (%d) exceeded: %s", MaxDeliveryRetries, errMsg),
					notif.RetryCount)
			} else {
				log.Warn().
					Str("notification_id", notif.ID.String()).
					Int("retry_count", notif.RetryCount).
					Time("next_retry_at", *notif.NextRetryAt).
					Msg("retry_cron: delivery retry failed, scheduled next attempt")
			}

			_ = cfg.NotifRepo.Update(ctx, notif)
			continue
		}

		if erpResp != nil && erpResp.Accepted {
			now := time.Now()
			notif.Status = "delivered"
			notif.DeliveredAt = &now
			notif.NextRetryAt = nil
			notif.LastError = nil
			_ = cfg.NotifRepo.Update(ctx, notif)

			log.Info().
				Str("notification_id", notif.ID.String()).
				Str("protocol", erpResp.Protocol).
				Int("total_retries", notif.RetryCount).
				Msg("retry_cron: delivered after retry")
		} else {
			notif.Status = "error"
			msg := "gateway rejected the document"
			if erpResp != nil && erpResp.Message != "" {
				msg = erpResp.Message
			}
			notif.LastError = &msg
			notif.NextRetryAt = nil
			_ = cfg.NotifRepo.Update(ctx, notif)
			log.Warn().
				Str("notification_id", notif.ID.String()).
				Str("reason", msg).
				Msg("retry_cron: gateway rejected on retry")
		}
	}
}
