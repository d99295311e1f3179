package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/config"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/infra"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/repository"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/router"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Start the goroutine worker pool for async tasks (ERP delivery, email).
	// Worker handlers are wired here (composition root) so the pool has full
	// access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	erpClient := infra.NewERPClient(cfg.ERPGatewayURL, cfg.ERPFacilityCode)
	mailer := infra.NewMailer(cfg)
	notifRepo := repository.NewERPNotificationRepository(db)

	workerHandlers := worker.WorkerHandlers{
		ERP:   worker.NewERPWorker(erpClient, notifRepo),
		Email: worker.NewEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	// Circuit breaker guards the ERP gateway; shared between the retry cron
	// and the health endpoint.
	erpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		NotifRepo: notifRepo,
		ERPClient: erpClient,
		CB:        erpCB,
		RDB:       rdb,
	})

	r := router.New(cfg, db, rdb, erpCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("scheduling portal listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
