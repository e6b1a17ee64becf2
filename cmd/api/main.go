package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billing-webhook-service/config"
	httpHandler "billing-webhook-service/internal/adapter/http/handler"
	"billing-webhook-service/internal/app"
	"billing-webhook-service/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("BWS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("billing-webhook-api", cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting billing webhook API")

	ctx := context.Background()

	a, cleanup, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer cleanup()

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Ingestor:       a.Ingestor,
		Scheduler:      a.Scheduler,
		Events:         a.Events,
		Subscriptions:  a.Subscriptions,
		TokenSvc:       a.TokenSvc,
		HealthCheckers: a.HealthCheckers,
		RetryDefaults:  a.RetryDefaults,
		Metrics:        a.Metrics,
		Gatherer:       a.Registry,
		MetricsPath:    cfg.Metrics.Path,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
