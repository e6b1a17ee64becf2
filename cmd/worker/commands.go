package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billing-webhook-service/config"
	"billing-webhook-service/internal/app"
	"billing-webhook-service/internal/core/ports"
	"billing-webhook-service/internal/metrics"
	"billing-webhook-service/pkg/apperror"
	"billing-webhook-service/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// runTimeout bounds a single scheduled batch.
const runTimeout = 5 * time.Minute

func runCmd(configPath *string) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the retry scheduler on its cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log := logger.New("billing-webhook-worker", cfg.Log.Level, cfg.Log.Pretty)

			a, cleanup, err := app.Build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			c := cron.New(cron.WithSeconds())
			if _, err := c.AddFunc(cfg.Retry.Schedule, func() {
				runBatch(a.Scheduler, a.RetryDefaults, log)
			}); err != nil {
				return fmt.Errorf("invalid retry.schedule %q: %w", cfg.Retry.Schedule, err)
			}

			var metricsSrv *http.Server
			if a.Metrics != nil && metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle(cfg.Metrics.Path, metrics.Handler(a.Registry))
				metricsSrv = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
				go func() {
					if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error().Err(err).Msg("metrics server failed")
					}
				}()
			}

			c.Start()
			log.Info().
				Str("schedule", cfg.Retry.Schedule).
				Int("max_batch", a.RetryDefaults.MaxBatch).
				Int("max_retry_count", a.RetryDefaults.MaxRetryCount).
				Msg("Retry worker started")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			log.Info().Msg("Shutting down gracefully...")

			if metricsSrv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				_ = metricsSrv.Shutdown(shutdownCtx)
				cancel()
			}

			stopped := c.Stop()
			select {
			case <-stopped.Done():
				log.Info().Msg("Retry worker stopped")
			case <-time.After(runTimeout):
				log.Warn().Msg("Retry worker forced to stop after timeout")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9091", "listen address for /metrics (empty disables)")
	return cmd
}

// runBatch executes one scheduled run. A held lock is routine when several
// workers share a schedule.
func runBatch(scheduler ports.RetryScheduler, opts ports.RetryOptions, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := scheduler.Retry(ctx, opts); err != nil {
		if apperror.Code(err) == apperror.ErrLockHeld().Code {
			log.Debug().Msg("retry run skipped, lock held")
			return
		}
		log.Error().Err(err).Msg("retry run failed")
	}
}

func onceCmd(configPath *string) *cobra.Command {
	var opts ports.RetryOptions

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single retry batch and print the report as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log := logger.New("billing-webhook-worker", cfg.Log.Level, cfg.Log.Pretty)

			a, cleanup, err := app.Build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := a.Scheduler.Retry(cmd.Context(), mergeOptions(a.RetryDefaults, opts))
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}

	cmd.Flags().IntVar(&opts.MaxBatch, "max-batch", 0, "rows per run (default from config)")
	cmd.Flags().IntVar(&opts.MaxRetryCount, "max-retry-count", 0, "retry ceiling (default from config)")
	cmd.Flags().DurationVar(&opts.PendingMinAge, "pending-min-age", -1, "skip pending rows younger than this (default from config)")
	return cmd
}

// mergeOptions overlays flag values on the configured defaults. A negative
// PendingMinAge means the flag was not set.
func mergeOptions(defaults, flags ports.RetryOptions) ports.RetryOptions {
	out := defaults
	if flags.MaxBatch > 0 {
		out.MaxBatch = flags.MaxBatch
	}
	if flags.MaxRetryCount > 0 {
		out.MaxRetryCount = flags.MaxRetryCount
	}
	if flags.PendingMinAge >= 0 {
		out.PendingMinAge = flags.PendingMinAge
	}
	return out
}

func tokenCmd(configPath *string) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator JWT for the admin endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cfg.JWT.Secret == "" {
				return errors.New("jwt.secret is not configured")
			}

			token, expiry, err := app.Tokens(cfg).Generate(subject)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"token": token, "expiry": expiry.Unix()})
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
