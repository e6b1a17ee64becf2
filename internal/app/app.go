// Package app assembles the webhook pipeline from configuration. Both the API
// server and the retry worker build on it.
package app

import (
	"context"
	"fmt"

	"billing-webhook-service/config"
	pgStorage "billing-webhook-service/internal/adapter/storage/postgres"
	redisStorage "billing-webhook-service/internal/adapter/storage/redis"
	"billing-webhook-service/internal/core/ports"
	"billing-webhook-service/internal/metrics"
	"billing-webhook-service/internal/service"
	"billing-webhook-service/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// App holds the wired services and the handles that need closing.
type App struct {
	Events        ports.WebhookEventRepository
	Subscriptions ports.SubscriptionRepository
	Payments      ports.PaymentRepository

	Router    *service.Router
	Ingestor  *service.Ingestor
	Scheduler *service.RetryScheduler
	TokenSvc  *service.JWTTokenService

	Metrics  *metrics.Metrics // nil when metrics are disabled
	Registry *prometheus.Registry

	HealthCheckers []ports.HealthChecker
	RetryDefaults  ports.RetryOptions
}

// Build connects to PostgreSQL and Redis and wires the pipeline. The returned
// cleanup closes both connections.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, func(), error) {
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}

	cleanup := func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("closing redis client")
		}
		pool.Close()
	}

	a := assemble(cfg, log,
		pgStorage.NewWebhookEventRepo(pool),
		pgStorage.NewSubscriptionRepo(pool),
		pgStorage.NewPaymentRepo(pool),
		rdb,
	)
	a.HealthCheckers = []ports.HealthChecker{
		pgStorage.NewHealthCheck(pool),
		redisStorage.NewHealthCheck(rdb),
	}
	return a, cleanup, nil
}

// assemble wires services over already-open stores.
func assemble(
	cfg *config.Config,
	log zerolog.Logger,
	events ports.WebhookEventRepository,
	subs ports.SubscriptionRepository,
	payments ports.PaymentRepository,
	rdb goredis.UniversalClient,
) *App {
	a := &App{
		Events:        events,
		Subscriptions: subs,
		Payments:      payments,
		RetryDefaults: ports.RetryOptions{
			MaxBatch:      cfg.Retry.MaxBatch,
			MaxRetryCount: cfg.Retry.MaxRetryCount,
			PendingMinAge: cfg.Retry.PendingMinAge,
		}.WithDefaults(),
		TokenSvc: Tokens(cfg),
	}

	if cfg.Metrics.Enabled {
		a.Registry = prometheus.NewRegistry()
		a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		a.Metrics = metrics.New(a.Registry)
	}

	ingestOpts := []service.IngestorOption{service.WithIngestMetrics(a.Metrics)}
	if cfg.Dedupe.Enabled && rdb != nil {
		ingestOpts = append(ingestOpts, service.WithDedupeCache(redisStorage.NewDedupeCache(rdb), cfg.Dedupe.TTL))
	}

	retryOpts := []service.RetryOption{service.WithRetryMetrics(a.Metrics)}
	if rdb != nil {
		retryOpts = append(retryOpts, service.WithRunLock(redisStorage.NewRunLock(rdb), cfg.Retry.LockTTL))
	}

	a.Router = service.NewRouter(events, subs, payments, logger.Component(log, "router"))
	a.Ingestor = service.NewIngestor(events, a.Router, logger.Component(log, "ingestor"), ingestOpts...)
	a.Scheduler = service.NewRetryScheduler(events, a.Ingestor, logger.Component(log, "retry"), retryOpts...)
	return a
}

// Tokens builds the operator token service without opening any connection.
func Tokens(cfg *config.Config) *service.JWTTokenService {
	return service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
}
