package handler

import (
	"billing-webhook-service/internal/adapter/http/middleware"
	"billing-webhook-service/internal/core/ports"
	"billing-webhook-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const maxWebhookBody = 1 << 20 // 1 MB

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Ingestor       ports.EventIngestor
	Scheduler      ports.RetryScheduler
	Events         ports.WebhookEventRepository
	Subscriptions  ports.SubscriptionRepository
	TokenSvc       ports.TokenService
	HealthCheckers []ports.HealthChecker
	RetryDefaults  ports.RetryOptions
	Metrics        *metrics.Metrics    // nil = metrics disabled
	Gatherer       prometheus.Gatherer // served at MetricsPath when Metrics is set
	MetricsPath    string
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxWebhookBody))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// --- Provider deliveries (unauthenticated) ---
	webhookHandler := NewWebhookHandler(deps.Ingestor, deps.Logger)
	r.POST("/webhooks/billing", webhookHandler.Receive)

	// --- Operator routes (JWT) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	adminHandler := NewAdminHandler(deps.Scheduler, deps.Ingestor, deps.Events, deps.Subscriptions, deps.Metrics, deps.RetryDefaults)

	admin := r.Group("/api/v1/admin", jwtAuth)
	{
		admin.POST("/webhooks/retry", adminHandler.Retry)
		admin.GET("/webhooks/stats", adminHandler.Stats)
		admin.POST("/webhooks/:event_id/reprocess", adminHandler.Reprocess)
		admin.GET("/subscriptions/reconciliation", adminHandler.Reconciliation)
	}

	return r
}
