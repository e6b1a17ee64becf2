package handler

import (
	"time"

	"billing-webhook-service/internal/adapter/http/dto"
	"billing-webhook-service/internal/core/domain"
	"billing-webhook-service/internal/core/ports"
	"billing-webhook-service/internal/metrics"
	"billing-webhook-service/pkg/apperror"
	"billing-webhook-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultReconciliationLimit = 100

// AdminHandler serves the operator endpoints.
type AdminHandler struct {
	scheduler ports.RetryScheduler
	ingestor  ports.EventIngestor
	events    ports.WebhookEventRepository
	subs      ports.SubscriptionRepository
	metrics   *metrics.Metrics
	defaults  ports.RetryOptions
}

// NewAdminHandler creates a new AdminHandler. defaults are the configured
// retry limits; request bodies may override them per run.
func NewAdminHandler(
	scheduler ports.RetryScheduler,
	ingestor ports.EventIngestor,
	events ports.WebhookEventRepository,
	subs ports.SubscriptionRepository,
	m *metrics.Metrics,
	defaults ports.RetryOptions,
) *AdminHandler {
	return &AdminHandler{
		scheduler: scheduler,
		ingestor:  ingestor,
		events:    events,
		subs:      subs,
		metrics:   m,
		defaults:  defaults.WithDefaults(),
	}
}

// Retry handles POST /api/v1/admin/webhooks/retry.
func (h *AdminHandler) Retry(c *gin.Context) {
	var req dto.RetryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, apperror.Validation(err.Error()))
			return
		}
	}

	opts := h.defaults
	if req.MaxBatch > 0 {
		opts.MaxBatch = req.MaxBatch
	}
	if req.MaxRetryCount > 0 {
		opts.MaxRetryCount = req.MaxRetryCount
	}
	if req.PendingMinAge != "" {
		// already validated by go_duration
		opts.PendingMinAge, _ = time.ParseDuration(req.PendingMinAge)
	}

	report, err := h.scheduler.Retry(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// Reprocess handles POST /api/v1/admin/webhooks/:event_id/reprocess.
func (h *AdminHandler) Reprocess(c *gin.Context) {
	var uri dto.EventURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	row, err := h.events.GetByEventID(c.Request.Context(), uri.EventID)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	if row == nil {
		response.Error(c, apperror.ErrEventNotFound(uri.EventID))
		return
	}

	ev, err := row.Inbound()
	if err != nil {
		response.Error(c, apperror.ErrInvalidPayload(err.Error()))
		return
	}

	res := h.ingestor.Process(c.Request.Context(), ev, ports.ProcessOptions{ReprocessExisting: true})
	if !res.Success {
		response.Error(c, res.Error)
		return
	}
	response.OK(c, dto.ReprocessResponse{EventID: uri.EventID, Reprocessed: true})
}

// Stats handles GET /api/v1/admin/webhooks/stats. It also refreshes the
// per-status gauges.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.events.Stats(c.Request.Context(), h.defaults.MaxRetryCount)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	h.metrics.SetEventStatusCount(string(domain.EventStatusPending), stats.Pending)
	h.metrics.SetEventStatusCount(string(domain.EventStatusProcessed), stats.Processed)
	h.metrics.SetEventStatusCount(string(domain.EventStatusFailed), stats.Failed)
	h.metrics.SetEventStatusCount("exhausted", stats.Exhausted)

	response.OK(c, dto.StatsResponse{
		Pending:       stats.Pending,
		Processed:     stats.Processed,
		Failed:        stats.Failed,
		Exhausted:     stats.Exhausted,
		MaxRetryCount: h.defaults.MaxRetryCount,
	})
}

// Reconciliation handles GET /api/v1/admin/subscriptions/reconciliation.
func (h *AdminHandler) Reconciliation(c *gin.Context) {
	var q dto.ReconciliationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultReconciliationLimit
	}

	subs, err := h.subs.ListNeedingReconciliation(c.Request.Context(), q.Limit)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	items := make([]dto.SubscriptionResponse, 0, len(subs))
	for _, s := range subs {
		items = append(items, dto.SubscriptionResponse{
			ID:          s.ID.String(),
			ExternalRef: s.ExternalRef,
			Status:      string(s.Status),
			PlanID:      uuidString(s.PlanID),
			CustomerID:  uuidString(s.CustomerID),
			UnitID:      uuidString(s.UnitID),
			StartsAt:    s.StartsAt.Format(time.RFC3339),
			EndsAt:      s.EndsAt.Format(time.RFC3339),
			CreatedAt:   s.CreatedAt.Format(time.RFC3339),
		})
	}

	response.OK(c, dto.ReconciliationResponse{Items: items, Count: len(items)})
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
