// Package memory provides in-process repositories that enforce the same
// unique constraints as the Postgres schema. They back local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"billing-webhook-service/internal/core/domain"
	"billing-webhook-service/internal/core/ports"

	"github.com/google/uuid"
)

// Store bundles the three repositories.
type Store struct {
	Events        *WebhookEventRepo
	Subscriptions *SubscriptionRepo
	Payments      *PaymentRepo
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		Events:        NewWebhookEventRepo(),
		Subscriptions: NewSubscriptionRepo(),
		Payments:      NewPaymentRepo(),
	}
}

// --- Webhook events ---

type WebhookEventRepo struct {
	mu      sync.RWMutex
	rows    []*domain.WebhookEvent
	byEvent map[string]*domain.WebhookEvent
	byID    map[uuid.UUID]*domain.WebhookEvent
}

func NewWebhookEventRepo() *WebhookEventRepo {
	return &WebhookEventRepo{
		byEvent: make(map[string]*domain.WebhookEvent),
		byID:    make(map[uuid.UUID]*domain.WebhookEvent),
	}
}

func (r *WebhookEventRepo) Insert(ctx context.Context, e *domain.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEvent[e.EventID]; ok {
		return ports.ErrDuplicateKey
	}
	row := *e
	r.rows = append(r.rows, &row)
	r.byEvent[row.EventID] = &row
	r.byID[row.ID] = &row
	return nil
}

func (r *WebhookEventRepo) GetByEventID(ctx context.Context, eventID string) (*domain.WebhookEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.byEvent[eventID]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *WebhookEventRepo) MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time, processingTimeMs int64) error {
	return r.update(id, func(row *domain.WebhookEvent) {
		row.Status = domain.EventStatusProcessed
		row.ProcessedAt = &processedAt
		row.ProcessingTimeMs = &processingTimeMs
		row.LastError = nil
	})
}

func (r *WebhookEventRepo) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, processedAt time.Time, processingTimeMs int64) error {
	return r.update(id, func(row *domain.WebhookEvent) {
		row.Status = domain.EventStatusFailed
		row.LastError = &lastError
		row.ProcessedAt = &processedAt
		row.ProcessingTimeMs = &processingTimeMs
	})
}

func (r *WebhookEventRepo) ListRetryable(ctx context.Context, params ports.RetryableParams) ([]domain.WebhookEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.WebhookEvent
	for _, row := range r.rows {
		if row.Status != domain.EventStatusPending && row.Status != domain.EventStatusFailed {
			continue
		}
		if row.RetryCount >= params.MaxRetryCount {
			continue
		}
		if row.Status == domain.EventStatusPending && !params.PendingCreatedBefore.IsZero() &&
			!row.CreatedAt.Before(params.PendingCreatedBefore) {
			continue
		}
		out = append(out, *row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (r *WebhookEventRepo) IncrementRetryCount(ctx context.Context, id uuid.UUID) error {
	return r.update(id, func(row *domain.WebhookEvent) {
		row.RetryCount++
	})
}

func (r *WebhookEventRepo) RecordRetryFailure(ctx context.Context, id uuid.UUID, lastError string) error {
	return r.update(id, func(row *domain.WebhookEvent) {
		row.RetryCount++
		row.LastError = &lastError
		row.Status = domain.EventStatusFailed
	})
}

func (r *WebhookEventRepo) Stats(ctx context.Context, maxRetryCount int) (*ports.EventStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.EventStats{}
	for _, row := range r.rows {
		switch row.Status {
		case domain.EventStatusPending:
			stats.Pending++
		case domain.EventStatusProcessed:
			stats.Processed++
		case domain.EventStatusFailed:
			stats.Failed++
			if row.RetryCount >= maxRetryCount {
				stats.Exhausted++
			}
		}
	}
	return stats, nil
}

// Count returns the number of stored rows.
func (r *WebhookEventRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

func (r *WebhookEventRepo) update(id uuid.UUID, fn func(*domain.WebhookEvent)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	fn(row)
	return nil
}

// --- Subscriptions ---

type SubscriptionRepo struct {
	mu            sync.RWMutex
	byRef         map[string]*domain.Subscription
	byID          map[uuid.UUID]*domain.Subscription
	order         []uuid.UUID
	statusUpdates int
}

func NewSubscriptionRepo() *SubscriptionRepo {
	return &SubscriptionRepo{
		byRef: make(map[string]*domain.Subscription),
		byID:  make(map[uuid.UUID]*domain.Subscription),
	}
}

func (r *SubscriptionRepo) Create(ctx context.Context, s *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byRef[s.ExternalRef]; ok {
		return ports.ErrDuplicateKey
	}
	row := *s
	r.byRef[row.ExternalRef] = &row
	r.byID[row.ID] = &row
	r.order = append(r.order, row.ID)
	return nil
}

func (r *SubscriptionRepo) GetByExternalRef(ctx context.Context, externalRef string) (*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.byRef[externalRef]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *SubscriptionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SubscriptionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if row.IsCancelled() {
		return ports.ErrNoRowsAffected
	}
	row.Status = status
	row.UpdatedAt = time.Now()
	r.statusUpdates++
	return nil
}

func (r *SubscriptionRepo) ListNeedingReconciliation(ctx context.Context, limit int) ([]domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Subscription
	for _, id := range r.order {
		row := r.byID[id]
		if !row.NeedsReconciliation {
			continue
		}
		out = append(out, *row)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// StatusUpdates returns how many UpdateStatus calls succeeded.
func (r *SubscriptionRepo) StatusUpdates() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.statusUpdates
}

// Seed stores s as-is, bypassing the duplicate check.
func (r *SubscriptionRepo) Seed(s domain.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := s
	r.byRef[row.ExternalRef] = &row
	r.byID[row.ID] = &row
	r.order = append(r.order, row.ID)
}

// --- Payments ---

type PaymentRepo struct {
	mu    sync.RWMutex
	byRef map[string]*domain.Payment
}

func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{byRef: make(map[string]*domain.Payment)}
}

func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byRef[p.ExternalPaymentRef]; ok {
		return ports.ErrDuplicateKey
	}
	row := *p
	r.byRef[row.ExternalPaymentRef] = &row
	return nil
}

func (r *PaymentRepo) GetByExternalRef(ctx context.Context, externalRef string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.byRef[externalRef]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

// Count returns the number of stored payments.
func (r *PaymentRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byRef)
}
