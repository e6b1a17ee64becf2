package ports

import (
	"context"
	"errors"
	"time"

	"billing-webhook-service/internal/core/domain"

	"github.com/google/uuid"
)

// ErrDuplicateKey is returned by Insert/Create when a unique constraint
// rejects the row. Callers detect it with errors.Is.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrNoRowsAffected is returned by updates whose WHERE clause matched nothing,
// including a subscription status update refused by the cancelled guard.
var ErrNoRowsAffected = errors.New("no rows affected")

// WebhookEventRepository defines persistence operations for the webhook event log.
type WebhookEventRepository interface {
	// Insert stores a new pending row. Returns ErrDuplicateKey when event_id exists.
	Insert(ctx context.Context, event *domain.WebhookEvent) error
	// GetByEventID returns nil, nil when no row matches.
	GetByEventID(ctx context.Context, eventID string) (*domain.WebhookEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time, processingTimeMs int64) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string, processedAt time.Time, processingTimeMs int64) error
	// ListRetryable returns pending/failed rows below the retry ceiling,
	// oldest first.
	ListRetryable(ctx context.Context, params RetryableParams) ([]domain.WebhookEvent, error)
	IncrementRetryCount(ctx context.Context, id uuid.UUID) error
	// RecordRetryFailure increments retry_count, stores lastError and sets status failed.
	RecordRetryFailure(ctx context.Context, id uuid.UUID, lastError string) error
	// Stats counts rows per status; Exhausted counts failed rows at or above maxRetryCount.
	Stats(ctx context.Context, maxRetryCount int) (*EventStats, error)
}

// RetryableParams filters the retry selection.
type RetryableParams struct {
	Limit         int
	MaxRetryCount int
	// PendingCreatedBefore excludes pending rows created after it. Zero disables the filter.
	PendingCreatedBefore time.Time
}

// EventStats holds webhook event counts for the operator endpoint.
type EventStats struct {
	Pending   int64 `json:"pending"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Exhausted int64 `json:"exhausted"`
}

// SubscriptionRepository defines persistence operations for subscriptions.
type SubscriptionRepository interface {
	// Create returns ErrDuplicateKey when external_ref exists.
	Create(ctx context.Context, sub *domain.Subscription) error
	// GetByExternalRef returns nil, nil when no row matches.
	GetByExternalRef(ctx context.Context, externalRef string) (*domain.Subscription, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SubscriptionStatus) error
	ListNeedingReconciliation(ctx context.Context, limit int) ([]domain.Subscription, error)
}

// PaymentRepository defines persistence operations for payments.
type PaymentRepository interface {
	// Create returns ErrDuplicateKey when external_payment_ref exists.
	Create(ctx context.Context, payment *domain.Payment) error
	GetByExternalRef(ctx context.Context, externalRef string) (*domain.Payment, error)
}
