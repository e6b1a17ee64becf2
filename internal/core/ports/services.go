package ports

import (
	"context"
	"time"

	"billing-webhook-service/internal/core/domain"
)

// EventIngestor persists one inbound event idempotently and routes it.
type EventIngestor interface {
	Process(ctx context.Context, event domain.InboundEvent, opts ProcessOptions) ProcessResult
}

// ProcessOptions tunes a single Process call.
type ProcessOptions struct {
	// ReprocessExisting looks the stored row up instead of inserting it.
	ReprocessExisting bool
}

// ProcessResult is the outcome of Process. Expected failures are carried in
// Error rather than returned separately.
type ProcessResult struct {
	Success          bool
	Error            error
	AlreadyProcessed bool
}

// EventRouter dispatches an event to the domain handler for its type.
// Unknown types are a no-op.
type EventRouter interface {
	Route(ctx context.Context, eventType string, event domain.InboundEvent) error
}

// RetryScheduler re-drives pending and failed events.
type RetryScheduler interface {
	Retry(ctx context.Context, opts RetryOptions) (*RetryReport, error)
}

// RetryOptions bounds a single scheduler run. Zero values take the defaults.
type RetryOptions struct {
	MaxBatch      int
	MaxRetryCount int
	PendingMinAge time.Duration
}

const (
	DefaultMaxBatch      = 25
	DefaultMaxRetryCount = 5
)

// WithDefaults fills unset limits.
func (o RetryOptions) WithDefaults() RetryOptions {
	if o.MaxBatch <= 0 {
		o.MaxBatch = DefaultMaxBatch
	}
	if o.MaxRetryCount <= 0 {
		o.MaxRetryCount = DefaultMaxRetryCount
	}
	return o
}

// RetryReport aggregates one scheduler run.
type RetryReport struct {
	Processed  int          `json:"processed"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
	Exhausted  int          `json:"exhausted"`
	DurationMs int64        `json:"duration_ms"`
	Errors     []RetryError `json:"errors"`
}

// RetryError is one failed event in a RetryReport.
type RetryError struct {
	EventID string `json:"event_id"`
	Error   string `json:"error"`
}

// DedupeCache is the Redis fast path in front of the unique insert.
type DedupeCache interface {
	// Seen returns true if the event id was recorded as processed.
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error
}

// RunLock serializes scheduler runs across workers.
type RunLock interface {
	// Acquire returns an owner token, or ok=false if another holder owns the lock.
	Acquire(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error)
	// Release drops the lock only if token still owns it.
	Release(ctx context.Context, name, token string) error
}

// TokenService handles JWT operations for operator endpoints.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}
