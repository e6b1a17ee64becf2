package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billing-webhook-service/internal/core/domain"
	"billing-webhook-service/internal/core/ports"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var webhookEventColumns = []string{
	"id", "event_id", "event_type", "external_id", "payload", "status",
	"retry_count", "last_error", "processed_at", "processing_time_ms", "created_at",
}

// WebhookEventRepo implements ports.WebhookEventRepository.
type WebhookEventRepo struct {
	pool Pool
}

// NewWebhookEventRepo creates a new WebhookEventRepo.
func NewWebhookEventRepo(pool Pool) *WebhookEventRepo {
	return &WebhookEventRepo{pool: pool}
}

// Insert stores a pending row. The unique index on event_id rejects redeliveries.
func (r *WebhookEventRepo) Insert(ctx context.Context, e *domain.WebhookEvent) error {
	query, args, err := psql.Insert("webhook_events").
		Columns("id", "event_id", "event_type", "external_id", "payload", "status", "retry_count", "created_at").
		Values(e.ID, e.EventID, e.EventType, e.ExternalID, []byte(e.Payload), e.Status, e.RetryCount, e.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert webhook event: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return mapInsertError("insert webhook event", err)
	}
	return nil
}

// GetByEventID fetches a row by provider event id.
func (r *WebhookEventRepo) GetByEventID(ctx context.Context, eventID string) (*domain.WebhookEvent, error) {
	query, args, err := psql.Select(webhookEventColumns...).
		From("webhook_events").
		Where(sq.Eq{"event_id": eventID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get webhook event: %w", err)
	}

	e, err := scanWebhookEvent(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get webhook event: %w", err)
	}
	return e, nil
}

// MarkProcessed finalizes a successfully routed event and clears last_error.
func (r *WebhookEventRepo) MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time, processingTimeMs int64) error {
	query, args, err := psql.Update("webhook_events").
		Set("status", domain.EventStatusProcessed).
		Set("processed_at", processedAt).
		Set("processing_time_ms", processingTimeMs).
		Set("last_error", sq.Expr("NULL")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark processed: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	return checkAffected("mark webhook event processed", tag, err)
}

// MarkFailed finalizes an event whose handler failed.
func (r *WebhookEventRepo) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, processedAt time.Time, processingTimeMs int64) error {
	query, args, err := psql.Update("webhook_events").
		Set("status", domain.EventStatusFailed).
		Set("last_error", lastError).
		Set("processed_at", processedAt).
		Set("processing_time_ms", processingTimeMs).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark failed: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	return checkAffected("mark webhook event failed", tag, err)
}

// ListRetryable selects pending/failed rows below the ceiling, oldest first.
func (r *WebhookEventRepo) ListRetryable(ctx context.Context, p ports.RetryableParams) ([]domain.WebhookEvent, error) {
	q := psql.Select(webhookEventColumns...).
		From("webhook_events").
		Where(sq.Eq{"status": []domain.EventStatus{domain.EventStatusPending, domain.EventStatusFailed}}).
		Where(sq.Lt{"retry_count": p.MaxRetryCount})

	if !p.PendingCreatedBefore.IsZero() {
		q = q.Where(sq.Or{
			sq.Eq{"status": domain.EventStatusFailed},
			sq.Lt{"created_at": p.PendingCreatedBefore},
		})
	}

	q = q.OrderBy("created_at ASC", "id ASC")
	if p.Limit > 0 {
		q = q.Limit(uint64(p.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list retryable: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list retryable webhook events: %w", err)
	}
	defer rows.Close()

	var events []domain.WebhookEvent
	for rows.Next() {
		e, err := scanWebhookEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhook events: %w", err)
	}
	return events, nil
}

// IncrementRetryCount bumps retry_count after a failed row succeeds on retry.
func (r *WebhookEventRepo) IncrementRetryCount(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Update("webhook_events").
		Set("retry_count", sq.Expr("retry_count + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment retry count: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	return checkAffected("increment retry count", tag, err)
}

// RecordRetryFailure bumps retry_count, stores the error and marks the row failed.
func (r *WebhookEventRepo) RecordRetryFailure(ctx context.Context, id uuid.UUID, lastError string) error {
	query, args, err := psql.Update("webhook_events").
		Set("retry_count", sq.Expr("retry_count + 1")).
		Set("last_error", lastError).
		Set("status", domain.EventStatusFailed).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build record retry failure: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	return checkAffected("record retry failure", tag, err)
}

// Stats counts rows per status in one pass.
func (r *WebhookEventRepo) Stats(ctx context.Context, maxRetryCount int) (*ports.EventStats, error) {
	query, args, err := psql.Select().
		Column("COUNT(*) FILTER (WHERE status = 'pending')").
		Column("COUNT(*) FILTER (WHERE status = 'processed')").
		Column("COUNT(*) FILTER (WHERE status = 'failed')").
		Column(sq.Expr("COUNT(*) FILTER (WHERE status = 'failed' AND retry_count >= ?)", maxRetryCount)).
		From("webhook_events").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build webhook stats: %w", err)
	}

	stats := &ports.EventStats{}
	err = r.pool.QueryRow(ctx, query, args...).Scan(&stats.Pending, &stats.Processed, &stats.Failed, &stats.Exhausted)
	if err != nil {
		return nil, fmt.Errorf("webhook stats: %w", err)
	}
	return stats, nil
}

func scanWebhookEvent(row pgx.Row) (*domain.WebhookEvent, error) {
	e := &domain.WebhookEvent{}
	var payload []byte
	err := row.Scan(
		&e.ID, &e.EventID, &e.EventType, &e.ExternalID, &payload, &e.Status,
		&e.RetryCount, &e.LastError, &e.ProcessedAt, &e.ProcessingTimeMs, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Payload = payload
	return e, nil
}
