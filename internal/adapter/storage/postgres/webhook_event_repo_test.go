package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"billing-webhook-service/internal/core/domain"
	"billing-webhook-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWebhookEvent() *domain.WebhookEvent {
	return &domain.WebhookEvent{
		ID:         uuid.New(),
		EventID:    "evt_1",
		EventType:  "SUBSCRIPTION_CREATED",
		ExternalID: "sub_a",
		Payload:    []byte(`{"id":"evt_1","event":"SUBSCRIPTION_CREATED","subscription":{"id":"sub_a"}}`),
		Status:     domain.EventStatusPending,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func webhookEventRow(e *domain.WebhookEvent) *pgxmock.Rows {
	return pgxmock.NewRows(webhookEventColumns).AddRow(
		e.ID, e.EventID, e.EventType, e.ExternalID, []byte(e.Payload), e.Status,
		e.RetryCount, e.LastError, e.ProcessedAt, e.ProcessingTimeMs, e.CreatedAt,
	)
}

func TestWebhookEventRepo_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	e := newTestWebhookEvent()

	mock.ExpectExec("INSERT INTO webhook_events").
		WithArgs(e.ID, e.EventID, e.EventType, e.ExternalID, []byte(e.Payload), e.Status, 0, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Insert(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_Insert_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)

	mock.ExpectExec("INSERT INTO webhook_events").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "webhook_events_event_id_key"})

	err = repo.Insert(context.Background(), newTestWebhookEvent())
	assert.ErrorIs(t, err, ports.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_Insert_OtherError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)

	mock.ExpectExec("INSERT INTO webhook_events").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23502"})

	err = repo.Insert(context.Background(), newTestWebhookEvent())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrDuplicateKey))
}

func TestWebhookEventRepo_GetByEventID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	e := newTestWebhookEvent()
	e.Status = domain.EventStatusFailed
	e.RetryCount = 2
	lastErr := "boom"
	e.LastError = &lastErr

	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE event_id").
		WithArgs("evt_1").
		WillReturnRows(webhookEventRow(e))

	got, err := repo.GetByEventID(context.Background(), "evt_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, domain.EventStatusFailed, got.Status)
	assert.Equal(t, 2, got.RetryCount)
	assert.Equal(t, "boom", *got.LastError)
	assert.JSONEq(t, string(e.Payload), string(got.Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_GetByEventID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM webhook_events WHERE event_id").
		WithArgs("evt_missing").
		WillReturnRows(pgxmock.NewRows(webhookEventColumns))

	got, err := repo.GetByEventID(context.Background(), "evt_missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_MarkProcessed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	id := uuid.New()
	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE webhook_events SET status = .+, processed_at = .+, processing_time_ms = .+, last_error = NULL WHERE id`).
		WithArgs(domain.EventStatusProcessed, at, int64(42), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.MarkProcessed(context.Background(), id, at, 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_MarkFailed_NoRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	id := uuid.New()
	at := time.Now().UTC()

	mock.ExpectExec("UPDATE webhook_events SET status .+ last_error").
		WithArgs(domain.EventStatusFailed, "boom", at, int64(7), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.MarkFailed(context.Background(), id, "boom", at, 7)
	assert.ErrorIs(t, err, ports.ErrNoRowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_ListRetryable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	cutoff := time.Now().UTC().Add(-time.Minute)
	first := newTestWebhookEvent()
	second := newTestWebhookEvent()
	second.EventID = "evt_2"
	second.Status = domain.EventStatusFailed
	second.RetryCount = 1

	rows := webhookEventRow(first).AddRow(
		second.ID, second.EventID, second.EventType, second.ExternalID, []byte(second.Payload), second.Status,
		second.RetryCount, second.LastError, second.ProcessedAt, second.ProcessingTimeMs, second.CreatedAt,
	)

	mock.ExpectQuery(`SELECT .+ FROM webhook_events WHERE status IN .+ AND retry_count < .+ AND \(status = .+ OR created_at < .+\) ORDER BY created_at ASC, id ASC LIMIT 25`).
		WithArgs(domain.EventStatusPending, domain.EventStatusFailed, 5, domain.EventStatusFailed, cutoff).
		WillReturnRows(rows)

	events, err := repo.ListRetryable(context.Background(), ports.RetryableParams{
		Limit:                25,
		MaxRetryCount:        5,
		PendingCreatedBefore: cutoff,
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "evt_1", events[0].EventID)
	assert.Equal(t, "evt_2", events[1].EventID)
	assert.Equal(t, 1, events[1].RetryCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_ListRetryable_NoAgeFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)

	mock.ExpectQuery(`SELECT .+ FROM webhook_events WHERE status IN .+ AND retry_count < \$3 ORDER BY`).
		WithArgs(domain.EventStatusPending, domain.EventStatusFailed, 3).
		WillReturnRows(pgxmock.NewRows(webhookEventColumns))

	events, err := repo.ListRetryable(context.Background(), ports.RetryableParams{Limit: 10, MaxRetryCount: 3})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_IncrementRetryCount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	id := uuid.New()

	mock.ExpectExec(`UPDATE webhook_events SET retry_count = retry_count \+ 1 WHERE id`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.IncrementRetryCount(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_RecordRetryFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	id := uuid.New()

	mock.ExpectExec(`UPDATE webhook_events SET retry_count = retry_count \+ 1, last_error = .+, status = .+ WHERE id`).
		WithArgs("handler exploded", domain.EventStatusFailed, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.RecordRetryFailure(context.Background(), id, "handler exploded"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepo_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)

	mock.ExpectQuery("SELECT COUNT.+ FROM webhook_events").
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"pending", "processed", "failed", "exhausted"}).
			AddRow(int64(3), int64(120), int64(4), int64(1)))

	stats, err := repo.Stats(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, ports.EventStats{Pending: 3, Processed: 120, Failed: 4, Exhausted: 1}, *stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}
