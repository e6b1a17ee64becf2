package service

import (
	"context"
	"fmt"
	"time"

	"billing-webhook-service/internal/core/domain"
	"billing-webhook-service/internal/core/ports"
	"billing-webhook-service/internal/metrics"
	"billing-webhook-service/pkg/apperror"

	"github.com/rs/zerolog"
)

const retryLockName = "webhook-retry"

// RetryScheduler implements ports.RetryScheduler. Rows are re-driven through
// the Ingestor in reprocess mode, one at a time.
type RetryScheduler struct {
	events   ports.WebhookEventRepository
	ingestor ports.EventIngestor
	lock     ports.RunLock
	lockTTL  time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
	log      zerolog.Logger
}

// RetryOption configures optional RetryScheduler collaborators.
type RetryOption func(*RetryScheduler)

// WithRunLock skips a run while another worker holds the lock.
func WithRunLock(lock ports.RunLock, ttl time.Duration) RetryOption {
	return func(s *RetryScheduler) {
		s.lock = lock
		s.lockTTL = ttl
	}
}

// WithRetryMetrics records run and per-event outcomes.
func WithRetryMetrics(m *metrics.Metrics) RetryOption {
	return func(s *RetryScheduler) { s.metrics = m }
}

// WithRetryClock overrides time.Now.
func WithRetryClock(now func() time.Time) RetryOption {
	return func(s *RetryScheduler) { s.now = now }
}

// NewRetryScheduler creates a new RetryScheduler.
func NewRetryScheduler(
	events ports.WebhookEventRepository,
	ingestor ports.EventIngestor,
	log zerolog.Logger,
	opts ...RetryOption,
) *RetryScheduler {
	s := &RetryScheduler{
		events:   events,
		ingestor: ingestor,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Retry runs one batch. Individual event failures are aggregated into the
// report; only selection and locking errors are returned.
func (s *RetryScheduler) Retry(ctx context.Context, opts ports.RetryOptions) (*ports.RetryReport, error) {
	opts = opts.WithDefaults()
	start := s.now()

	if s.lock != nil {
		token, ok, err := s.lock.Acquire(ctx, retryLockName, s.lockTTL)
		if err != nil {
			s.metrics.IncRetryRun(metrics.RunError)
			return nil, apperror.InternalError(fmt.Errorf("acquiring retry lock: %w", err))
		}
		if !ok {
			s.log.Info().Msg("retry: another run holds the lock, skipping")
			s.metrics.IncRetryRun(metrics.RunSkipped)
			return nil, apperror.ErrLockHeld()
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), retryLockName, token); err != nil {
				s.log.Warn().Err(err).Msg("retry: releasing lock failed")
			}
		}()
	}

	params := ports.RetryableParams{
		Limit:         opts.MaxBatch,
		MaxRetryCount: opts.MaxRetryCount,
	}
	if opts.PendingMinAge > 0 {
		params.PendingCreatedBefore = start.Add(-opts.PendingMinAge)
	}

	rows, err := s.events.ListRetryable(ctx, params)
	if err != nil {
		s.metrics.IncRetryRun(metrics.RunError)
		return nil, apperror.ErrPersistence(fmt.Errorf("listing retryable events: %w", err))
	}

	report := &ports.RetryReport{Errors: []ports.RetryError{}}
	for i := range rows {
		s.retryOne(ctx, &rows[i], opts.MaxRetryCount, report)
	}

	elapsed := s.now().Sub(start)
	report.DurationMs = elapsed.Milliseconds()

	s.metrics.IncRetryRun(metrics.RunCompleted)
	s.metrics.ObserveRetryRun(elapsed)
	s.log.Info().
		Int("processed", report.Processed).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("exhausted", report.Exhausted).
		Int64("duration_ms", report.DurationMs).
		Msg("retry: batch finished")

	return report, nil
}

func (s *RetryScheduler) retryOne(ctx context.Context, row *domain.WebhookEvent, maxRetryCount int, report *ports.RetryReport) {
	report.Processed++
	log := s.log.With().
		Str("event_id", row.EventID).
		Str("prior_status", string(row.Status)).
		Int("retry_count", row.RetryCount).
		Logger()

	var res ports.ProcessResult
	ev, err := row.Inbound()
	if err != nil {
		res = failed(apperror.ErrInvalidPayload(err.Error()))
	} else {
		res = s.ingestor.Process(ctx, ev, ports.ProcessOptions{ReprocessExisting: true})
	}

	if res.Success {
		report.Succeeded++
		s.metrics.IncRetryEvent(metrics.OutcomeProcessed)
		// Pending rows that succeed on their first drive are not counted as retries.
		if row.Status == domain.EventStatusFailed {
			if err := s.events.IncrementRetryCount(ctx, row.ID); err != nil {
				log.Error().Err(err).Msg("retry: incrementing retry_count failed")
			}
		}
		return
	}

	msg := errorMessage(res.Error)
	report.Failed++
	report.Errors = append(report.Errors, ports.RetryError{EventID: row.EventID, Error: msg})
	s.metrics.IncRetryEvent(metrics.OutcomeFailed)

	if err := s.events.RecordRetryFailure(ctx, row.ID, msg); err != nil {
		log.Error().Err(err).Msg("retry: recording failure failed")
	}

	if row.RetryCount+1 >= maxRetryCount {
		report.Exhausted++
		s.metrics.IncRetryEvent(metrics.OutcomeExhausted)
		log.Warn().Str("error", msg).Int("max_retry_count", maxRetryCount).Msg("retry_exhausted")
		return
	}
	log.Warn().Str("error", msg).Msg("retry: event failed")
}
