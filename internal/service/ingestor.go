package service

import (
	"context"
	"errors"
	"time"

	"billing-webhook-service/internal/core/domain"
	"billing-webhook-service/internal/core/ports"
	"billing-webhook-service/internal/metrics"
	"billing-webhook-service/pkg/apperror"

	"github.com/rs/zerolog"
)

// Ingestor implements ports.EventIngestor.
type Ingestor struct {
	recorder eventRecorder
	router   ports.EventRouter
	cache    ports.DedupeCache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
	log      zerolog.Logger
}

// IngestorOption configures optional Ingestor collaborators.
type IngestorOption func(*Ingestor)

// WithDedupeCache puts a processed-id cache in front of the unique insert.
func WithDedupeCache(cache ports.DedupeCache, ttl time.Duration) IngestorOption {
	return func(s *Ingestor) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithIngestMetrics records ingest outcomes and routing latency.
func WithIngestMetrics(m *metrics.Metrics) IngestorOption {
	return func(s *Ingestor) { s.metrics = m }
}

// WithIngestClock overrides time.Now.
func WithIngestClock(now func() time.Time) IngestorOption {
	return func(s *Ingestor) {
		s.now = now
		s.recorder.now = now
	}
}

// NewIngestor creates a new Ingestor.
func NewIngestor(
	events ports.WebhookEventRepository,
	router ports.EventRouter,
	log zerolog.Logger,
	opts ...IngestorOption,
) *Ingestor {
	s := &Ingestor{
		recorder: eventRecorder{events: events, now: time.Now},
		router:   router,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process persists the event, routes it once and records the outcome.
//
// On the normal path a duplicate event_id short-circuits with
// AlreadyProcessed and the router is never called. With ReprocessExisting the
// stored row is looked up instead of inserted.
func (s *Ingestor) Process(ctx context.Context, ev domain.InboundEvent, opts ports.ProcessOptions) ports.ProcessResult {
	eventType := ev.NormalizedType()

	if reason := ev.Validate(); reason != "" {
		s.metrics.IncIngested(eventType, metrics.OutcomeInvalid)
		return failed(apperror.ErrInvalidPayload(reason))
	}

	log := s.log.With().
		Str("event_id", ev.ID).
		Str("event_type", eventType).
		Bool("reprocess", opts.ReprocessExisting).
		Logger()

	var row *domain.WebhookEvent
	if opts.ReprocessExisting {
		found, err := s.recorder.lookup(ctx, ev.ID)
		if err != nil {
			log.Error().Err(err).Msg("webhook: lookup failed")
			s.metrics.IncIngested(eventType, metrics.OutcomeError)
			return failed(apperror.ErrPersistence(err))
		}
		if found == nil {
			s.metrics.IncIngested(eventType, metrics.OutcomeError)
			return failed(apperror.ErrEventNotFound(ev.ID))
		}
		row = found
	} else {
		if s.seen(ctx, ev.ID) {
			log.Debug().Msg("webhook: already processed (cache)")
			s.metrics.IncIngested(eventType, metrics.OutcomeDuplicate)
			return ports.ProcessResult{Success: true, AlreadyProcessed: true}
		}

		inserted, err := s.recorder.begin(ctx, ev)
		if errors.Is(err, ports.ErrDuplicateKey) {
			log.Info().Msg("webhook: duplicate delivery ignored")
			s.metrics.IncIngested(eventType, metrics.OutcomeDuplicate)
			return ports.ProcessResult{Success: true, AlreadyProcessed: true}
		}
		if err != nil {
			log.Error().Err(err).Msg("webhook: insert failed")
			s.metrics.IncIngested(eventType, metrics.OutcomeError)
			return failed(apperror.ErrPersistence(err))
		}
		row = inserted
	}

	start := s.now()
	routeErr := s.router.Route(ctx, ev.Event, ev)
	elapsed := s.now().Sub(start)
	s.metrics.ObserveRoute(eventType, elapsed)

	finishErr := s.recorder.finish(ctx, row, routeErr, elapsed)

	if routeErr != nil {
		if finishErr != nil {
			log.Error().Err(finishErr).Msg("webhook: could not record failure")
		}
		log.Warn().Err(routeErr).Int64("processing_time_ms", elapsed.Milliseconds()).Msg("webhook: handler failed")
		s.metrics.IncIngested(eventType, metrics.OutcomeFailed)
		return failed(apperror.ErrRouter(routeErr))
	}

	if finishErr != nil {
		log.Error().Err(finishErr).Msg("webhook: could not record success")
		s.metrics.IncIngested(eventType, metrics.OutcomeError)
		return failed(apperror.ErrPersistence(finishErr))
	}

	s.markSeen(ctx, ev.ID, log)
	log.Info().Int64("processing_time_ms", elapsed.Milliseconds()).Msg("webhook: processed")
	s.metrics.IncIngested(eventType, metrics.OutcomeProcessed)
	return ports.ProcessResult{Success: true}
}

// seen consults the cache. Cache errors fall through to the database.
func (s *Ingestor) seen(ctx context.Context, eventID string) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Seen(ctx, eventID)
	if err != nil {
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("dedupe cache check failed, falling through to DB")
		return false
	}
	return ok
}

func (s *Ingestor) markSeen(ctx context.Context, eventID string, log zerolog.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.MarkProcessed(ctx, eventID, s.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("dedupe cache write failed")
	}
}

func failed(err error) ports.ProcessResult {
	return ports.ProcessResult{Success: false, Error: err}
}
