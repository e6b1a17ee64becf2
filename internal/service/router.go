package service

import (
	"context"
	"errors"
	"time"

	"billing-webhook-service/internal/core/domain"
	"billing-webhook-service/internal/core/ports"
	"billing-webhook-service/pkg/apperror"

	"github.com/rs/zerolog"
)

type handlerFunc func(ctx context.Context, payload domain.EventPayload) error

// Router implements ports.EventRouter over a fixed handler table.
type Router struct {
	handlers map[domain.EventKind]handlerFunc
	recorder eventRecorder
	log      zerolog.Logger
}

// NewRouter wires the subscription and payment handlers.
func NewRouter(
	events ports.WebhookEventRepository,
	subs ports.SubscriptionRepository,
	payments ports.PaymentRepository,
	log zerolog.Logger,
) *Router {
	return newRouter(events, subs, payments, time.Now, log)
}

func newRouter(
	events ports.WebhookEventRepository,
	subs ports.SubscriptionRepository,
	payments ports.PaymentRepository,
	now func() time.Time,
	log zerolog.Logger,
) *Router {
	sh := &subscriptionHandler{subs: subs, now: now, log: log}
	ph := &paymentHandler{payments: payments, subs: sh, now: now, log: log}

	return &Router{
		handlers: map[domain.EventKind]handlerFunc{
			domain.KindSubscriptionCreated: func(ctx context.Context, p domain.EventPayload) error {
				return sh.created(ctx, p.(domain.SubscriptionCreated))
			},
			domain.KindSubscriptionCancelled: func(ctx context.Context, p domain.EventPayload) error {
				return sh.cancelled(ctx, p.(domain.SubscriptionCancelled))
			},
			domain.KindPaymentConfirmed: func(ctx context.Context, p domain.EventPayload) error {
				return ph.confirmed(ctx, p.(domain.PaymentConfirmed))
			},
			domain.KindPaymentOverdue: func(ctx context.Context, p domain.EventPayload) error {
				return ph.overdue(ctx, p.(domain.PaymentOverdue))
			},
		},
		recorder: eventRecorder{events: events, now: now},
		log:      log,
	}
}

// Route dispatches on the uppercased event type. Unknown types are ignored.
func (r *Router) Route(ctx context.Context, eventType string, ev domain.InboundEvent) error {
	payload := domain.DecodePayload(eventType, ev)

	h, ok := r.handlers[payload.Kind()]
	if !ok {
		r.log.Debug().
			Str("event_id", ev.ID).
			Str("event_type", domain.NormalizeEventType(eventType)).
			Msg("evento_ignorado")
		return nil
	}
	return h(ctx, payload)
}

// RouteAndRecord is the direct entry point for callers that bypass the
// Ingestor. Event bookkeeping is best-effort: a duplicate still skips
// dispatch, but other store errors are logged and dispatch proceeds.
func (r *Router) RouteAndRecord(ctx context.Context, ev domain.InboundEvent) error {
	if reason := ev.Validate(); reason != "" {
		return apperror.ErrInvalidPayload(reason)
	}

	log := r.log.With().Str("event_id", ev.ID).Str("event_type", ev.NormalizedType()).Logger()

	row, err := r.recorder.begin(ctx, ev)
	if errors.Is(err, ports.ErrDuplicateKey) {
		log.Info().Msg("webhook: duplicate delivery ignored")
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("webhook: audit insert failed, routing anyway")
		row = nil
	}

	start := r.recorder.now()
	routeErr := r.Route(ctx, ev.Event, ev)
	elapsed := r.recorder.now().Sub(start)

	if row != nil {
		if err := r.recorder.finish(ctx, row, routeErr, elapsed); err != nil {
			log.Warn().Err(err).Msg("webhook: audit update failed")
		}
	}
	return routeErr
}
