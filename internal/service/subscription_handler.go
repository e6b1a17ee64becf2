package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billing-webhook-service/internal/core/domain"
	"billing-webhook-service/internal/core/ports"

	"github.com/rs/zerolog"
)

var (
	errMissingSubscriptionRef = errors.New("subscription.id is required")
	errSubscriptionNotFound   = errors.New("subscription not found")
)

type subscriptionHandler struct {
	subs ports.SubscriptionRepository
	now  func() time.Time
	log  zerolog.Logger
}

// created inserts the subscription once per external_ref.
func (h *subscriptionHandler) created(ctx context.Context, p domain.SubscriptionCreated) error {
	if p.SubscriptionRef == "" {
		return errMissingSubscriptionRef
	}

	existing, err := h.subs.GetByExternalRef(ctx, p.SubscriptionRef)
	if err != nil {
		return fmt.Errorf("fetching subscription %s: %w", p.SubscriptionRef, err)
	}
	if existing != nil {
		h.log.Info().Str("external_ref", p.SubscriptionRef).Str("status", string(existing.Status)).Msg("assinatura_existente")
		return nil
	}

	sub := domain.NewSubscription(p, h.now())
	if err := h.subs.Create(ctx, sub); err != nil {
		// Lost a race with a concurrent create for the same ref.
		if errors.Is(err, ports.ErrDuplicateKey) {
			h.log.Info().Str("external_ref", p.SubscriptionRef).Msg("assinatura_existente")
			return nil
		}
		return fmt.Errorf("creating subscription %s: %w", p.SubscriptionRef, err)
	}

	if sub.NeedsReconciliation {
		h.log.Warn().
			Str("external_ref", p.SubscriptionRef).
			Str("plan_id", p.PlanID).
			Str("customer_id", p.CustomerID).
			Str("unit_id", p.UnitID).
			Msg("assinatura_sem_contexto")
	}
	h.log.Info().Str("external_ref", p.SubscriptionRef).Str("id", sub.ID.String()).Time("fim", sub.EndsAt).Msg("assinatura_criada")
	return nil
}

// cancelled moves the subscription to cancelada. A subscription that does not
// exist yet is an error so the event is retried after the create lands.
func (h *subscriptionHandler) cancelled(ctx context.Context, p domain.SubscriptionCancelled) error {
	if p.SubscriptionRef == "" {
		return errMissingSubscriptionRef
	}

	sub, err := h.subs.GetByExternalRef(ctx, p.SubscriptionRef)
	if err != nil {
		return fmt.Errorf("fetching subscription %s: %w", p.SubscriptionRef, err)
	}
	if sub == nil {
		return fmt.Errorf("%w: %s", errSubscriptionNotFound, p.SubscriptionRef)
	}

	return h.transition(ctx, sub, domain.SubscriptionStatusCancelled)
}

// transition applies a status change if the state machine allows it.
func (h *subscriptionHandler) transition(ctx context.Context, sub *domain.Subscription, to domain.SubscriptionStatus) error {
	log := h.log.With().
		Str("external_ref", sub.ExternalRef).
		Str("from", string(sub.Status)).
		Str("to", string(to)).
		Logger()

	if !domain.CanTransition(sub.Status, to) {
		if sub.IsCancelled() {
			log.Info().Msg("assinatura_cancelada")
		}
		log.Debug().Msg("skip_update_status")
		return nil
	}

	err := h.subs.UpdateStatus(ctx, sub.ID, to)
	if errors.Is(err, ports.ErrNoRowsAffected) {
		// Cancelled after the read above; the store guard refused the update.
		log.Info().Msg("assinatura_cancelada")
		log.Debug().Msg("skip_update_status")
		return nil
	}
	if err != nil {
		return fmt.Errorf("updating subscription %s status: %w", sub.ExternalRef, err)
	}
	log.Info().Msg("assinatura_status_atualizado")
	return nil
}
