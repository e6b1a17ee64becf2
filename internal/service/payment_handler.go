package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billing-webhook-service/internal/core/domain"
	"billing-webhook-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var errMissingPaymentRef = errors.New("payment.id is required")

type paymentHandler struct {
	payments ports.PaymentRepository
	subs     *subscriptionHandler
	now      func() time.Time
	log      zerolog.Logger
}

// confirmed records the payment once and reactivates its subscription.
func (h *paymentHandler) confirmed(ctx context.Context, p domain.PaymentConfirmed) error {
	if p.PaymentRef == "" {
		return errMissingPaymentRef
	}

	sub, err := h.owner(ctx, p.SubscriptionRef)
	if err != nil {
		return err
	}

	var subID *uuid.UUID
	if sub != nil {
		id := sub.ID
		subID = &id
	}

	payment := domain.NewPayment(p, subID, h.now())
	if err := h.payments.Create(ctx, payment); err != nil {
		if !errors.Is(err, ports.ErrDuplicateKey) {
			return fmt.Errorf("creating payment %s: %w", p.PaymentRef, err)
		}
		h.log.Info().Str("payment_ref", p.PaymentRef).Msg("pagamento_duplicado")
	} else {
		h.log.Info().
			Str("payment_ref", p.PaymentRef).
			Str("valor", payment.Amount.String()).
			Str("metodo", string(payment.Method)).
			Msg("pagamento_registrado")
	}

	if sub == nil {
		if p.SubscriptionRef != "" {
			h.log.Warn().Str("payment_ref", p.PaymentRef).Str("external_ref", p.SubscriptionRef).Msg("pagamento_sem_assinatura")
		}
		return nil
	}
	return h.subs.transition(ctx, sub, domain.SubscriptionStatusActive)
}

// overdue expires the owning subscription. Without a known subscription there
// is nothing to update.
func (h *paymentHandler) overdue(ctx context.Context, p domain.PaymentOverdue) error {
	sub, err := h.owner(ctx, p.SubscriptionRef)
	if err != nil {
		return err
	}
	if sub == nil {
		h.log.Warn().Str("payment_ref", p.PaymentRef).Str("external_ref", p.SubscriptionRef).Msg("pagamento_sem_assinatura")
		return nil
	}
	return h.subs.transition(ctx, sub, domain.SubscriptionStatusExpired)
}

func (h *paymentHandler) owner(ctx context.Context, ref string) (*domain.Subscription, error) {
	if ref == "" {
		return nil, nil
	}
	sub, err := h.subs.subs.GetByExternalRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetching subscription %s: %w", ref, err)
	}
	return sub, nil
}
