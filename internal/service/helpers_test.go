package service

import (
	"sync"
	"time"

	"billing-webhook-service/internal/core/domain"
)

// steppingClock returns a clock that advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(step)
		return t
	}
}

func subscriptionCreatedEvent(id, subRef string) domain.InboundEvent {
	return domain.InboundEvent{
		ID:           id,
		Event:        "SUBSCRIPTION_CREATED",
		Subscription: &domain.EntityRef{ID: subRef},
	}
}

func paymentConfirmedEvent(id, payRef, subRef string) domain.InboundEvent {
	ev := domain.InboundEvent{
		ID:      id,
		Event:   "CONFIRMED",
		Payment: &domain.EntityRef{ID: payRef},
		Value:   []byte(`"10.50"`),
		Method:  "credit_card",
	}
	if subRef != "" {
		ev.Subscription = &domain.EntityRef{ID: subRef}
	}
	return ev
}
