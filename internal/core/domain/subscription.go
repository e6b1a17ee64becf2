package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ativa"
	SubscriptionStatusExpired   SubscriptionStatus = "expirada"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelada"
)

// SubscriptionValidity is the window granted to a newly created subscription.
const SubscriptionValidity = 1 // months

// Subscription mirrors a provider subscription. The mapping columns are nil
// when the provider payload did not carry a usable reference; such rows are
// flagged for reconciliation instead of pointing at placeholder records.
type Subscription struct {
	ID                  uuid.UUID          `json:"id"`
	ExternalRef         string             `json:"external_ref"`
	Status              SubscriptionStatus `json:"status"`
	PlanID              *uuid.UUID         `json:"plano_id,omitempty"`
	CustomerID          *uuid.UUID         `json:"cliente_id,omitempty"`
	UnitID              *uuid.UUID         `json:"unidade_id,omitempty"`
	StartsAt            time.Time          `json:"inicio"`
	EndsAt              time.Time          `json:"fim"`
	NeedsReconciliation bool               `json:"needs_reconciliation"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// NewSubscription builds an active subscription valid from now for one month.
func NewSubscription(in SubscriptionCreated, now time.Time) *Subscription {
	s := &Subscription{
		ID:          uuid.New(),
		ExternalRef: in.SubscriptionRef,
		Status:      SubscriptionStatusActive,
		PlanID:      parseRef(in.PlanID),
		CustomerID:  parseRef(in.CustomerID),
		UnitID:      parseRef(in.UnitID),
		StartsAt:    now,
		EndsAt:      now.AddDate(0, SubscriptionValidity, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.NeedsReconciliation = s.PlanID == nil || s.CustomerID == nil || s.UnitID == nil
	return s
}

// IsCancelled returns true if the subscription reached its terminal state.
func (s *Subscription) IsCancelled() bool {
	return s.Status == SubscriptionStatusCancelled
}

// CanTransition reports whether an automated update may move a subscription
// from one status to another. Cancelled is terminal and redundant updates are
// refused. Unknown or empty current statuses may move anywhere.
func CanTransition(from, to SubscriptionStatus) bool {
	if from == to {
		return false
	}
	if from == SubscriptionStatusCancelled {
		return false
	}
	return true
}

func parseRef(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
