package domain

import "github.com/shopspring/decimal"

// EventKind identifies which handler an event type maps to.
type EventKind string

const (
	KindSubscriptionCreated   EventKind = "subscription_created"
	KindSubscriptionCancelled EventKind = "subscription_cancelled"
	KindPaymentConfirmed      EventKind = "payment_confirmed"
	KindPaymentOverdue        EventKind = "payment_overdue"
	KindUnknown               EventKind = "unknown"
)

// eventKinds maps normalized provider event types to handler kinds.
var eventKinds = map[string]EventKind{
	"SUBSCRIPTION_CREATED":   KindSubscriptionCreated,
	"SUBSCRIPTION_DELETED":   KindSubscriptionCancelled,
	"SUBSCRIPTION_CANCELLED": KindSubscriptionCancelled,
	"CONFIRMED":              KindPaymentConfirmed,
	"PAYMENT_CONFIRMED":      KindPaymentConfirmed,
	"PAYMENT_RECEIVED":       KindPaymentConfirmed,
	"PAYMENT_OVERDUE":        KindPaymentOverdue,
}

// KindOf returns the handler kind for a provider event type.
func KindOf(eventType string) EventKind {
	if k, ok := eventKinds[NormalizeEventType(eventType)]; ok {
		return k
	}
	return KindUnknown
}

// EventPayload is the decoded, typed form of an inbound event.
type EventPayload interface {
	Kind() EventKind
}

type SubscriptionCreated struct {
	SubscriptionRef string
	PlanID          string
	CustomerID      string
	UnitID          string
}

type SubscriptionCancelled struct {
	SubscriptionRef string
}

type PaymentConfirmed struct {
	PaymentRef      string
	SubscriptionRef string
	Amount          decimal.Decimal
	Method          PaymentMethod
}

type PaymentOverdue struct {
	PaymentRef      string
	SubscriptionRef string
}

// UnknownEvent is any type this system does not model. It is never an error.
type UnknownEvent struct {
	Type string
}

func (SubscriptionCreated) Kind() EventKind   { return KindSubscriptionCreated }
func (SubscriptionCancelled) Kind() EventKind { return KindSubscriptionCancelled }
func (PaymentConfirmed) Kind() EventKind      { return KindPaymentConfirmed }
func (PaymentOverdue) Kind() EventKind        { return KindPaymentOverdue }
func (UnknownEvent) Kind() EventKind          { return KindUnknown }

// DecodePayload converts an inbound event into its typed variant, keyed on
// eventType rather than ev.Event so callers can route a stored type.
func DecodePayload(eventType string, ev InboundEvent) EventPayload {
	switch KindOf(eventType) {
	case KindSubscriptionCreated:
		return SubscriptionCreated{
			SubscriptionRef: ev.SubscriptionRef(),
			PlanID:          ev.PlanID,
			CustomerID:      ev.CustomerID,
			UnitID:          ev.UnitID,
		}
	case KindSubscriptionCancelled:
		return SubscriptionCancelled{SubscriptionRef: ev.SubscriptionRef()}
	case KindPaymentConfirmed:
		return PaymentConfirmed{
			PaymentRef:      ev.PaymentRef(),
			SubscriptionRef: ev.SubscriptionRef(),
			Amount:          ParseAmount(ev.Value),
			Method:          NormalizeMethod(ev.Method),
		}
	case KindPaymentOverdue:
		return PaymentOverdue{
			PaymentRef:      ev.PaymentRef(),
			SubscriptionRef: ev.SubscriptionRef(),
		}
	default:
		return UnknownEvent{Type: NormalizeEventType(eventType)}
	}
}
