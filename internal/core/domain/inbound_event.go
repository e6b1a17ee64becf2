package domain

import (
	"encoding/json"
	"strings"
)

// EntityRef is a provider object reference ({"id": "..."}).
type EntityRef struct {
	ID string `json:"id"`
}

// InboundEvent is the provider's webhook body. Raw keeps the exact bytes
// received so the stored payload can be replayed verbatim.
type InboundEvent struct {
	ID           string          `json:"id"`
	Event        string          `json:"event"`
	DateCreated  string          `json:"dateCreated,omitempty"`
	Subscription *EntityRef      `json:"subscription,omitempty"`
	Payment      *EntityRef      `json:"payment,omitempty"`
	Value        json.RawMessage `json:"value,omitempty"`
	Method       string          `json:"method,omitempty"`
	PlanID       string          `json:"planId,omitempty"`
	CustomerID   string          `json:"customerId,omitempty"`
	UnitID       string          `json:"unitId,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// ParseInboundEvent decodes a webhook body and retains the raw bytes.
func ParseInboundEvent(data []byte) (InboundEvent, error) {
	var ev InboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return InboundEvent{}, err
	}
	ev.Raw = append(json.RawMessage(nil), data...)
	return ev, nil
}

// Validate returns a non-empty reason when the event cannot be ingested.
func (e InboundEvent) Validate() string {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return "missing event id"
	case strings.TrimSpace(e.Event) == "":
		return "missing event type"
	}
	return ""
}

// NormalizedType is the routing key: the event type trimmed and uppercased.
func (e InboundEvent) NormalizedType() string {
	return NormalizeEventType(e.Event)
}

// NormalizeEventType trims and uppercases a provider event type.
func NormalizeEventType(eventType string) string {
	return strings.ToUpper(strings.TrimSpace(eventType))
}

// SubscriptionRef returns subscription.id or "".
func (e InboundEvent) SubscriptionRef() string {
	if e.Subscription == nil {
		return ""
	}
	return e.Subscription.ID
}

// PaymentRef returns payment.id or "".
func (e InboundEvent) PaymentRef() string {
	if e.Payment == nil {
		return ""
	}
	return e.Payment.ID
}

// ExternalID is the provider object the event refers to. Payments win over
// subscriptions because payment events usually carry both.
func (e InboundEvent) ExternalID() string {
	if ref := e.PaymentRef(); ref != "" {
		return ref
	}
	return e.SubscriptionRef()
}

// Payload returns the bytes to persist for replay.
func (e InboundEvent) Payload() json.RawMessage {
	if len(e.Raw) > 0 {
		return e.Raw
	}
	b, err := json.Marshal(e)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
