package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventStatus represents the processing state of a stored webhook event.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusProcessed EventStatus = "processed"
	EventStatusFailed    EventStatus = "failed"
)

// WebhookEvent is the durable log row for one provider delivery.
// EventID is provider-assigned and unique; the unique constraint on it is the
// deduplication mechanism.
type WebhookEvent struct {
	ID               uuid.UUID       `json:"id"`
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	ExternalID       string          `json:"external_id"`
	Payload          json.RawMessage `json:"payload"`
	Status           EventStatus     `json:"status"`
	RetryCount       int             `json:"retry_count"`
	LastError        *string         `json:"last_error,omitempty"`
	ProcessedAt      *time.Time      `json:"processed_at,omitempty"`
	ProcessingTimeMs *int64          `json:"processing_time_ms,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewWebhookEvent builds the pending row for a first delivery.
func NewWebhookEvent(in InboundEvent, now time.Time) *WebhookEvent {
	return &WebhookEvent{
		ID:         uuid.New(),
		EventID:    in.ID,
		EventType:  in.Event,
		ExternalID: in.ExternalID(),
		Payload:    in.Payload(),
		Status:     EventStatusPending,
		RetryCount: 0,
		CreatedAt:  now,
	}
}

// IsTerminal returns true once the event was processed successfully.
func (e *WebhookEvent) IsTerminal() bool {
	return e.Status == EventStatusProcessed
}

// IsRetryable reports whether a scheduler run may still pick this row up.
func (e *WebhookEvent) IsRetryable(maxRetryCount int) bool {
	if e.Status != EventStatusPending && e.Status != EventStatusFailed {
		return false
	}
	return e.RetryCount < maxRetryCount
}

// Inbound rebuilds the delivery from the stored payload. The row's identity
// wins over whatever the payload claims.
func (e *WebhookEvent) Inbound() (InboundEvent, error) {
	var ev InboundEvent
	if len(e.Payload) > 0 {
		parsed, err := ParseInboundEvent(e.Payload)
		if err != nil {
			return InboundEvent{}, fmt.Errorf("decoding stored payload: %w", err)
		}
		ev = parsed
	} else {
		ev.Raw = json.RawMessage(`{}`)
	}
	ev.ID = e.EventID
	if ev.Event == "" {
		ev.Event = e.EventType
	}
	return ev, nil
}
