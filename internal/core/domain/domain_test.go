package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from SubscriptionStatus
		to   SubscriptionStatus
		want bool
	}{
		{"expired to active", SubscriptionStatusExpired, SubscriptionStatusActive, true},
		{"active to cancelled", SubscriptionStatusActive, SubscriptionStatusCancelled, true},
		{"active to expired", SubscriptionStatusActive, SubscriptionStatusExpired, true},
		{"active to active", SubscriptionStatusActive, SubscriptionStatusActive, false},
		{"cancelled to active", SubscriptionStatusCancelled, SubscriptionStatusActive, false},
		{"cancelled to expired", SubscriptionStatusCancelled, SubscriptionStatusExpired, false},
		{"unknown to active", SubscriptionStatus(""), SubscriptionStatusActive, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		raw  string
		want PaymentMethod
	}{
		{"pix", PaymentMethodPix},
		{"PIX", PaymentMethodPix},
		{"boleto", PaymentMethodBoleto},
		{"bank_slip", PaymentMethodBoleto},
		{"credit_card", PaymentMethodCard},
		{"debit_card", PaymentMethodCard},
		{"", PaymentMethodCard},
		{"wire", PaymentMethodCard},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMethod(tt.raw))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string decimal", `"10.50"`, "10.5"},
		{"number", `99.9`, "99.9"},
		{"integer", `100`, "100"},
		{"absent", ``, "0"},
		{"null", `null`, "0"},
		{"garbage string", `"abc"`, "0"},
		{"negative", `-5`, "0"},
		{"negative string", `"-5.00"`, "0"},
		{"sub-cent precision", `"10.555"`, "10.555"},
		{"large amount", `12345678901.99`, "12345678901.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(json.RawMessage(tt.raw))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		eventType string
		want      EventKind
	}{
		{"SUBSCRIPTION_CREATED", KindSubscriptionCreated},
		{"subscription_created", KindSubscriptionCreated},
		{" CONFIRMED ", KindPaymentConfirmed},
		{"PAYMENT_CONFIRMED", KindPaymentConfirmed},
		{"PAYMENT_RECEIVED", KindPaymentConfirmed},
		{"SUBSCRIPTION_DELETED", KindSubscriptionCancelled},
		{"PAYMENT_OVERDUE", KindPaymentOverdue},
		{"PAYMENT_REFUNDED", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.eventType))
		})
	}
}

func TestParseInboundEvent(t *testing.T) {
	body := []byte(`{"id":"evt_1","event":"PAYMENT_CONFIRMED","payment":{"id":"pay_9"},"subscription":{"id":"sub_a"},"value":"10.50","method":"credit_card","extra":{"k":"v"}}`)

	ev, err := ParseInboundEvent(body)
	require.NoError(t, err)

	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, "PAYMENT_CONFIRMED", ev.NormalizedType())
	assert.Equal(t, "pay_9", ev.ExternalID())
	assert.JSONEq(t, string(body), string(ev.Payload()))

	p, ok := DecodePayload(ev.Event, ev).(PaymentConfirmed)
	require.True(t, ok)
	assert.Equal(t, "pay_9", p.PaymentRef)
	assert.Equal(t, "sub_a", p.SubscriptionRef)
	assert.Equal(t, PaymentMethodCard, p.Method)
	assert.Equal(t, 10.5, p.Amount.InexactFloat64())
}

func TestInboundEvent_ExternalIDFallsBackToSubscription(t *testing.T) {
	ev := InboundEvent{ID: "evt_1", Event: "SUBSCRIPTION_CREATED", Subscription: &EntityRef{ID: "sub_a"}}
	assert.Equal(t, "sub_a", ev.ExternalID())

	assert.Empty(t, InboundEvent{}.ExternalID())
}

func TestInboundEvent_Validate(t *testing.T) {
	assert.Empty(t, InboundEvent{ID: "evt_1", Event: "X"}.Validate())
	assert.Equal(t, "missing event id", InboundEvent{Event: "X"}.Validate())
	assert.Equal(t, "missing event type", InboundEvent{ID: "evt_1", Event: "  "}.Validate())
}

func TestDecodePayload_Unknown(t *testing.T) {
	got := DecodePayload("payment_refunded", InboundEvent{ID: "evt_1"})
	assert.Equal(t, UnknownEvent{Type: "PAYMENT_REFUNDED"}, got)
	assert.Equal(t, KindUnknown, got.Kind())
}

func TestNewSubscription(t *testing.T) {
	now := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

	t.Run("without context is flagged", func(t *testing.T) {
		s := NewSubscription(SubscriptionCreated{SubscriptionRef: "sub_a"}, now)
		assert.Equal(t, SubscriptionStatusActive, s.Status)
		assert.Equal(t, "sub_a", s.ExternalRef)
		assert.Equal(t, now, s.StartsAt)
		assert.Equal(t, now.AddDate(0, 1, 0), s.EndsAt)
		assert.Nil(t, s.PlanID)
		assert.True(t, s.NeedsReconciliation)
	})

	t.Run("with full context", func(t *testing.T) {
		s := NewSubscription(SubscriptionCreated{
			SubscriptionRef: "sub_b",
			PlanID:          "7b0c3f5e-0c7b-4f1e-9a57-0d5d7f1a1b01",
			CustomerID:      "7b0c3f5e-0c7b-4f1e-9a57-0d5d7f1a1b02",
			UnitID:          "7b0c3f5e-0c7b-4f1e-9a57-0d5d7f1a1b03",
		}, now)
		require.NotNil(t, s.PlanID)
		assert.Equal(t, "7b0c3f5e-0c7b-4f1e-9a57-0d5d7f1a1b01", s.PlanID.String())
		assert.False(t, s.NeedsReconciliation)
	})

	t.Run("malformed reference is treated as missing", func(t *testing.T) {
		s := NewSubscription(SubscriptionCreated{
			SubscriptionRef: "sub_c",
			PlanID:          "plan_basic",
			CustomerID:      "7b0c3f5e-0c7b-4f1e-9a57-0d5d7f1a1b02",
			UnitID:          "7b0c3f5e-0c7b-4f1e-9a57-0d5d7f1a1b03",
		}, now)
		assert.Nil(t, s.PlanID)
		assert.True(t, s.NeedsReconciliation)
	})
}

func TestWebhookEvent_IsRetryable(t *testing.T) {
	tests := []struct {
		name   string
		status EventStatus
		count  int
		want   bool
	}{
		{"pending fresh", EventStatusPending, 0, true},
		{"failed below ceiling", EventStatusFailed, 4, true},
		{"failed at ceiling", EventStatusFailed, 5, false},
		{"processed", EventStatusProcessed, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &WebhookEvent{Status: tt.status, RetryCount: tt.count}
			assert.Equal(t, tt.want, e.IsRetryable(5))
		})
	}
}

func TestWebhookEvent_Inbound(t *testing.T) {
	t.Run("row identity wins", func(t *testing.T) {
		row := &WebhookEvent{
			EventID:   "evt_row",
			EventType: "PAYMENT_CONFIRMED",
			Payload:   json.RawMessage(`{"id":"evt_payload","payment":{"id":"pay_1"}}`),
		}
		ev, err := row.Inbound()
		require.NoError(t, err)
		assert.Equal(t, "evt_row", ev.ID)
		assert.Equal(t, "PAYMENT_CONFIRMED", ev.Event)
		assert.Equal(t, "pay_1", ev.PaymentRef())
	})

	t.Run("empty payload", func(t *testing.T) {
		row := &WebhookEvent{EventID: "evt_2", EventType: "SUBSCRIPTION_CREATED"}
		ev, err := row.Inbound()
		require.NoError(t, err)
		assert.Equal(t, "evt_2", ev.ID)
		assert.JSONEq(t, `{}`, string(ev.Raw))
	})

	t.Run("corrupt payload", func(t *testing.T) {
		row := &WebhookEvent{EventID: "evt_3", Payload: json.RawMessage(`{not json`)}
		_, err := row.Inbound()
		assert.Error(t, err)
	})
}
