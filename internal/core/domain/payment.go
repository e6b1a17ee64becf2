package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the normalized payment method.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "cartao"
	PaymentMethodPix    PaymentMethod = "pix"
	PaymentMethodBoleto PaymentMethod = "boleto"
)

// PaymentStatus is the stored payment state. Only settled payments are recorded.
type PaymentStatus string

const PaymentStatusPaid PaymentStatus = "pago"

// Payment records one settled provider payment.
type Payment struct {
	ID                 uuid.UUID       `json:"id"`
	ExternalPaymentRef string          `json:"external_payment_ref"`
	SubscriptionID     *uuid.UUID      `json:"assinatura_id,omitempty"`
	Amount             decimal.Decimal `json:"valor"`
	Method             PaymentMethod   `json:"metodo"`
	Status             PaymentStatus   `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
}

// NewPayment builds a paid payment row from a confirmation event.
func NewPayment(in PaymentConfirmed, subscriptionID *uuid.UUID, now time.Time) *Payment {
	return &Payment{
		ID:                 uuid.New(),
		ExternalPaymentRef: in.PaymentRef,
		SubscriptionID:     subscriptionID,
		Amount:             in.Amount,
		Method:             in.Method,
		Status:             PaymentStatusPaid,
		CreatedAt:          now,
	}
}

// NormalizeMethod maps provider method names onto the three stored values.
// Anything unrecognized is treated as card.
func NormalizeMethod(raw string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pix":
		return PaymentMethodPix
	case "boleto", "bank_slip":
		return PaymentMethodBoleto
	default:
		return PaymentMethodCard
	}
}

// ParseAmount coerces the provider's value field (string, number, null or
// absent) into a non-negative decimal. Unparseable and negative values are 0.
func ParseAmount(raw json.RawMessage) decimal.Decimal {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		s = strings.TrimSpace(str)
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
