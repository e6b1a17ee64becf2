package postgres

import (
	"context"
	"errors"
	"fmt"

	"billing-webhook-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// Create inserts a payment. external_payment_ref is unique.
// valor travels as text so the decimal keeps its exact scale.
func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO pagamentos (id, external_payment_ref, assinatura_id, valor, metodo, status, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.ExternalPaymentRef, p.SubscriptionID, p.Amount.String(), p.Method, p.Status, p.CreatedAt,
	)
	if err != nil {
		return mapInsertError("insert payment", err)
	}
	return nil
}

// GetByExternalRef fetches a payment by provider id.
func (r *PaymentRepo) GetByExternalRef(ctx context.Context, externalRef string) (*domain.Payment, error) {
	query := `SELECT id, external_payment_ref, assinatura_id, valor::text, metodo, status, created_at
		FROM pagamentos WHERE external_payment_ref = $1`

	p := &domain.Payment{}
	var valor string
	err := r.pool.QueryRow(ctx, query, externalRef).Scan(
		&p.ID, &p.ExternalPaymentRef, &p.SubscriptionID, &valor, &p.Method, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by external ref: %w", err)
	}

	amount, err := decimal.NewFromString(valor)
	if err != nil {
		return nil, fmt.Errorf("parse payment valor %q: %w", valor, err)
	}
	p.Amount = amount
	return p, nil
}
