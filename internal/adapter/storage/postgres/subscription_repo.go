package postgres

import (
	"context"
	"errors"
	"fmt"

	"billing-webhook-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const subscriptionColumns = `id, external_ref, status, plano_id, cliente_id, unidade_id,
	inicio, fim, needs_reconciliation, created_at, updated_at`

// SubscriptionRepo implements ports.SubscriptionRepository.
type SubscriptionRepo struct {
	pool Pool
}

// NewSubscriptionRepo creates a new SubscriptionRepo.
func NewSubscriptionRepo(pool Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

// Create inserts a new subscription. external_ref is unique.
func (r *SubscriptionRepo) Create(ctx context.Context, s *domain.Subscription) error {
	query := `INSERT INTO assinaturas (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.ExternalRef, s.Status, s.PlanID, s.CustomerID, s.UnitID,
		s.StartsAt, s.EndsAt, s.NeedsReconciliation, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return mapInsertError("insert subscription", err)
	}
	return nil
}

// GetByExternalRef fetches a subscription by provider id.
func (r *SubscriptionRepo) GetByExternalRef(ctx context.Context, externalRef string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM assinaturas WHERE external_ref = $1`

	s, err := scanSubscription(r.pool.QueryRow(ctx, query, externalRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription by external ref: %w", err)
	}
	return s, nil
}

// UpdateStatus sets the status. The cancelled guard is repeated in SQL so a
// concurrent cancellation cannot be overwritten; a refused update returns
// ports.ErrNoRowsAffected.
func (r *SubscriptionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SubscriptionStatus) error {
	query := `UPDATE assinaturas SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status IS DISTINCT FROM 'cancelada'`

	tag, err := r.pool.Exec(ctx, query, status, id)
	return checkAffected("update subscription status", tag, err)
}

// ListNeedingReconciliation returns subscriptions created without mapping context.
func (r *SubscriptionRepo) ListNeedingReconciliation(ctx context.Context, limit int) ([]domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM assinaturas
		WHERE needs_reconciliation = TRUE
		ORDER BY created_at ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions needing reconciliation: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	s := &domain.Subscription{}
	err := row.Scan(
		&s.ID, &s.ExternalRef, &s.Status, &s.PlanID, &s.CustomerID, &s.UnitID,
		&s.StartsAt, &s.EndsAt, &s.NeedsReconciliation, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
