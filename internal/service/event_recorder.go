package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billing-webhook-service/internal/core/domain"
	"billing-webhook-service/internal/core/ports"
	"billing-webhook-service/pkg/apperror"
)

// eventRecorder owns the webhook_events bookkeeping shared by the Ingestor
// and Router.RouteAndRecord: one insert-or-lookup, then one finalizing update.
type eventRecorder struct {
	events ports.WebhookEventRepository
	now    func() time.Time
}

// begin inserts the pending row. A duplicate is reported as ports.ErrDuplicateKey.
func (r *eventRecorder) begin(ctx context.Context, ev domain.InboundEvent) (*domain.WebhookEvent, error) {
	row := domain.NewWebhookEvent(ev, r.now())
	if err := r.events.Insert(ctx, row); err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			return nil, ports.ErrDuplicateKey
		}
		return nil, fmt.Errorf("inserting webhook event: %w", err)
	}
	return row, nil
}

// lookup returns the stored row or nil when it does not exist.
func (r *eventRecorder) lookup(ctx context.Context, eventID string) (*domain.WebhookEvent, error) {
	row, err := r.events.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("fetching webhook event: %w", err)
	}
	return row, nil
}

// finish writes the terminal status for a routed event.
func (r *eventRecorder) finish(ctx context.Context, row *domain.WebhookEvent, routeErr error, elapsed time.Duration) error {
	ms := elapsed.Milliseconds()
	if routeErr == nil {
		if err := r.events.MarkProcessed(ctx, row.ID, r.now(), ms); err != nil {
			return fmt.Errorf("marking webhook event processed: %w", err)
		}
		return nil
	}
	if err := r.events.MarkFailed(ctx, row.ID, routeErr.Error(), r.now(), ms); err != nil {
		return fmt.Errorf("marking webhook event failed: %w", err)
	}
	return nil
}

// errorMessage returns the message stored in last_error and retry reports.
// AppErrors contribute their wrapped cause when they have one.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Err != nil {
		return appErr.Err.Error()
	}
	return err.Error()
}
