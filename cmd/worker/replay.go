package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"billing-webhook-service/config"
	"billing-webhook-service/internal/app"
	"billing-webhook-service/internal/core/domain"
	"billing-webhook-service/internal/core/ports"
	"billing-webhook-service/pkg/apperror"
	"billing-webhook-service/pkg/logger"

	"github.com/spf13/cobra"
)

// recordingRouter routes an event and keeps its webhook_events row current.
type recordingRouter interface {
	RouteAndRecord(ctx context.Context, ev domain.InboundEvent) error
}

func replayCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <file|->",
		Short: "Route a raw provider payload from a file or stdin, bypassing the HTTP receiver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log := logger.New("billing-webhook-worker", cfg.Log.Level, cfg.Log.Pretty)

			a, cleanup, err := app.Build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			row, err := replayPayload(cmd.Context(), a.Router, a.Events, data)
			if err != nil {
				return err
			}
			return printJSON(cmd, row)
		},
	}
	return cmd
}

func readPayload(cmd *cobra.Command, source string) ([]byte, error) {
	if source == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	return data, nil
}

// replayPayload routes data and returns the stored row. A delivery already in
// webhook_events is left untouched and its existing row is returned.
func replayPayload(ctx context.Context, router recordingRouter, events ports.WebhookEventRepository, data []byte) (*domain.WebhookEvent, error) {
	ev, err := domain.ParseInboundEvent(data)
	if err != nil {
		return nil, apperror.ErrInvalidPayload("malformed JSON")
	}
	if err := router.RouteAndRecord(ctx, ev); err != nil {
		return nil, err
	}

	row, err := events.GetByEventID(ctx, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("loading webhook event %s: %w", ev.ID, err)
	}
	if row == nil {
		return nil, apperror.ErrEventNotFound(ev.ID)
	}
	return row, nil
}
