package handler

import (
	"errors"
	"io"
	"net/http"

	"billing-webhook-service/internal/core/domain"
	"billing-webhook-service/internal/core/ports"
	"billing-webhook-service/pkg/apperror"
	"billing-webhook-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookHandler receives billing provider deliveries.
type WebhookHandler struct {
	ingestor ports.EventIngestor
	log      zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(ingestor ports.EventIngestor, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{ingestor: ingestor, log: log}
}

// Receive handles POST /webhooks/billing.
//
// A handler failure is still acknowledged: the delivery is stored as failed
// and the retry scheduler owns it from there. A redelivery would only hit
// the unique constraint.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, apperror.New("REQ_002", "Request body too large", http.StatusRequestEntityTooLarge))
			return
		}
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	ev, err := domain.ParseInboundEvent(body)
	if err != nil {
		response.Error(c, apperror.ErrInvalidPayload("malformed JSON"))
		return
	}

	res := h.ingestor.Process(c.Request.Context(), ev, ports.ProcessOptions{})
	if res.Success {
		response.Ack(c, res.AlreadyProcessed)
		return
	}

	if apperror.Code(res.Error) == apperror.CodeRouterFailure {
		h.log.Warn().Err(res.Error).Str("event_id", ev.ID).Msg("webhook accepted, handler failed; left for retry")
		response.Ack(c, false)
		return
	}
	response.Error(c, res.Error)
}
