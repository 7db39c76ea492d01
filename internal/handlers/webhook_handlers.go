package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"eventmarket_app/internal/services"
)

// SignatureHeader carries the processor's timestamped HMAC signature
const SignatureHeader = "Processor-Signature"

type WebhookHandler struct {
	authenticator *services.WebhookAuthenticator
	reconciler    *services.ReconcileService
}

func NewWebhookHandler(authenticator *services.WebhookAuthenticator, reconciler *services.ReconcileService) *WebhookHandler {
	return &WebhookHandler{authenticator: authenticator, reconciler: reconciler}
}

// HandleProcessorEvent receives asynchronous payment lifecycle events.
// Response contract: 2xx acknowledges and suppresses redelivery, 400 means
// the sender failed authentication, 500 asks the processor to retry.
func (h *WebhookHandler) HandleProcessorEvent(c echo.Context) error {
	// The signature covers the exact raw bytes, so read before any parsing
	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	event, err := h.authenticator.Authenticate(rawBody, c.Request().Header.Get(SignatureHeader))
	if err != nil {
		// One opaque response for every auth failure; the reason is logged
		return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
	}

	result, err := h.reconciler.Route(c.Request().Context(), event)
	if err != nil {
		// Non-2xx makes the processor redeliver; the transaction rolled
		// back, so the retry starts clean
		log.Printf("[webhook] processing failed for event %s: %v", event.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "event processing failed")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"received": event.ID,
		"result":   string(result),
	})
}
