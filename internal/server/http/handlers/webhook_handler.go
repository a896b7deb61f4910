package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/usecase"
)

// Raw webhook bodies are small JSON events; cap reads well above any real
// payload.
const maxWebhookBody = 1 << 20

// WebhookHandler receives payment-provider notifications.
type WebhookHandler struct {
	webhooks *usecase.WebhookUseCase
}

// NewWebhookHandler creates WebhookHandler.
func NewWebhookHandler(webhooks *usecase.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// Handle handles POST /api/webhooks. The body must be read raw: signature
// verification runs over the exact bytes the provider signed.
func (h *WebhookHandler) Handle(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable body")
		return
	}
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		writeError(c, http.StatusBadRequest, "missing signature")
		return
	}

	if err := h.webhooks.HandleEvent(c.Request.Context(), payload, signature); err != nil {
		// A verified event naming an order we do not have is our data problem,
		// not the caller's. Answer 500 so the provider retries the delivery.
		if errors.Is(err, domainErrors.ErrNotFound) {
			writeError(c, http.StatusInternalServerError, "internal error")
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
