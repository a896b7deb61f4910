package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chanikul/edenclinic/internal/config"
)

// Pinger reports backing-store connectivity.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// DiagnosticHandler serves GET /api/diagnostic for deploy smoke checks.
type DiagnosticHandler struct {
	db  Pinger
	cfg *config.Config
}

// NewDiagnosticHandler creates DiagnosticHandler.
func NewDiagnosticHandler(db Pinger, cfg *config.Config) *DiagnosticHandler {
	return &DiagnosticHandler{db: db, cfg: cfg}
}

// Status reports database reachability and whether payment and mail
// credentials are configured. It never echoes secret values.
func (h *DiagnosticHandler) Status(c *gin.Context) {
	dbStatus := "ok"
	code := http.StatusOK
	if err := h.db.HealthCheck(c.Request.Context()); err != nil {
		dbStatus = "unreachable"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"database":          dbStatus,
		"stripeConfigured":  h.cfg.StripeSecretKey != "",
		"webhookConfigured": h.cfg.StripeWebhookSecret != "",
		"mailConfigured":    h.cfg.SendgridAPIKey != "",
		"storageConfigured": h.cfg.StorageEndpoint != "",
	})
}
