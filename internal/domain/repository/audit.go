package repository

import (
	"context"
	"encoding/json"

	"github.com/chanikul/edenclinic/internal/domain/model"
)

// AuditLogRepository is append-only; entries are never updated or removed.
type AuditLogRepository interface {
	Append(ctx context.Context, adminID int64, action, entityType, entityID string, details json.RawMessage) error
	ListRecent(ctx context.Context, limit int) ([]model.AuditLog, error)
}

// WebhookEventRepository persists processed provider event ids so webhook
// handling stays idempotent across restarts and replicas.
type WebhookEventRepository interface {
	// MarkProcessed inserts the event id. It returns true when the event
	// was seen for the first time.
	MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error)
}
