package model

import (
	"encoding/json"
	"time"
)

// AuditLog is an append-only record of a back-office action. Rows are
// written once and never mutated or deleted.
type AuditLog struct {
	ID         int64
	AdminID    int64
	Action     string
	EntityType string
	EntityID   string
	Details    json.RawMessage
	CreatedAt  time.Time
}

// WebhookEvent records a processed payment-provider event. The primary key
// on EventID makes webhook handling idempotent across restarts and
// replicas.
type WebhookEvent struct {
	EventID     string
	EventType   string
	ProcessedAt time.Time
}
