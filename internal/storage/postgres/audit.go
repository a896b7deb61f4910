package postgres

import (
	"context"
	"encoding/json"

	"github.com/chanikul/edenclinic/internal/domain/model"
)

type auditLogRepository struct {
	storage *Storage
}

func (r *auditLogRepository) Append(ctx context.Context, adminID int64, action, entityType, entityID string, details json.RawMessage) error {
	const query = `INSERT INTO audit_logs (admin_id, action, entity_type, entity_id, details)
                   VALUES ($1, $2, $3, $4, $5)`
	_, err := r.storage.pool.Exec(ctx, query, adminID, action, entityType, entityID, details)
	return err
}

func (r *auditLogRepository) ListRecent(ctx context.Context, limit int) ([]model.AuditLog, error) {
	const query = `SELECT id, admin_id, action, entity_type, entity_id, details, created_at
                   FROM audit_logs
                   ORDER BY created_at DESC
                   LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.AuditLog
	for rows.Next() {
		var e model.AuditLog
		if err := rows.Scan(&e.ID, &e.AdminID, &e.Action, &e.EntityType, &e.EntityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

type webhookEventRepository struct {
	storage *Storage
}

// MarkProcessed records the provider event id. It returns false when the
// id was already present, which lets the webhook handler skip redelivered
// events without re-running their side effects.
func (r *webhookEventRepository) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	const query = `INSERT INTO webhook_events (event_id, event_type)
                   VALUES ($1, $2)
                   ON CONFLICT (event_id) DO NOTHING`
	tag, err := r.storage.pool.Exec(ctx, query, eventID, eventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
