package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/domain/repository"
)

type orderRepository struct {
	storage *Storage
}

const orderColumns = `id, client_id, patient_name, patient_email, patient_dob, patient_mobile,
       blood_test_id, test_name, status, stripe_session_id, payment_intent_id,
       shipping_address, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o        model.Order
		addrJSON []byte
	)
	err := row.Scan(&o.ID, &o.ClientID, &o.PatientName, &o.PatientEmail, &o.PatientDOB,
		&o.PatientMobile, &o.BloodTestID, &o.TestName, &o.Status, &o.StripeSessionID,
		&o.PaymentIntentID, &addrJSON, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if len(addrJSON) > 0 {
		var addr model.ShippingAddress
		if err := json.Unmarshal(addrJSON, &addr); err != nil {
			return nil, fmt.Errorf("decode shipping address: %w", err)
		}
		o.ShippingAddress = &addr
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, o repository.NewOrder) (*model.Order, error) {
	const query = `INSERT INTO orders (client_id, patient_name, patient_email, patient_dob,
                       patient_mobile, blood_test_id, test_name, status, notes)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   RETURNING ` + orderColumns
	return scanOrder(r.storage.pool.QueryRow(ctx, query,
		o.ClientID, o.PatientName, o.PatientEmail, o.PatientDOB, o.PatientMobile,
		o.BloodTestID, o.TestName, model.OrderStatusPending, o.Notes))
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE stripe_session_id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, sessionID))
}

func (r *orderRepository) List(ctx context.Context, status *model.OrderStatus, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + `
                   FROM orders
                   WHERE ($1::text IS NULL OR status=$1)
                   ORDER BY created_at DESC
                   LIMIT $2`
	rows, err := r.storage.pool.Query(ctx, query, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepository) ListByClient(ctx context.Context, clientID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + `
                   FROM orders WHERE client_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) AttachSession(ctx context.Context, id int64, sessionID string) error {
	const query = `UPDATE orders SET stripe_session_id=$2, updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// UpdateStatus reads the current status under lock and refuses moves the
// transition table does not admit.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, to model.OrderStatus) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var current model.OrderStatus
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		if !model.CanTransition(current, to) {
			return domainErrors.ErrInvalidTransition
		}
		_, err = tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1`, id, to)
		return err
	})
}

// MarkPaid performs the PENDING->PAID transition atomically. The guard on
// the current status makes repeated webhook deliveries a no-op.
func (r *orderRepository) MarkPaid(ctx context.Context, id int64, addr *model.ShippingAddress, paymentIntentID string) (bool, error) {
	var addrJSON []byte
	if addr != nil {
		var err error
		if addrJSON, err = json.Marshal(addr); err != nil {
			return false, fmt.Errorf("encode shipping address: %w", err)
		}
	}

	const query = `UPDATE orders
                   SET status=$2, shipping_address=COALESCE($3, shipping_address),
                       payment_intent_id=$4, updated_at=NOW()
                   WHERE id=$1 AND status=$5`
	tag, err := r.storage.pool.Exec(ctx, query, id,
		model.OrderStatusPaid, addrJSON, paymentIntentID, model.OrderStatusPending)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var current model.OrderStatus
	err = r.storage.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domainErrors.ErrNotFound
		}
		return false, err
	}
	if current == model.OrderStatusPaid || current == model.OrderStatusDispatched || current == model.OrderStatusReady {
		// Already settled, nothing to do.
		return false, nil
	}
	return false, domainErrors.ErrInvalidTransition
}

func (r *orderRepository) SelectStalePending(ctx context.Context, age time.Duration, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + `
                   FROM orders
                   WHERE status=$1 AND stripe_session_id <> '' AND updated_at < NOW() - $2::interval
                   ORDER BY updated_at
                   LIMIT $3`
	interval := fmt.Sprintf("%d seconds", int(age.Seconds()))
	rows, err := r.storage.pool.Query(ctx, query, model.OrderStatusPending, interval, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}
