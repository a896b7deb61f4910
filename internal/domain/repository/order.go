package repository

import (
	"context"
	"time"

	"github.com/chanikul/edenclinic/internal/domain/model"
)

// NewOrder carries the fields of an order created at checkout.
type NewOrder struct {
	ClientID      *int64
	PatientName   string
	PatientEmail  string
	PatientDOB    time.Time
	PatientMobile string
	BloodTestID   int64
	TestName      string
	Notes         string
}

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, o NewOrder) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
	List(ctx context.Context, status *model.OrderStatus, limit int) ([]model.Order, error)
	ListByClient(ctx context.Context, clientID int64) ([]model.Order, error)
	AttachSession(ctx context.Context, id int64, sessionID string) error
	// UpdateStatus applies an FSM-checked transition. It returns
	// ErrInvalidTransition when the order's current status does not admit
	// the target.
	UpdateStatus(ctx context.Context, id int64, to model.OrderStatus) error
	// MarkPaid transitions PENDING->PAID recording the shipping address and
	// payment intent. The boolean reports whether this call performed the
	// transition; a repeated delivery for an already-PAID order returns
	// (false, nil).
	MarkPaid(ctx context.Context, id int64, addr *model.ShippingAddress, paymentIntentID string) (bool, error)
	// SelectStalePending returns PENDING orders untouched for longer than
	// age, for webhook-miss reconciliation.
	SelectStalePending(ctx context.Context, age time.Duration, limit int) ([]model.Order, error)
}
