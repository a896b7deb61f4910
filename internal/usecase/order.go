package usecase

import (
	"context"
	"log/slog"

	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/domain/repository"
)

const defaultOrderListLimit = 100

// OrderUseCase serves the back-office order views and status changes.
type OrderUseCase struct {
	orders  repository.OrderRepository
	auditor auditor
	logger  *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, audit repository.AuditLogRepository, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{
		orders:  orders,
		auditor: auditor{audit: audit, logger: logger},
		logger:  logger,
	}
}

// List returns orders, optionally filtered by status.
func (u *OrderUseCase) List(ctx context.Context, status string, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultOrderListLimit
	}
	var filter *model.OrderStatus
	if status != "" {
		s := model.OrderStatus(status)
		if !model.ValidStatus(s) {
			return nil, domainErrors.NewValidation("status", "unknown status")
		}
		filter = &s
	}
	return u.orders.List(ctx, filter, limit)
}

// Get returns one order.
func (u *OrderUseCase) Get(ctx context.Context, id int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, id)
}

// ListByClient returns a patient's own orders.
func (u *OrderUseCase) ListByClient(ctx context.Context, clientID int64) ([]model.Order, error) {
	return u.orders.ListByClient(ctx, clientID)
}

// UpdateStatus applies a back-office status change. PENDING->PAID is
// reserved for the payment path, so it is rejected here.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, actor *model.Admin, id int64, status string) (*model.Order, error) {
	to := model.OrderStatus(status)
	if !model.ValidStatus(to) {
		return nil, domainErrors.NewValidation("status", "unknown status")
	}
	if to == model.OrderStatusPaid || to == model.OrderStatusPending {
		return nil, domainErrors.ErrInvalidTransition
	}

	if err := u.orders.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}

	u.auditor.record(ctx, actor.ID, "order.status_changed", "order", itoa(id), map[string]any{
		"status": to,
	})
	u.logger.Info("order status changed",
		slog.Int64("order_id", id),
		slog.String("status", string(to)),
		slog.Int64("admin_id", actor.ID))

	return u.orders.GetByID(ctx, id)
}
