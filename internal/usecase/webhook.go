package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/chanikul/edenclinic/internal/adapter/mailer"
	"github.com/chanikul/edenclinic/internal/adapter/payments"
	"github.com/chanikul/edenclinic/internal/config"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/domain/repository"
)

// ErrMissingOrderRef indicates a completed session without order metadata.
var ErrMissingOrderRef = errors.New("session has no order reference")

// WebhookUseCase settles orders from provider notifications. The same
// settlement path serves webhook deliveries and the background reconciler,
// so dedup and email behavior stay identical for both.
type WebhookUseCase struct {
	orders       repository.OrderRepository
	events       repository.WebhookEventRepository
	gateway      payments.Gateway
	mail         mailer.Mailer
	supportEmail string
	logger       *slog.Logger
}

// NewWebhookUseCase constructs WebhookUseCase.
func NewWebhookUseCase(orders repository.OrderRepository, events repository.WebhookEventRepository, gateway payments.Gateway, mail mailer.Mailer, cfg *config.Config, logger *slog.Logger) *WebhookUseCase {
	return &WebhookUseCase{
		orders:       orders,
		events:       events,
		gateway:      gateway,
		mail:         mail,
		supportEmail: cfg.SupportEmail,
		logger:       logger,
	}
}

// HandleEvent verifies and processes one webhook delivery. Only
// checkout.session.completed moves state; everything else is acknowledged
// untouched.
func (u *WebhookUseCase) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := u.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return err
	}
	if event.Session == nil {
		u.logger.Debug("ignoring webhook event", slog.String("type", event.Type))
		return nil
	}
	return u.settle(ctx, event.Session, event.ID, event.Type)
}

// ReconcilePending re-checks one stale PENDING order against the provider.
// A paid session settles through the webhook path; an expired session
// cancels the order.
func (u *WebhookUseCase) ReconcilePending(ctx context.Context, order model.Order) error {
	session, err := u.gateway.GetSession(ctx, order.StripeSessionID)
	if err != nil {
		return err
	}

	switch {
	case session.Paid():
		// Synthetic event id so a late webhook for the same session still
		// dedups against this settlement.
		return u.settle(ctx, session, "session-"+session.ID, "reconciler")
	case session.Status == model.SessionStatusExpired:
		if err := u.orders.UpdateStatus(ctx, order.ID, model.OrderStatusCancelled); err != nil {
			return err
		}
		u.logger.Info("order cancelled, session expired",
			slog.Int64("order_id", order.ID),
			slog.String("session_id", session.ID))
		return nil
	default:
		return nil
	}
}

func (u *WebhookUseCase) settle(ctx context.Context, session *model.PaymentSession, eventID, eventType string) error {
	if !session.Paid() {
		u.logger.Info("completed session not paid, skipping",
			slog.String("session_id", session.ID),
			slog.String("payment_status", session.PaymentStatus))
		return nil
	}
	if session.OrderRef == "" {
		return ErrMissingOrderRef
	}
	orderID, err := strconv.ParseInt(session.OrderRef, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrMissingOrderRef, session.OrderRef)
	}

	// Transition first, record the event after. A failed delivery must not
	// consume the event id, or a retry could never settle the order.
	transitioned, err := u.orders.MarkPaid(ctx, orderID, session.ShippingAddress, session.PaymentIntentID)
	if err != nil {
		return err
	}
	if !transitioned {
		u.logger.Info("order already settled", slog.Int64("order_id", orderID))
		return nil
	}

	if _, err := u.events.MarkProcessed(ctx, eventID, eventType); err != nil {
		u.logger.Error("record webhook event", slog.String("event_id", eventID), slog.Any("error", err))
	}

	u.logger.Info("order paid",
		slog.Int64("order_id", orderID),
		slog.String("event_id", eventID))

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		u.logger.Error("load paid order for email", slog.Any("error", err))
		return nil
	}

	email := mailer.OrderEmail{
		OrderID:     order.ID,
		PatientName: order.PatientName,
		TestName:    order.TestName,
	}
	if err := u.mail.SendOrderConfirmation(ctx, order.PatientEmail, email); err != nil {
		u.logger.Error("order confirmation email failed", slog.Any("error", err))
	}
	if err := u.mail.SendOrderNotice(ctx, u.supportEmail, email); err != nil {
		u.logger.Error("order notice email failed", slog.Any("error", err))
	}
	return nil
}
