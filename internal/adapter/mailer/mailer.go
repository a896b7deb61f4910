package mailer

import (
	"context"
	"log/slog"
)

// OrderEmail carries the fields rendered into order-related messages.
type OrderEmail struct {
	OrderID     int64
	PatientName string
	TestName    string
}

// Mailer sends transactional email. Implementations must not be relied on
// for request success: callers log failures and carry on.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, to string, email OrderEmail) error
	SendOrderNotice(ctx context.Context, to string, email OrderEmail) error
	SendResultReady(ctx context.Context, to, patientName, testName string) error
	SendPasswordReset(ctx context.Context, to, name, link string) error
	SendWelcome(ctx context.Context, to, name, link string) error
}

// Noop discards all mail. Used when no API key is configured so local
// environments work without a mail account.
type Noop struct {
	logger *slog.Logger
}

func NewNoop(logger *slog.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SendOrderConfirmation(_ context.Context, to string, email OrderEmail) error {
	n.logger.Info("mail skipped, no api key", slog.String("kind", "order_confirmation"), slog.String("to", to), slog.Int64("order_id", email.OrderID))
	return nil
}

func (n *Noop) SendOrderNotice(_ context.Context, to string, email OrderEmail) error {
	n.logger.Info("mail skipped, no api key", slog.String("kind", "order_notice"), slog.String("to", to), slog.Int64("order_id", email.OrderID))
	return nil
}

func (n *Noop) SendResultReady(_ context.Context, to, _, _ string) error {
	n.logger.Info("mail skipped, no api key", slog.String("kind", "result_ready"), slog.String("to", to))
	return nil
}

func (n *Noop) SendPasswordReset(_ context.Context, to, _, _ string) error {
	n.logger.Info("mail skipped, no api key", slog.String("kind", "password_reset"), slog.String("to", to))
	return nil
}

func (n *Noop) SendWelcome(_ context.Context, to, _, _ string) error {
	n.logger.Info("mail skipped, no api key", slog.String("kind", "welcome"), slog.String("to", to))
	return nil
}
