package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const defaultHost = "https://api.sendgrid.com"

// SendGridMailer sends transactional email through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey string
	host   string
	from   *mail.Email
	logger *slog.Logger
}

func NewSendGrid(apiKey, fromEmail string, logger *slog.Logger) *SendGridMailer {
	return &SendGridMailer{
		apiKey: apiKey,
		host:   defaultHost,
		from:   mail.NewEmail("Eden Clinic", fromEmail),
		logger: logger,
	}
}

// NewSendGridWithHost is used by tests to point the client at a stub server.
func NewSendGridWithHost(apiKey, fromEmail, host string, logger *slog.Logger) *SendGridMailer {
	m := NewSendGrid(apiKey, fromEmail, logger)
	m.host = host
	return m
}

func (m *SendGridMailer) SendOrderConfirmation(ctx context.Context, to string, email OrderEmail) error {
	body, err := renderTemplate("order_confirmation", email)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Order confirmed: %s", email.TestName)
	return m.send(ctx, to, subject, body)
}

func (m *SendGridMailer) SendOrderNotice(ctx context.Context, to string, email OrderEmail) error {
	body, err := renderTemplate("order_notice", email)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New order #%d: %s", email.OrderID, email.TestName)
	return m.send(ctx, to, subject, body)
}

func (m *SendGridMailer) SendResultReady(ctx context.Context, to, patientName, testName string) error {
	body, err := renderTemplate("result_ready", struct{ Name, TestName string }{patientName, testName})
	if err != nil {
		return err
	}
	return m.send(ctx, to, "Your results are ready", body)
}

func (m *SendGridMailer) SendPasswordReset(ctx context.Context, to, name, link string) error {
	body, err := renderTemplate("password_reset", struct{ Name, Link string }{name, link})
	if err != nil {
		return err
	}
	return m.send(ctx, to, "Reset your password", body)
}

func (m *SendGridMailer) SendWelcome(ctx context.Context, to, name, link string) error {
	body, err := renderTemplate("welcome", struct{ Name, Link string }{name, link})
	if err != nil {
		return err
	}
	return m.send(ctx, to, "Welcome to Eden Clinic", body)
}

func (m *SendGridMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), "", htmlBody)

	request := sendgrid.GetRequest(m.apiKey, "/v3/mail/send", m.host)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	if response.StatusCode >= 400 {
		m.logger.Error("mail rejected",
			slog.Int("status", response.StatusCode),
			slog.String("body", response.Body))
		return fmt.Errorf("send mail: status %d", response.StatusCode)
	}
	return nil
}
