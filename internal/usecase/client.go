package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/chanikul/edenclinic/internal/adapter/mailer"
	"github.com/chanikul/edenclinic/internal/adapter/payments"
	"github.com/chanikul/edenclinic/internal/config"
	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/domain/repository"
	pkgAuth "github.com/chanikul/edenclinic/internal/pkg/auth"
)

// ClientUseCase manages patient accounts: back-office provisioning and
// the patient's own account surface.
type ClientUseCase struct {
	clients repository.ClientRepository
	gateway payments.Gateway
	hasher  pkgAuth.PasswordHasher
	mail    mailer.Mailer
	auditor auditor
	baseURL string
	logger  *slog.Logger
}

// NewClientUseCase constructs ClientUseCase.
func NewClientUseCase(clients repository.ClientRepository, audit repository.AuditLogRepository, gateway payments.Gateway, hasher pkgAuth.PasswordHasher, mail mailer.Mailer, cfg *config.Config, logger *slog.Logger) *ClientUseCase {
	return &ClientUseCase{
		clients: clients,
		gateway: gateway,
		hasher:  hasher,
		mail:    mail,
		auditor: auditor{audit: audit, logger: logger},
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

// List returns all patient accounts.
func (u *ClientUseCase) List(ctx context.Context) ([]model.Client, error) {
	return u.clients.List(ctx)
}

// Get returns one patient account.
func (u *ClientUseCase) Get(ctx context.Context, id int64) (*model.Client, error) {
	return u.clients.GetByID(ctx, id)
}

// Create provisions a patient account from the back office: a provider
// customer is created for future payments and the patient receives a
// set-password email. The row starts with an unguessable password.
func (u *ClientUseCase) Create(ctx context.Context, actor *model.Admin, email, name, dateOfBirth, mobile string) (*model.Client, error) {
	fields := map[string]string{}
	email = strings.TrimSpace(strings.ToLower(email))
	if !ValidEmail(email) {
		fields["email"] = "invalid email address"
	}
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		fields["name"] = "name must be at least 2 characters"
	}
	dob, ok := ParseDate(dateOfBirth)
	if !ok {
		fields["dateOfBirth"] = "date must be YYYY-MM-DD"
	}
	if len(fields) > 0 {
		return nil, &domainErrors.ValidationError{Fields: fields}
	}

	hash, err := u.hasher.Hash(randomToken())
	if err != nil {
		return nil, err
	}
	client, err := u.clients.Create(ctx, email, name, hash, dob, strings.TrimSpace(mobile))
	if err != nil {
		return nil, err
	}

	customerID, err := u.gateway.CreateCustomer(ctx, email, name)
	if err != nil {
		u.logger.Error("provision payment customer", slog.Any("error", err))
	} else if err := u.clients.SetStripeCustomer(ctx, client.ID, customerID); err != nil {
		u.logger.Error("store payment customer id", slog.Any("error", err))
	} else {
		client.StripeCustomerID = &customerID
	}

	token := randomToken()
	if err := u.clients.SetResetToken(ctx, client.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		u.logger.Error("store set-password token", slog.Any("error", err))
	} else {
		link := u.baseURL + "/reset-password?role=patient&token=" + token
		if err := u.mail.SendWelcome(ctx, client.Email, client.Name, link); err != nil {
			u.logger.Error("welcome email failed", slog.Any("error", err))
		}
	}

	u.auditor.record(ctx, actor.ID, "client.created", "client", itoa(client.ID), map[string]any{
		"email": client.Email,
	})
	return client, nil
}

// Update patches a patient account from the back office.
func (u *ClientUseCase) Update(ctx context.Context, actor *model.Admin, id int64, name, mobile *string, active *bool) (*model.Client, error) {
	client, err := u.clients.Update(ctx, id, name, mobile, active)
	if err != nil {
		return nil, err
	}
	u.auditor.record(ctx, actor.ID, "client.updated", "client", itoa(id), map[string]any{
		"name":   name,
		"mobile": mobile,
		"active": active,
	})
	return client, nil
}

// UpdateOwn lets a patient change their own name and mobile.
func (u *ClientUseCase) UpdateOwn(ctx context.Context, clientID int64, name, mobile *string) (*model.Client, error) {
	if name != nil && len(strings.TrimSpace(*name)) < 2 {
		return nil, domainErrors.NewValidation("name", "name must be at least 2 characters")
	}
	return u.clients.Update(ctx, clientID, name, mobile, nil)
}

// PaymentMethods lists the cards stored on the patient's provider
// customer. A patient without one simply has no cards yet.
func (u *ClientUseCase) PaymentMethods(ctx context.Context, client *model.Client) ([]model.PaymentCard, error) {
	if client.StripeCustomerID == nil || *client.StripeCustomerID == "" {
		return []model.PaymentCard{}, nil
	}
	return u.gateway.ListCards(ctx, *client.StripeCustomerID)
}

// SetDefaultPaymentMethod marks one stored card as the default.
func (u *ClientUseCase) SetDefaultPaymentMethod(ctx context.Context, client *model.Client, paymentMethodID string) error {
	if paymentMethodID == "" {
		return domainErrors.NewValidation("paymentMethodId", "paymentMethodId is required")
	}
	if client.StripeCustomerID == nil || *client.StripeCustomerID == "" {
		return domainErrors.ErrNotFound
	}
	return u.gateway.SetDefaultCard(ctx, *client.StripeCustomerID, paymentMethodID)
}
