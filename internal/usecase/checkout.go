package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/chanikul/edenclinic/internal/adapter/payments"
	"github.com/chanikul/edenclinic/internal/config"
	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/domain/repository"
)

// CheckoutRequest is the public order form.
type CheckoutRequest struct {
	Name        string
	Email       string
	DateOfBirth string
	Mobile      string
	TestSlug    string
	Notes       string
	Consent     bool
	ClientID    *int64
}

// CheckoutUseCase creates orders and hands customers to the provider's
// hosted payment page.
type CheckoutUseCase struct {
	orders  repository.OrderRepository
	tests   repository.BloodTestRepository
	gateway payments.Gateway
	baseURL string
	logger  *slog.Logger
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(orders repository.OrderRepository, tests repository.BloodTestRepository, gateway payments.Gateway, cfg *config.Config, logger *slog.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		orders:  orders,
		tests:   tests,
		gateway: gateway,
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

// PlaceOrder validates the form, creates a PENDING order and a checkout
// session for it, and returns the order with the payment page URL.
func (u *CheckoutUseCase) PlaceOrder(ctx context.Context, req CheckoutRequest) (*model.Order, string, error) {
	fields := map[string]string{}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 2 {
		fields["name"] = "name must be at least 2 characters"
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !ValidEmail(req.Email) {
		fields["email"] = "invalid email address"
	}
	dob, ok := ParseDate(req.DateOfBirth)
	if !ok {
		fields["dateOfBirth"] = "date must be YYYY-MM-DD"
	}
	if !req.Consent {
		fields["consent"] = "consent is required"
	}

	var test *model.BloodTest
	if req.TestSlug == "" {
		fields["testSlug"] = "test is required"
	} else {
		var err error
		test, err = u.tests.GetBySlug(ctx, req.TestSlug)
		switch {
		case err == nil && !test.IsActive:
			fields["testSlug"] = "test is not available"
		case errors.Is(err, domainErrors.ErrNotFound):
			fields["testSlug"] = "unknown test"
		case err != nil:
			return nil, "", err
		}
	}

	if len(fields) > 0 {
		return nil, "", &domainErrors.ValidationError{Fields: fields}
	}
	if test.StripePriceID == nil || *test.StripePriceID == "" {
		return nil, "", payments.ErrNoActivePrice
	}

	order, err := u.orders.Create(ctx, repository.NewOrder{
		ClientID:      req.ClientID,
		PatientName:   req.Name,
		PatientEmail:  req.Email,
		PatientDOB:    dob,
		PatientMobile: strings.TrimSpace(req.Mobile),
		BloodTestID:   test.ID,
		TestName:      test.Name,
		Notes:         strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return nil, "", err
	}

	session, err := u.gateway.CreateCheckoutSession(ctx, payments.CheckoutParams{
		OrderID:       order.ID,
		PriceID:       *test.StripePriceID,
		CustomerEmail: req.Email,
		SuccessURL:    u.baseURL + "/order/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     u.baseURL + "/order/" + test.Slug,
	})
	if err != nil {
		return nil, "", err
	}

	if err := u.orders.AttachSession(ctx, order.ID, session.ID); err != nil {
		return nil, "", err
	}
	order.StripeSessionID = session.ID

	u.logger.Info("order created",
		slog.Int64("order_id", order.ID),
		slog.String("test", test.Slug),
		slog.String("session_id", session.ID))

	return order, session.URL, nil
}

// VerifyPayment reports the provider-side state of a checkout session so
// the success page can show payment status without waiting for webhooks.
func (u *CheckoutUseCase) VerifyPayment(ctx context.Context, sessionID string) (*model.PaymentSession, error) {
	if sessionID == "" {
		return nil, domainErrors.NewValidation("session_id", "session_id is required")
	}
	return u.gateway.GetSession(ctx, sessionID)
}
