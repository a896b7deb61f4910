package payments

import (
	"context"
	"errors"

	"github.com/chanikul/edenclinic/internal/domain/model"
)

// ErrInvalidSignature indicates a webhook payload whose signature did not
// verify against the endpoint secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ErrNoActivePrice indicates a provider product without any active price.
var ErrNoActivePrice = errors.New("no active price for product")

// Event is a verified webhook notification. Session is populated for
// checkout.session.completed events and nil otherwise.
type Event struct {
	ID      string
	Type    string
	Session *model.PaymentSession
}

// CheckoutParams describes a hosted checkout session to create.
type CheckoutParams struct {
	OrderID       int64
	PriceID       string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// Gateway exposes the payment-provider operations the application needs.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*model.PaymentSession, error)
	GetSession(ctx context.Context, sessionID string) (*model.PaymentSession, error)
	VerifyWebhook(payload []byte, signature string) (*Event, error)
	ListActiveProducts(ctx context.Context) ([]model.CatalogProduct, error)
	LatestActivePrice(ctx context.Context, productID string) (*model.CatalogPrice, error)
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	ListCards(ctx context.Context, customerID string) ([]model.PaymentCard, error)
	SetDefaultCard(ctx context.Context, customerID, paymentMethodID string) error
}
