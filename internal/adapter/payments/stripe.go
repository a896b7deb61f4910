package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/chanikul/edenclinic/internal/domain/model"
)

// StripeGateway implements Gateway on the Stripe API.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        *slog.Logger
}

// NewStripeGateway creates a gateway bound to the given API key.
func NewStripeGateway(secretKey, webhookSecret string, logger *slog.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, webhookSecret: webhookSecret, logger: logger}
}

// NewStripeGatewayWithBackends is used by tests to point the client at a
// stub server.
func NewStripeGatewayWithBackends(secretKey, webhookSecret string, backends *stripe.Backends, logger *slog.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{api: api, webhookSecret: webhookSecret, logger: logger}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*model.PaymentSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(p.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"GB"}),
		},
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	params.AddMetadata("orderId", strconv.FormatInt(p.OrderID, 10))

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return sessionFromStripe(session), nil
}

func (g *StripeGateway) GetSession(ctx context.Context, sessionID string) (*model.PaymentSession, error) {
	params := &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}}
	params.AddExpand("payment_intent")
	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	return sessionFromStripe(session), nil
}

func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	verified := &Event{ID: event.ID, Type: string(event.Type)}
	if event.Type == "checkout.session.completed" {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("decode session payload: %w", err)
		}
		verified.Session = sessionFromStripe(&session)
	}
	return verified, nil
}

func (g *StripeGateway) ListActiveProducts(ctx context.Context) ([]model.CatalogProduct, error) {
	params := &stripe.ProductListParams{Active: stripe.Bool(true)}
	params.Context = ctx

	var products []model.CatalogProduct
	iter := g.api.Products.List(params)
	for iter.Next() {
		p := iter.Product()
		products = append(products, model.CatalogProduct{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Livemode:    p.Livemode,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (g *StripeGateway) LatestActivePrice(ctx context.Context, productID string) (*model.CatalogPrice, error) {
	params := &stripe.PriceListParams{
		Product: stripe.String(productID),
		Active:  stripe.Bool(true),
	}
	params.Context = ctx

	var latest *model.CatalogPrice
	iter := g.api.Prices.List(params)
	for iter.Next() {
		p := iter.Price()
		if latest == nil || p.Created > latest.CreatedAt {
			latest = &model.CatalogPrice{
				ID:         p.ID,
				UnitAmount: p.UnitAmount,
				Currency:   string(p.Currency),
				Active:     p.Active,
				CreatedAt:  p.Created,
			}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	if latest == nil {
		return nil, ErrNoActivePrice
	}
	return latest, nil
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
		Name:   stripe.String(name),
	}
	customer, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return customer.ID, nil
}

func (g *StripeGateway) ListCards(ctx context.Context, customerID string) ([]model.PaymentCard, error) {
	customerParams := &stripe.CustomerParams{Params: stripe.Params{Context: ctx}}
	customer, err := g.api.Customers.Get(customerID, customerParams)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	defaultPM := ""
	if customer.InvoiceSettings != nil && customer.InvoiceSettings.DefaultPaymentMethod != nil {
		defaultPM = customer.InvoiceSettings.DefaultPaymentMethod.ID
	}

	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	params.Context = ctx

	var cards []model.PaymentCard
	iter := g.api.PaymentMethods.List(params)
	for iter.Next() {
		pm := iter.PaymentMethod()
		if pm.Card == nil {
			continue
		}
		cards = append(cards, model.PaymentCard{
			ID:       pm.ID,
			Brand:    string(pm.Card.Brand),
			Last4:    pm.Card.Last4,
			ExpMonth: pm.Card.ExpMonth,
			ExpYear:  pm.Card.ExpYear,
			Default:  pm.ID == defaultPM,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	return cards, nil
}

func (g *StripeGateway) SetDefaultCard(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	if _, err := g.api.Customers.Update(customerID, params); err != nil {
		return fmt.Errorf("set default payment method: %w", err)
	}
	return nil
}

func sessionFromStripe(s *stripe.CheckoutSession) *model.PaymentSession {
	session := &model.PaymentSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
	}
	if s.Metadata != nil {
		session.OrderRef = s.Metadata["orderId"]
	}
	if s.PaymentIntent != nil {
		session.PaymentIntentID = s.PaymentIntent.ID
	}
	if details := s.CustomerDetails; details != nil {
		session.CustomerEmail = details.Email
		if details.Address != nil {
			session.ShippingAddress = &model.ShippingAddress{
				Name:     details.Name,
				Phone:    details.Phone,
				Line1:    details.Address.Line1,
				Line2:    details.Address.Line2,
				City:     details.Address.City,
				Postcode: details.Address.PostalCode,
				Country:  details.Address.Country,
			}
		}
	}
	return session
}
