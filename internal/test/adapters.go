package test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/chanikul/edenclinic/internal/adapter/mailer"
	"github.com/chanikul/edenclinic/internal/adapter/payments"
	"github.com/chanikul/edenclinic/internal/domain/model"
)

// GatewayStub simulates the payment provider via function overrides.
type GatewayStub struct {
	CreateCheckoutFn func(context.Context, payments.CheckoutParams) (*model.PaymentSession, error)
	GetSessionFn     func(context.Context, string) (*model.PaymentSession, error)
	VerifyWebhookFn  func([]byte, string) (*payments.Event, error)
	ListProductsFn   func(context.Context) ([]model.CatalogProduct, error)
	LatestPriceFn    func(context.Context, string) (*model.CatalogPrice, error)
	CreateCustomerFn func(context.Context, string, string) (string, error)
	ListCardsFn      func(context.Context, string) ([]model.PaymentCard, error)
	SetDefaultCardFn func(context.Context, string, string) error
	CreatedCheckouts []payments.CheckoutParams
	CreatedCustomers []string
	DefaultCardCalls []string
}

// CreateCheckoutSession records params and returns a canned open session.
func (g *GatewayStub) CreateCheckoutSession(ctx context.Context, p payments.CheckoutParams) (*model.PaymentSession, error) {
	g.CreatedCheckouts = append(g.CreatedCheckouts, p)
	if g.CreateCheckoutFn != nil {
		return g.CreateCheckoutFn(ctx, p)
	}
	return &model.PaymentSession{
		ID:            fmt.Sprintf("cs_test_%d", p.OrderID),
		URL:           "https://checkout.example.com/pay",
		Status:        model.SessionStatusOpen,
		PaymentStatus: model.SessionPaymentStatusUnpaid,
	}, nil
}

// GetSession delegates to the override or reports an unpaid session.
func (g *GatewayStub) GetSession(ctx context.Context, sessionID string) (*model.PaymentSession, error) {
	if g.GetSessionFn != nil {
		return g.GetSessionFn(ctx, sessionID)
	}
	return &model.PaymentSession{ID: sessionID, Status: model.SessionStatusOpen, PaymentStatus: model.SessionPaymentStatusUnpaid}, nil
}

// VerifyWebhook delegates to the override or rejects the signature.
func (g *GatewayStub) VerifyWebhook(payload []byte, signature string) (*payments.Event, error) {
	if g.VerifyWebhookFn != nil {
		return g.VerifyWebhookFn(payload, signature)
	}
	return nil, payments.ErrInvalidSignature
}

// ListActiveProducts delegates to the override or returns nothing.
func (g *GatewayStub) ListActiveProducts(ctx context.Context) ([]model.CatalogProduct, error) {
	if g.ListProductsFn != nil {
		return g.ListProductsFn(ctx)
	}
	return nil, nil
}

// LatestActivePrice delegates to the override or reports no price.
func (g *GatewayStub) LatestActivePrice(ctx context.Context, productID string) (*model.CatalogPrice, error) {
	if g.LatestPriceFn != nil {
		return g.LatestPriceFn(ctx, productID)
	}
	return nil, payments.ErrNoActivePrice
}

// CreateCustomer records the email and returns a canned customer id.
func (g *GatewayStub) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	g.CreatedCustomers = append(g.CreatedCustomers, email)
	if g.CreateCustomerFn != nil {
		return g.CreateCustomerFn(ctx, email, name)
	}
	return "cus_test", nil
}

// ListCards delegates to the override or returns nothing.
func (g *GatewayStub) ListCards(ctx context.Context, customerID string) ([]model.PaymentCard, error) {
	if g.ListCardsFn != nil {
		return g.ListCardsFn(ctx, customerID)
	}
	return nil, nil
}

// SetDefaultCard records the call.
func (g *GatewayStub) SetDefaultCard(ctx context.Context, customerID, paymentMethodID string) error {
	g.DefaultCardCalls = append(g.DefaultCardCalls, customerID+":"+paymentMethodID)
	if g.SetDefaultCardFn != nil {
		return g.SetDefaultCardFn(ctx, customerID, paymentMethodID)
	}
	return nil
}

// SentMail is one message captured by MailerRecorder.
type SentMail struct {
	Kind string
	To   string
	Link string
}

// MailerRecorder captures outgoing mail for assertions.
type MailerRecorder struct {
	mu   sync.Mutex
	Sent []SentMail
	Err  error
}

func (m *MailerRecorder) record(kind, to, link string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMail{Kind: kind, To: to, Link: link})
	return nil
}

// SendOrderConfirmation records the message.
func (m *MailerRecorder) SendOrderConfirmation(ctx context.Context, to string, email mailer.OrderEmail) error {
	return m.record("order_confirmation", to, "")
}

// SendOrderNotice records the message.
func (m *MailerRecorder) SendOrderNotice(ctx context.Context, to string, email mailer.OrderEmail) error {
	return m.record("order_notice", to, "")
}

// SendResultReady records the message.
func (m *MailerRecorder) SendResultReady(ctx context.Context, to, patientName, testName string) error {
	return m.record("result_ready", to, "")
}

// SendPasswordReset records the message and its link.
func (m *MailerRecorder) SendPasswordReset(ctx context.Context, to, name, link string) error {
	return m.record("password_reset", to, link)
}

// SendWelcome records the message and its link.
func (m *MailerRecorder) SendWelcome(ctx context.Context, to, name, link string) error {
	return m.record("welcome", to, link)
}

// Count returns how many messages of the kind were sent.
func (m *MailerRecorder) Count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, sent := range m.Sent {
		if sent.Kind == kind {
			n++
		}
	}
	return n
}

// StoreStub is an in-memory object store.
type StoreStub struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Err     error
	Removed []string
}

// NewStoreStub constructs the stub with an initialized map.
func NewStoreStub() *StoreStub {
	return &StoreStub{Objects: make(map[string][]byte)}
}

// Upload stores the object body under key.
func (s *StoreStub) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if s.Err != nil {
		return s.Err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Objects == nil {
		s.Objects = make(map[string][]byte)
	}
	s.Objects[key] = body
	return nil
}

// PresignedURL returns a deterministic URL for the key.
func (s *StoreStub) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return "https://storage.example.com/" + key, nil
}

// Remove deletes the object and records the key.
func (s *StoreStub) Remove(ctx context.Context, key string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	s.Removed = append(s.Removed, key)
	return nil
}
