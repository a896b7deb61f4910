package model

// PaymentSessionStatus values mirror the provider's checkout session state.
const (
	SessionPaymentStatusPaid   = "paid"
	SessionPaymentStatusUnpaid = "unpaid"
	SessionStatusComplete      = "complete"
	SessionStatusExpired       = "expired"
	SessionStatusOpen          = "open"
)

// PaymentSession is the subset of a provider checkout session the
// application cares about.
type PaymentSession struct {
	ID              string
	URL             string
	Status          string
	PaymentStatus   string
	OrderRef        string
	PaymentIntentID string
	CustomerEmail   string
	ShippingAddress *ShippingAddress
}

// Paid reports whether the session has been settled.
func (s *PaymentSession) Paid() bool {
	return s.PaymentStatus == SessionPaymentStatusPaid
}

// CatalogProduct is an active live-mode product fetched from the provider.
type CatalogProduct struct {
	ID          string
	Name        string
	Description string
	Livemode    bool
}

// CatalogPrice is a product price as listed by the provider.
type CatalogPrice struct {
	ID         string
	UnitAmount int64
	Currency   string
	Active     bool
	CreatedAt  int64
}

// PaymentCard is a stored card on a provider customer.
type PaymentCard struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"expMonth"`
	ExpYear  int64  `json:"expYear"`
	Default  bool   `json:"default"`
}
