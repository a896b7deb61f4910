package model

import "time"

// OrderStatus describes the payment/fulfilment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusDispatched OrderStatus = "DISPATCHED"
	OrderStatusReady      OrderStatus = "READY"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// transitions is the allow-list of forward status moves. READY and
// CANCELLED are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusDispatched, OrderStatusReady, OrderStatusCancelled},
	OrderStatusDispatched: {OrderStatusReady, OrderStatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusDispatched, OrderStatusReady, OrderStatusCancelled:
		return true
	}
	return false
}

// ShippingAddress is the address captured from the payment provider's
// checkout session, stored on the order as JSON.
type ShippingAddress struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

// Order is one patient's purchase of a single test kit.
type Order struct {
	ID              int64
	ClientID        *int64
	PatientName     string
	PatientEmail    string
	PatientDOB      time.Time
	PatientMobile   string
	BloodTestID     *int64
	TestName        string
	Status          OrderStatus
	StripeSessionID string
	PaymentIntentID string
	ShippingAddress *ShippingAddress
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
