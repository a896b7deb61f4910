package dto

import (
	"encoding/json"
	"time"

	"github.com/chanikul/edenclinic/internal/domain/model"
)

// AdminResponse is the back-office account view.
type AdminResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FromAdmin converts a domain admin.
func FromAdmin(a *model.Admin) AdminResponse {
	return AdminResponse{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        string(a.Role),
		Active:      a.Active,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
	}
}

// FromAdmins converts a slice of domain admins.
func FromAdmins(admins []model.Admin) []AdminResponse {
	out := make([]AdminResponse, 0, len(admins))
	for i := range admins {
		out = append(out, FromAdmin(&admins[i]))
	}
	return out
}

// ClientResponse is the patient account view.
type ClientResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	DateOfBirth string     `json:"dateOfBirth"`
	Mobile      string     `json:"mobile,omitempty"`
	Active      bool       `json:"active"`
	HasCustomer bool       `json:"hasPaymentCustomer"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FromClient converts a domain client.
func FromClient(c *model.Client) ClientResponse {
	return ClientResponse{
		ID:          c.ID,
		Email:       c.Email,
		Name:        c.Name,
		DateOfBirth: c.DateOfBirth.Format("2006-01-02"),
		Mobile:      c.Mobile,
		Active:      c.Active,
		HasCustomer: c.StripeCustomerID != nil && *c.StripeCustomerID != "",
		LastLoginAt: c.LastLoginAt,
		CreatedAt:   c.CreatedAt,
	}
}

// FromClients converts a slice of domain clients.
func FromClients(clients []model.Client) []ClientResponse {
	out := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, FromClient(&clients[i]))
	}
	return out
}

// BloodTestResponse is the storefront catalog view.
type BloodTestResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	PricePence  int64  `json:"pricePence"`
	IsActive    bool   `json:"isActive"`
}

// FromBloodTest converts a domain catalog row.
func FromBloodTest(t *model.BloodTest) BloodTestResponse {
	return BloodTestResponse{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		PricePence:  t.PricePence,
		IsActive:    t.IsActive,
	}
}

// FromBloodTests converts a slice of catalog rows.
func FromBloodTests(tests []model.BloodTest) []BloodTestResponse {
	out := make([]BloodTestResponse, 0, len(tests))
	for i := range tests {
		out = append(out, FromBloodTest(&tests[i]))
	}
	return out
}

// OrderResponse is the order view shared by back office and patients.
type OrderResponse struct {
	ID              int64                  `json:"id"`
	ClientID        *int64                 `json:"clientId,omitempty"`
	PatientName     string                 `json:"patientName"`
	PatientEmail    string                 `json:"patientEmail"`
	TestName        string                 `json:"testName"`
	Status          string                 `json:"status"`
	ShippingAddress *model.ShippingAddress `json:"shippingAddress,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// FromOrder converts a domain order.
func FromOrder(o *model.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		ClientID:        o.ClientID,
		PatientName:     o.PatientName,
		PatientEmail:    o.PatientEmail,
		TestName:        o.TestName,
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// FromOrders converts a slice of domain orders.
func FromOrders(orders []model.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, FromOrder(&orders[i]))
	}
	return out
}

// ResultResponse is the lab result view.
type ResultResponse struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"orderId"`
	BloodTestID int64     `json:"bloodTestId"`
	ClientID    *int64    `json:"clientId,omitempty"`
	Status      string    `json:"status"`
	HasFile     bool      `json:"hasFile"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromResult converts a domain result.
func FromResult(r *model.TestResult) ResultResponse {
	return ResultResponse{
		ID:          r.ID,
		OrderID:     r.OrderID,
		BloodTestID: r.BloodTestID,
		ClientID:    r.ClientID,
		Status:      string(r.Status),
		HasFile:     r.ResultKey != nil,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// FromResults converts a slice of domain results.
func FromResults(results []model.TestResult) []ResultResponse {
	out := make([]ResultResponse, 0, len(results))
	for i := range results {
		out = append(out, FromResult(&results[i]))
	}
	return out
}

// AddressResponse is the patient address view.
type AddressResponse struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

// FromAddress converts a domain address.
func FromAddress(a *model.Address) AddressResponse {
	return AddressResponse{
		ID:        a.ID,
		Type:      string(a.Type),
		Line1:     a.Line1,
		Line2:     a.Line2,
		City:      a.City,
		Postcode:  a.Postcode,
		Country:   a.Country,
		IsDefault: a.IsDefault,
	}
}

// FromAddresses converts a slice of domain addresses.
func FromAddresses(addresses []model.Address) []AddressResponse {
	out := make([]AddressResponse, 0, len(addresses))
	for i := range addresses {
		out = append(out, FromAddress(&addresses[i]))
	}
	return out
}

// AuditLogResponse is one back-office audit entry.
type AuditLogResponse struct {
	ID         int64           `json:"id"`
	AdminID    int64           `json:"adminId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// FromAuditLogs converts a slice of audit entries.
func FromAuditLogs(entries []model.AuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditLogResponse{
			ID:         e.ID,
			AdminID:    e.AdminID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}

// VerifyPaymentResponse reports provider-side checkout state.
type VerifyPaymentResponse struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	OrderID       string `json:"orderId,omitempty"`
}
