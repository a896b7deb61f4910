package dto

// CheckoutRequest is the public order form payload.
type CheckoutRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth"`
	Mobile      string `json:"mobile"`
	TestSlug    string `json:"testSlug"`
	Notes       string `json:"notes"`
	Consent     bool   `json:"consent"`
}

// CreateAdminRequest provisions a back-office account.
type CreateAdminRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateAdminRequest patches a back-office account. Nil fields are left
// untouched.
type UpdateAdminRequest struct {
	Name   *string `json:"name"`
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

// CreateClientRequest provisions a patient account from the back office.
type CreateClientRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
	Mobile      string `json:"mobile"`
}

// UpdateClientRequest patches a patient account.
type UpdateClientRequest struct {
	Name   *string `json:"name"`
	Mobile *string `json:"mobile"`
	Active *bool   `json:"active"`
}

// UpdateAccountRequest is the patient's own account patch.
type UpdateAccountRequest struct {
	Name   *string `json:"name"`
	Mobile *string `json:"mobile"`
}

// UpdateOrderRequest changes an order's fulfilment status.
type UpdateOrderRequest struct {
	Status string `json:"status"`
}

// CreateResultRequest registers a processing lab result.
type CreateResultRequest struct {
	OrderID     int64  `json:"orderId"`
	BloodTestID int64  `json:"bloodTestId"`
	ClientID    *int64 `json:"clientId"`
}

// UpdateResultRequest releases a result to the patient.
type UpdateResultRequest struct {
	Status string `json:"status"`
}

// AddressRequest is the patient address form.
type AddressRequest struct {
	Type      string `json:"type"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

// DefaultPaymentMethodRequest marks a stored card as default.
type DefaultPaymentMethodRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
}
