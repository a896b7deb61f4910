package model

import "time"

// AddressType separates shipping from billing addresses.
type AddressType string

const (
	AddressTypeShipping AddressType = "SHIPPING"
	AddressTypeBilling  AddressType = "BILLING"
)

// Address belongs to a client. At most one default per type per client;
// the storage layer unsets the previous default inside the same
// transaction that sets a new one.
type Address struct {
	ID        int64
	ClientID  int64
	Type      AddressType
	Line1     string
	Line2     string
	City      string
	Postcode  string
	Country   string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
