package model

import "time"

// BloodTest is a catalog entry mirroring one payment-provider product.
// Lifecycle is driven by catalog sync: rows are reactivated per provider
// product, orphaned rows are archived (provider ids cleared) not deleted.
type BloodTest struct {
	ID              int64
	Name            string
	Slug            string
	Description     string
	PricePence      int64
	StripeProductID *string
	StripePriceID   *string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CatalogEntry is the provider-side view of a sellable test, assembled by
// sync from a product and its latest active price.
type CatalogEntry struct {
	ProductID   string
	PriceID     string
	Name        string
	Slug        string
	Description string
	PricePence  int64
}

// SyncReport summarizes one catalog sync run.
type SyncReport struct {
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Archived int      `json:"archived"`
	Changes  []string `json:"changes"`
}
