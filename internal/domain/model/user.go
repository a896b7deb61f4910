package model

import "time"

// AdminRole distinguishes back-office permission tiers.
type AdminRole string

const (
	RoleAdmin      AdminRole = "ADMIN"
	RoleSuperAdmin AdminRole = "SUPER_ADMIN"
)

// Admin is a back-office user.
type Admin struct {
	ID               int64
	Email            string
	Name             string
	PasswordHash     string
	Role             AdminRole
	Active           bool
	ResetToken       *string
	ResetTokenExpiry *time.Time
	LastLoginAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Client is a patient account owning addresses, orders and results.
type Client struct {
	ID               int64
	Email            string
	Name             string
	PasswordHash     string
	DateOfBirth      time.Time
	Mobile           string
	StripeCustomerID *string
	Active           bool
	ResetToken       *string
	ResetTokenExpiry *time.Time
	LastLoginAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
