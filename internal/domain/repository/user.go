package repository

import (
	"context"
	"time"

	"github.com/chanikul/edenclinic/internal/domain/model"
)

// AdminRepository describes persistence operations for back-office users.
type AdminRepository interface {
	Create(ctx context.Context, email, name, passwordHash string, role model.AdminRole) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	GetByID(ctx context.Context, id int64) (*model.Admin, error)
	List(ctx context.Context) ([]model.Admin, error)
	Update(ctx context.Context, id int64, name *string, role *model.AdminRole, active *bool) (*model.Admin, error)
	SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error
	GetByResetToken(ctx context.Context, token string) (*model.Admin, error)
	ResetPassword(ctx context.Context, id int64, passwordHash string) error
	TouchLastLogin(ctx context.Context, id int64) error
	// Activate reactivates an existing admin (or leaves an active one
	// untouched). Used by the identity-provider sign-in shim.
	Activate(ctx context.Context, id int64) error
}

// ClientRepository describes persistence operations for patient accounts.
type ClientRepository interface {
	Create(ctx context.Context, email, name, passwordHash string, dateOfBirth time.Time, mobile string) (*model.Client, error)
	GetByEmail(ctx context.Context, email string) (*model.Client, error)
	GetByID(ctx context.Context, id int64) (*model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
	Update(ctx context.Context, id int64, name, mobile *string, active *bool) (*model.Client, error)
	SetStripeCustomer(ctx context.Context, id int64, customerID string) error
	SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error
	GetByResetToken(ctx context.Context, token string) (*model.Client, error)
	ResetPassword(ctx context.Context, id int64, passwordHash string) error
	TouchLastLogin(ctx context.Context, id int64) error
}
