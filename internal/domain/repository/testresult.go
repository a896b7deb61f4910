package repository

import (
	"context"

	"github.com/chanikul/edenclinic/internal/domain/model"
)

// TestResultRepository describes lab-result persistence.
type TestResultRepository interface {
	Create(ctx context.Context, orderID, bloodTestID int64, clientID *int64) (*model.TestResult, error)
	GetByID(ctx context.Context, id int64) (*model.TestResult, error)
	ListByClient(ctx context.Context, clientID int64) ([]model.TestResult, error)
	AttachFile(ctx context.Context, id int64, key string) error
	// MarkReady transitions processing->ready. The boolean reports whether
	// this call performed the transition.
	MarkReady(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// AddressRepository describes address-book persistence.
type AddressRepository interface {
	Create(ctx context.Context, a *model.Address) (*model.Address, error)
	GetByID(ctx context.Context, id int64) (*model.Address, error)
	ListByClient(ctx context.Context, clientID int64) ([]model.Address, error)
	Update(ctx context.Context, a *model.Address) (*model.Address, error)
	Delete(ctx context.Context, id int64) error
	// SetDefault marks the address default for its type, unsetting the
	// client's previous default of that type in the same transaction.
	SetDefault(ctx context.Context, clientID, addressID int64) error
}
