package repository

import (
	"context"

	"github.com/chanikul/edenclinic/internal/domain/model"
)

// BloodTestRepository describes catalog persistence.
type BloodTestRepository interface {
	List(ctx context.Context, activeOnly bool) ([]model.BloodTest, error)
	GetBySlug(ctx context.Context, slug string) (*model.BloodTest, error)
	GetByID(ctx context.Context, id int64) (*model.BloodTest, error)
	// ApplyCatalog reconciles the table against the provider snapshot in a
	// single transaction: every row is deactivated, each entry is upserted
	// (matched by provider product id, new rows get a collision-retried
	// slug) and reactivated, and previously active rows absent from the
	// snapshot are archived with provider ids cleared.
	ApplyCatalog(ctx context.Context, entries []model.CatalogEntry) (*model.SyncReport, error)
}
