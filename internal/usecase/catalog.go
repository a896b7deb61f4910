package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/chanikul/edenclinic/internal/adapter/payments"
	"github.com/chanikul/edenclinic/internal/config"
	"github.com/chanikul/edenclinic/internal/domain/model"
	"github.com/chanikul/edenclinic/internal/domain/repository"
)

// defaultDeniedNameParts marks provider products that are not sellable
// tests. The upstream catalog mixes invoices and subscription items in with
// real products, so sync filters by name substring. Brittle, and known to
// be: a mislabeled real product will be silently dropped here. Overridable
// via CATALOG_DENYLIST.
var defaultDeniedNameParts = []string{
	"invoice",
	"subscription",
	"donation",
	"consultation fee",
}

const placeholderDescription = "(created by stripe cli)"

// CatalogUseCase mirrors the provider's product catalog into blood_tests.
type CatalogUseCase struct {
	tests   repository.BloodTestRepository
	gateway payments.Gateway
	denied  []string
	logger  *slog.Logger
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(tests repository.BloodTestRepository, gateway payments.Gateway, cfg *config.Config, logger *slog.Logger) *CatalogUseCase {
	denied := cfg.CatalogDenyList
	if len(denied) == 0 {
		denied = defaultDeniedNameParts
	}
	return &CatalogUseCase{tests: tests, gateway: gateway, denied: denied, logger: logger}
}

func (u *CatalogUseCase) excludedProduct(p model.CatalogProduct) bool {
	name := strings.ToLower(p.Name)
	for _, part := range u.denied {
		if strings.Contains(name, part) {
			return true
		}
	}
	return strings.ToLower(strings.TrimSpace(p.Description)) == placeholderDescription
}

// List returns catalog rows for the storefront or back-office.
func (u *CatalogUseCase) List(ctx context.Context, activeOnly bool) ([]model.BloodTest, error) {
	return u.tests.List(ctx, activeOnly)
}

// GetBySlug returns one catalog row.
func (u *CatalogUseCase) GetBySlug(ctx context.Context, slug string) (*model.BloodTest, error) {
	return u.tests.GetBySlug(ctx, slug)
}

// Sync fetches the provider catalog, filters out non-test products, pairs
// each product with its latest active price and applies the snapshot in a
// single transaction. Any failure rolls the catalog back untouched.
func (u *CatalogUseCase) Sync(ctx context.Context) (*model.SyncReport, error) {
	products, err := u.gateway.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]model.CatalogEntry, 0, len(products))
	for _, p := range products {
		if !p.Livemode {
			u.logger.Debug("skipping test-mode product", slog.String("product_id", p.ID))
			continue
		}
		if u.excludedProduct(p) {
			u.logger.Info("skipping excluded product",
				slog.String("product_id", p.ID),
				slog.String("name", p.Name))
			continue
		}
		price, err := u.gateway.LatestActivePrice(ctx, p.ID)
		if err != nil {
			if errors.Is(err, payments.ErrNoActivePrice) {
				u.logger.Info("skipping product without price", slog.String("product_id", p.ID))
				continue
			}
			return nil, err
		}
		entries = append(entries, model.CatalogEntry{
			ProductID:   p.ID,
			PriceID:     price.ID,
			Name:        p.Name,
			Slug:        Slugify(p.Name),
			Description: p.Description,
			PricePence:  price.UnitAmount,
		})
	}

	report, err := u.tests.ApplyCatalog(ctx, entries)
	if err != nil {
		return nil, err
	}

	u.logger.Info("catalog synced",
		slog.Int("created", report.Created),
		slog.Int("updated", report.Updated),
		slog.Int("archived", report.Archived))
	return report, nil
}
