package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
)

type bloodTestRepository struct {
	storage *Storage
}

const bloodTestColumns = `id, name, slug, description, price_pence, stripe_product_id, stripe_price_id, is_active, created_at, updated_at`

// slugAttempts bounds the collision-retry loop for generated slugs.
const slugAttempts = 10

func scanBloodTest(row rowScanner) (*model.BloodTest, error) {
	var bt model.BloodTest
	err := row.Scan(&bt.ID, &bt.Name, &bt.Slug, &bt.Description, &bt.PricePence,
		&bt.StripeProductID, &bt.StripePriceID, &bt.IsActive, &bt.CreatedAt, &bt.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &bt, nil
}

func (r *bloodTestRepository) List(ctx context.Context, activeOnly bool) ([]model.BloodTest, error) {
	const query = `SELECT ` + bloodTestColumns + `
                   FROM blood_tests
                   WHERE (NOT $1::bool) OR is_active
                   ORDER BY name`
	rows, err := r.storage.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.BloodTest
	for rows.Next() {
		bt, err := scanBloodTest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *bt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *bloodTestRepository) GetBySlug(ctx context.Context, slug string) (*model.BloodTest, error) {
	const query = `SELECT ` + bloodTestColumns + ` FROM blood_tests WHERE slug=$1`
	return scanBloodTest(r.storage.pool.QueryRow(ctx, query, slug))
}

func (r *bloodTestRepository) GetByID(ctx context.Context, id int64) (*model.BloodTest, error) {
	const query = `SELECT ` + bloodTestColumns + ` FROM blood_tests WHERE id=$1`
	return scanBloodTest(r.storage.pool.QueryRow(ctx, query, id))
}

// ApplyCatalog reconciles the table against the provider snapshot. The
// whole run shares one transaction so a mid-sync failure rolls back to the
// pre-sync catalog.
func (r *bloodTestRepository) ApplyCatalog(ctx context.Context, entries []model.CatalogEntry) (*model.SyncReport, error) {
	report := &model.SyncReport{Changes: []string{}}

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id, slug, stripe_product_id, is_active FROM blood_tests FOR UPDATE`)
		if err != nil {
			return err
		}

		type existing struct {
			id        int64
			slug      string
			wasActive bool
		}
		byProduct := make(map[string]existing)
		for rows.Next() {
			var (
				e         existing
				productID *string
			)
			if err := rows.Scan(&e.id, &e.slug, &productID, &e.wasActive); err != nil {
				rows.Close()
				return err
			}
			if productID != nil {
				byProduct[*productID] = e
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE blood_tests SET is_active=FALSE, updated_at=NOW() WHERE is_active`); err != nil {
			return err
		}

		seen := make(map[string]bool, len(entries))
		for _, entry := range entries {
			seen[entry.ProductID] = true

			if row, ok := byProduct[entry.ProductID]; ok {
				const update = `UPDATE blood_tests
                                SET name=$2, description=$3, price_pence=$4, stripe_price_id=$5,
                                    is_active=TRUE, updated_at=NOW()
                                WHERE id=$1`
				if _, err := tx.Exec(ctx, update, row.id, entry.Name, entry.Description, entry.PricePence, entry.PriceID); err != nil {
					return err
				}
				report.Updated++
				report.Changes = append(report.Changes, "updated "+row.slug)
				continue
			}

			slug, err := insertWithSlugRetry(ctx, tx, entry)
			if err != nil {
				return err
			}
			report.Created++
			report.Changes = append(report.Changes, "created "+slug)
		}

		for productID, row := range byProduct {
			if seen[productID] || !row.wasActive {
				continue
			}
			const archive = `UPDATE blood_tests
                             SET stripe_product_id=NULL, stripe_price_id=NULL, updated_at=NOW()
                             WHERE id=$1`
			if _, err := tx.Exec(ctx, archive, row.id); err != nil {
				return err
			}
			report.Archived++
			report.Changes = append(report.Changes, "archived "+row.slug)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func insertWithSlugRetry(ctx context.Context, tx pgx.Tx, entry model.CatalogEntry) (string, error) {
	const insert = `INSERT INTO blood_tests (name, slug, description, price_pence, stripe_product_id, stripe_price_id, is_active)
                    VALUES ($1, $2, $3, $4, $5, $6, TRUE)
                    ON CONFLICT (slug) DO NOTHING
                    RETURNING slug`
	for attempt := 0; attempt < slugAttempts; attempt++ {
		slug := entry.Slug
		if attempt > 0 {
			slug = fmt.Sprintf("%s-%d", entry.Slug, attempt+1)
		}
		var inserted string
		err := tx.QueryRow(ctx, insert, entry.Name, slug, entry.Description, entry.PricePence, entry.ProductID, entry.PriceID).Scan(&inserted)
		if err == nil {
			return inserted, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", err
		}
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", entry.Slug, slugAttempts)
}
