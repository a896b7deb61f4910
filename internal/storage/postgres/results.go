package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
)

type testResultRepository struct {
	storage *Storage
}

const testResultColumns = `id, order_id, blood_test_id, client_id, status, result_key, created_at, updated_at`

func scanTestResult(row rowScanner) (*model.TestResult, error) {
	var tr model.TestResult
	err := row.Scan(&tr.ID, &tr.OrderID, &tr.BloodTestID, &tr.ClientID, &tr.Status,
		&tr.ResultKey, &tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &tr, nil
}

func (r *testResultRepository) Create(ctx context.Context, orderID, bloodTestID int64, clientID *int64) (*model.TestResult, error) {
	const query = `INSERT INTO test_results (order_id, blood_test_id, client_id, status)
                   VALUES ($1, $2, $3, $4)
                   RETURNING ` + testResultColumns
	return scanTestResult(r.storage.pool.QueryRow(ctx, query,
		orderID, bloodTestID, clientID, model.ResultStatusProcessing))
}

func (r *testResultRepository) GetByID(ctx context.Context, id int64) (*model.TestResult, error) {
	const query = `SELECT ` + testResultColumns + ` FROM test_results WHERE id=$1`
	return scanTestResult(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *testResultRepository) ListByClient(ctx context.Context, clientID int64) ([]model.TestResult, error) {
	const query = `SELECT ` + testResultColumns + `
                   FROM test_results
                   WHERE client_id=$1
                   ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.TestResult
	for rows.Next() {
		tr, err := scanTestResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *testResultRepository) AttachFile(ctx context.Context, id int64, key string) error {
	const query = `UPDATE test_results SET result_key=$2, updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// MarkReady flips a result to ready only once. The returned bool reports
// whether this call performed the transition, so notification emails fire
// a single time per result.
func (r *testResultRepository) MarkReady(ctx context.Context, id int64) (bool, error) {
	const query = `UPDATE test_results
                   SET status=$2, updated_at=NOW()
                   WHERE id=$1 AND status=$3 AND result_key IS NOT NULL`
	tag, err := r.storage.pool.Exec(ctx, query, id, model.ResultStatusReady, model.ResultStatusProcessing)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing.Status == model.ResultStatusReady {
		return false, nil
	}
	return false, domainErrors.ErrResultNotReady
}

func (r *testResultRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM test_results WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

type addressRepository struct {
	storage *Storage
}

const addressColumns = `id, client_id, type, line1, line2, city, postcode, country, is_default, created_at, updated_at`

func scanAddress(row rowScanner) (*model.Address, error) {
	var a model.Address
	err := row.Scan(&a.ID, &a.ClientID, &a.Type, &a.Line1, &a.Line2,
		&a.City, &a.Postcode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *addressRepository) Create(ctx context.Context, address *model.Address) (*model.Address, error) {
	const query = `INSERT INTO addresses (client_id, type, line1, line2, city, postcode, country, is_default)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                   RETURNING ` + addressColumns
	return scanAddress(r.storage.pool.QueryRow(ctx, query,
		address.ClientID, address.Type, address.Line1, address.Line2,
		address.City, address.Postcode, address.Country, address.IsDefault))
}

func (r *addressRepository) GetByID(ctx context.Context, id int64) (*model.Address, error) {
	const query = `SELECT ` + addressColumns + ` FROM addresses WHERE id=$1`
	return scanAddress(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *addressRepository) ListByClient(ctx context.Context, clientID int64) ([]model.Address, error) {
	const query = `SELECT ` + addressColumns + `
                   FROM addresses
                   WHERE client_id=$1
                   ORDER BY is_default DESC, created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []model.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *addressRepository) Update(ctx context.Context, address *model.Address) (*model.Address, error) {
	const query = `UPDATE addresses
                   SET type=$2, line1=$3, line2=$4, city=$5, postcode=$6,
                       country=$7, updated_at=NOW()
                   WHERE id=$1
                   RETURNING ` + addressColumns
	return scanAddress(r.storage.pool.QueryRow(ctx, query,
		address.ID, address.Type, address.Line1, address.Line2,
		address.City, address.Postcode, address.Country))
}

func (r *addressRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM addresses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// SetDefault makes one address the default for its type and clears the
// flag on the client's other addresses of that type in the same
// transaction.
func (r *addressRepository) SetDefault(ctx context.Context, clientID, addressID int64) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var addrType model.AddressType
		err := tx.QueryRow(ctx,
			`UPDATE addresses SET is_default=TRUE, updated_at=NOW()
             WHERE id=$1 AND client_id=$2
             RETURNING type`,
			addressID, clientID).Scan(&addrType)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE addresses SET is_default=FALSE, updated_at=NOW()
             WHERE client_id=$1 AND type=$2 AND id<>$3 AND is_default`,
			clientID, addrType, addressID)
		return err
	})
}
