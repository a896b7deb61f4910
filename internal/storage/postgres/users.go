package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
)

const uniqueViolation = "23505"

type adminRepository struct {
	storage *Storage
}

type clientRepository struct {
	storage *Storage
}

const adminColumns = `id, email, name, password_hash, role, active, reset_token, reset_token_expiry, last_login_at, created_at, updated_at`

func scanAdmin(row pgx.Row) (*model.Admin, error) {
	var a model.Admin
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.Active,
		&a.ResetToken, &a.ResetTokenExpiry, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *adminRepository) Create(ctx context.Context, email, name, passwordHash string, role model.AdminRole) (*model.Admin, error) {
	const query = `INSERT INTO admins (email, name, password_hash, role)
                   VALUES ($1, $2, $3, $4)
                   RETURNING ` + adminColumns
	admin, err := scanAdmin(r.storage.pool.QueryRow(ctx, query, email, name, passwordHash, role))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return admin, nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	const query = `SELECT ` + adminColumns + ` FROM admins WHERE email=$1`
	return scanAdmin(r.storage.pool.QueryRow(ctx, query, email))
}

func (r *adminRepository) GetByID(ctx context.Context, id int64) (*model.Admin, error) {
	const query = `SELECT ` + adminColumns + ` FROM admins WHERE id=$1`
	return scanAdmin(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *adminRepository) List(ctx context.Context) ([]model.Admin, error) {
	const query = `SELECT ` + adminColumns + ` FROM admins ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Admin
	for rows.Next() {
		var a model.Admin
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.Active,
			&a.ResetToken, &a.ResetTokenExpiry, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *adminRepository) Update(ctx context.Context, id int64, name *string, role *model.AdminRole, active *bool) (*model.Admin, error) {
	const query = `UPDATE admins
                   SET name=COALESCE($2, name),
                       role=COALESCE($3, role),
                       active=COALESCE($4, active),
                       updated_at=NOW()
                   WHERE id=$1
                   RETURNING ` + adminColumns
	return scanAdmin(r.storage.pool.QueryRow(ctx, query, id, name, role, active))
}

func (r *adminRepository) SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	const query = `UPDATE admins SET reset_token=$2, reset_token_expiry=$3, updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, token, expiry)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *adminRepository) GetByResetToken(ctx context.Context, token string) (*model.Admin, error) {
	const query = `SELECT ` + adminColumns + ` FROM admins WHERE reset_token=$1 AND reset_token_expiry > NOW()`
	return scanAdmin(r.storage.pool.QueryRow(ctx, query, token))
}

func (r *adminRepository) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE admins
                   SET password_hash=$2, reset_token=NULL, reset_token_expiry=NULL, updated_at=NOW()
                   WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *adminRepository) TouchLastLogin(ctx context.Context, id int64) error {
	const query = `UPDATE admins SET last_login_at=NOW() WHERE id=$1`
	_, err := r.storage.pool.Exec(ctx, query, id)
	return err
}

func (r *adminRepository) Activate(ctx context.Context, id int64) error {
	const query = `UPDATE admins SET active=TRUE, updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

const clientColumns = `id, email, name, password_hash, date_of_birth, mobile, stripe_customer_id, active, reset_token, reset_token_expiry, last_login_at, created_at, updated_at`

func scanClient(row pgx.Row) (*model.Client, error) {
	var c model.Client
	err := row.Scan(&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.DateOfBirth, &c.Mobile,
		&c.StripeCustomerID, &c.Active, &c.ResetToken, &c.ResetTokenExpiry, &c.LastLoginAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *clientRepository) Create(ctx context.Context, email, name, passwordHash string, dateOfBirth time.Time, mobile string) (*model.Client, error) {
	const query = `INSERT INTO clients (email, name, password_hash, date_of_birth, mobile)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING ` + clientColumns
	client, err := scanClient(r.storage.pool.QueryRow(ctx, query, email, name, passwordHash, dateOfBirth, mobile))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return client, nil
}

func (r *clientRepository) GetByEmail(ctx context.Context, email string) (*model.Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients WHERE email=$1`
	return scanClient(r.storage.pool.QueryRow(ctx, query, email))
}

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*model.Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients WHERE id=$1`
	return scanClient(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *clientRepository) List(ctx context.Context) ([]model.Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.DateOfBirth, &c.Mobile,
			&c.StripeCustomerID, &c.Active, &c.ResetToken, &c.ResetTokenExpiry, &c.LastLoginAt,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *clientRepository) Update(ctx context.Context, id int64, name, mobile *string, active *bool) (*model.Client, error) {
	const query = `UPDATE clients
                   SET name=COALESCE($2, name),
                       mobile=COALESCE($3, mobile),
                       active=COALESCE($4, active),
                       updated_at=NOW()
                   WHERE id=$1
                   RETURNING ` + clientColumns
	return scanClient(r.storage.pool.QueryRow(ctx, query, id, name, mobile, active))
}

func (r *clientRepository) SetStripeCustomer(ctx context.Context, id int64, customerID string) error {
	const query = `UPDATE clients SET stripe_customer_id=$2, updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *clientRepository) SetResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	const query = `UPDATE clients SET reset_token=$2, reset_token_expiry=$3, updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, token, expiry)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *clientRepository) GetByResetToken(ctx context.Context, token string) (*model.Client, error) {
	const query = `SELECT ` + clientColumns + ` FROM clients WHERE reset_token=$1 AND reset_token_expiry > NOW()`
	return scanClient(r.storage.pool.QueryRow(ctx, query, token))
}

func (r *clientRepository) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE clients
                   SET password_hash=$2, reset_token=NULL, reset_token_expiry=NULL, updated_at=NOW()
                   WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *clientRepository) TouchLastLogin(ctx context.Context, id int64) error {
	const query = `UPDATE clients SET last_login_at=NOW() WHERE id=$1`
	_, err := r.storage.pool.Exec(ctx, query, id)
	return err
}
