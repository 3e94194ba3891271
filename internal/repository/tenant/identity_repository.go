// Package tenant holds the data-access layer for a tenant's private
// database. Implementations are constructed once per tenant connection and
// cached on the connection handle, never rebuilt per request.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	tenantModels "github.com/Yespecom/server-updated-sub001/internal/models/tenant"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// IdentityStore reads and maintains tenant admin users.
type IdentityStore interface {
	GetAdminByID(ctx context.Context, id uuid.UUID) (*tenantModels.AdminUser, error)
	GetAdminByEmail(ctx context.Context, email string) (*tenantModels.AdminUser, error)
	TouchAdminLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateAdminPassword(ctx context.Context, email, passwordHash string, changedAt time.Time) error
}

// CustomerStore reads and maintains storefront customers.
type CustomerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*tenantModels.Customer, error)
	GetByEmail(ctx context.Context, email string) (*tenantModels.Customer, error)
	Create(ctx context.Context, email, passwordHash, fullName, phone string) (*tenantModels.Customer, error)
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

const adminColumns = `id, email, role, permissions, is_active, has_store, store_name, store_logo,
	password_hash, password_changed_at, last_login_at, created_at, updated_at`

func scanAdmin(row pgx.Row) (*tenantModels.AdminUser, error) {
	user := &tenantModels.AdminUser{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Role,
		&user.Permissions,
		&user.IsActive,
		&user.HasStore,
		&user.StoreName,
		&user.StoreLogo,
		&user.PasswordHash,
		&user.PasswordChangedAt,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return user, nil
}

func (r *IdentityRepository) GetAdminByID(ctx context.Context, id uuid.UUID) (*tenantModels.AdminUser, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_users WHERE id = $1`
	return scanAdmin(r.pool.QueryRow(ctx, query, id))
}

func (r *IdentityRepository) GetAdminByEmail(ctx context.Context, email string) (*tenantModels.AdminUser, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_users WHERE email = $1`
	return scanAdmin(r.pool.QueryRow(ctx, query, email))
}

func (r *IdentityRepository) TouchAdminLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE admin_users SET last_login_at = $2 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to record admin login: %w", err)
	}
	return nil
}

func (r *IdentityRepository) UpdateAdminPassword(ctx context.Context, email, passwordHash string, changedAt time.Time) error {
	query := `
		UPDATE admin_users
		SET password_hash = $2, password_changed_at = $3, updated_at = NOW()
		WHERE email = $1
	`
	tag, err := r.pool.Exec(ctx, query, email, passwordHash, changedAt)
	if err != nil {
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
