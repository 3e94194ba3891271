package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Yespecom/server-updated-sub001/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// AccountStore is the platform-side view of tenant owner accounts.
type AccountStore interface {
	GetActiveByEmail(ctx context.Context, email string) (*models.MainAccount, error)
	// GetByStoreID matches the store identifier exactly as stored.
	GetByStoreID(ctx context.Context, storeID string) (*models.MainAccount, error)
	// GetByStoreIDFold matches the store identifier ignoring case, for
	// legacy records whose identifiers were not stored uppercase.
	GetByStoreIDFold(ctx context.Context, storeID string) (*models.MainAccount, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error
}

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, email, tenant_id, store_id, is_active, password_hash, password_changed_at, created_at, updated_at`

func (r *AccountRepository) scanAccount(row pgx.Row) (*models.MainAccount, error) {
	account := &models.MainAccount{}
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.TenantID,
		&account.StoreID,
		&account.IsActive,
		&account.PasswordHash,
		&account.PasswordChangedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) GetActiveByEmail(ctx context.Context, email string) (*models.MainAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM main_accounts
		WHERE email = $1 AND is_active = true
	`
	return r.scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *AccountRepository) GetByStoreID(ctx context.Context, storeID string) (*models.MainAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM main_accounts
		WHERE store_id = $1
	`
	return r.scanAccount(r.pool.QueryRow(ctx, query, storeID))
}

func (r *AccountRepository) GetByStoreIDFold(ctx context.Context, storeID string) (*models.MainAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM main_accounts
		WHERE UPPER(store_id) = UPPER($1)
	`
	return r.scanAccount(r.pool.QueryRow(ctx, query, storeID))
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	query := `
		UPDATE main_accounts
		SET password_hash = $2, password_changed_at = $3, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash, changedAt)
	if err != nil {
		return fmt.Errorf("failed to update account password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
