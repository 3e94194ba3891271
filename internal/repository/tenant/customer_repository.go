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

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `id, email, full_name, phone, is_active, password_hash,
	password_changed_at, last_login_at, created_at, updated_at`

func scanCustomer(row pgx.Row) (*tenantModels.Customer, error) {
	customer := &tenantModels.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.Email,
		&customer.FullName,
		&customer.Phone,
		&customer.IsActive,
		&customer.PasswordHash,
		&customer.PasswordChangedAt,
		&customer.LastLoginAt,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*tenantModels.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomer(r.pool.QueryRow(ctx, query, id))
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*tenantModels.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`
	return scanCustomer(r.pool.QueryRow(ctx, query, email))
}

func (r *CustomerRepository) Create(ctx context.Context, email, passwordHash, fullName, phone string) (*tenantModels.Customer, error) {
	query := `
		INSERT INTO customers (email, password_hash, full_name, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + customerColumns + `
	`
	customer, err := scanCustomer(r.pool.QueryRow(ctx, query, email, passwordHash, fullName, phone))
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (r *CustomerRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE customers SET last_login_at = $2 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to record customer login: %w", err)
	}
	return nil
}
