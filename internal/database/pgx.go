package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/config"
	tenantRepo "github.com/Yespecom/server-updated-sub001/internal/repository/tenant"
)

// NewPlatformPool connects to the shared platform database holding the main
// account records.
func NewPlatformPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.PlatformDB.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse platform db config: %w", err)
	}

	poolConfig.MaxConns = cfg.PlatformDB.MaxConns
	poolConfig.MinConns = cfg.PlatformDB.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping platform db: %w", err)
	}

	return pool, nil
}

// PgxDialer dials tenant databases derived from the configured address
// template.
type PgxDialer struct {
	cfg *config.Config
	log *zap.Logger
}

func NewPgxDialer(cfg *config.Config, log *zap.Logger) *PgxDialer {
	return &PgxDialer{cfg: cfg, log: log}
}

func (d *PgxDialer) Dial(ctx context.Context, tenantID string) (Conn, error) {
	poolConfig, err := pgxpool.ParseConfig(d.cfg.TenantConnectionString(tenantID))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tenant db config: %w", err)
	}

	poolConfig.MaxConns = d.cfg.TenantDB.MaxConns
	poolConfig.MinConns = d.cfg.TenantDB.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant pool for %s: %w", tenantID, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping tenant db %s: %w", tenantID, err)
	}

	return newPgxConn(pool), nil
}

// pgxConn bundles a tenant pool with its repositories, built once per
// connection.
type pgxConn struct {
	pool       *pgxpool.Pool
	identities *tenantRepo.IdentityRepository
	customers  *tenantRepo.CustomerRepository
	products   *tenantRepo.ProductRepository
}

func newPgxConn(pool *pgxpool.Pool) *pgxConn {
	return &pgxConn{
		pool:       pool,
		identities: tenantRepo.NewIdentityRepository(pool),
		customers:  tenantRepo.NewCustomerRepository(pool),
		products:   tenantRepo.NewProductRepository(pool),
	}
}

func (c *pgxConn) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }
func (c *pgxConn) Close()                         { c.pool.Close() }

func (c *pgxConn) Identities() tenantRepo.IdentityStore { return c.identities }
func (c *pgxConn) Customers() tenantRepo.CustomerStore  { return c.customers }
func (c *pgxConn) Products() tenantRepo.ProductStore    { return c.products }
