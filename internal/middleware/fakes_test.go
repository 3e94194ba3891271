package middleware

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Yespecom/server-updated-sub001/internal/cache"
	"github.com/Yespecom/server-updated-sub001/internal/database"
	"github.com/Yespecom/server-updated-sub001/internal/models"
	tenantModels "github.com/Yespecom/server-updated-sub001/internal/models/tenant"
	"github.com/Yespecom/server-updated-sub001/internal/repository"
	tenantRepo "github.com/Yespecom/server-updated-sub001/internal/repository/tenant"
)

type fakeAccountStore struct {
	mu       sync.Mutex
	accounts []*models.MainAccount
}

func (f *fakeAccountStore) GetActiveByEmail(ctx context.Context, email string) (*models.MainAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email && a.IsActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountStore) GetByStoreID(ctx context.Context, storeID string) (*models.MainAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.StoreID == storeID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountStore) GetByStoreIDFold(ctx context.Context, storeID string) (*models.MainAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if strings.EqualFold(a.StoreID, storeID) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.ID == id {
			a.PasswordHash = passwordHash
			at := changedAt
			a.PasswordChangedAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeAccountStore) remove(storeID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.accounts[:0]
	for _, a := range f.accounts {
		if a.StoreID != storeID {
			kept = append(kept, a)
		}
	}
	f.accounts = kept
}

// fakeTenantStores backs one tenant database, implementing the identity,
// customer, and product store interfaces at once.
type fakeTenantStores struct {
	mu              sync.Mutex
	admins          []*tenantModels.AdminUser
	customers       []*tenantModels.Customer
	products        []tenantModels.Product
	adminTouches    int
	customerTouches int
	touchErr        error
}

func (f *fakeTenantStores) GetAdminByID(ctx context.Context, id uuid.UUID) (*tenantModels.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.admins {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, tenantRepo.ErrNotFound
}

func (f *fakeTenantStores) GetAdminByEmail(ctx context.Context, email string) (*tenantModels.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.admins {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, tenantRepo.ErrNotFound
}

func (f *fakeTenantStores) TouchAdminLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.touchErr != nil {
		return f.touchErr
	}
	f.adminTouches++
	return nil
}

func (f *fakeTenantStores) UpdateAdminPassword(ctx context.Context, email, passwordHash string, changedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.admins {
		if u.Email == email {
			u.PasswordHash = passwordHash
			at := changedAt
			u.PasswordChangedAt = &at
			return nil
		}
	}
	return tenantRepo.ErrNotFound
}

func (f *fakeTenantStores) GetByID(ctx context.Context, id uuid.UUID) (*tenantModels.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cu := range f.customers {
		if cu.ID == id {
			cp := *cu
			return &cp, nil
		}
	}
	return nil, tenantRepo.ErrNotFound
}

func (f *fakeTenantStores) GetByEmail(ctx context.Context, email string) (*tenantModels.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cu := range f.customers {
		if cu.Email == email {
			cp := *cu
			return &cp, nil
		}
	}
	return nil, tenantRepo.ErrNotFound
}

func (f *fakeTenantStores) Create(ctx context.Context, email, passwordHash, fullName, phone string) (*tenantModels.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	customer := &tenantModels.Customer{
		ID:           uuid.New(),
		Email:        email,
		FullName:     fullName,
		Phone:        phone,
		IsActive:     true,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.customers = append(f.customers, customer)
	return customer, nil
}

func (f *fakeTenantStores) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.touchErr != nil {
		return f.touchErr
	}
	f.customerTouches++
	return nil
}

func (f *fakeTenantStores) List(ctx context.Context) ([]tenantModels.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tenantModels.Product{}, f.products...), nil
}

type fakeTenantConn struct {
	stores *fakeTenantStores
}

func (c *fakeTenantConn) Ping(ctx context.Context) error { return nil }
func (c *fakeTenantConn) Close()                         {}

func (c *fakeTenantConn) Identities() tenantRepo.IdentityStore { return c.stores }
func (c *fakeTenantConn) Customers() tenantRepo.CustomerStore  { return c.stores }
func (c *fakeTenantConn) Products() tenantRepo.ProductStore    { return c.stores }

type fakeTenantDialer struct {
	tenants map[string]*fakeTenantStores
}

func (d *fakeTenantDialer) Dial(ctx context.Context, tenantID string) (database.Conn, error) {
	stores, ok := d.tenants[tenantID]
	if !ok {
		return nil, errors.New("no such tenant database")
	}
	return &fakeTenantConn{stores: stores}, nil
}

type fakeRouteCache struct {
	mu     sync.Mutex
	routes map[string]*cache.StoreRoute
	getErr error
	hits   int
}

func newFakeRouteCache() *fakeRouteCache {
	return &fakeRouteCache{routes: make(map[string]*cache.StoreRoute)}
}

func (f *fakeRouteCache) GetStoreRoute(ctx context.Context, storeID string) (*cache.StoreRoute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if route, ok := f.routes[storeID]; ok {
		f.hits++
		cp := *route
		return &cp, nil
	}
	return nil, cache.Nil
}

func (f *fakeRouteCache) SetStoreRoute(ctx context.Context, storeID string, route *cache.StoreRoute, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *route
	f.routes[storeID] = &cp
	return nil
}
