package middleware

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/cache"
	"github.com/Yespecom/server-updated-sub001/internal/database"
	"github.com/Yespecom/server-updated-sub001/internal/errs"
	tenantModels "github.com/Yespecom/server-updated-sub001/internal/models/tenant"
	"github.com/Yespecom/server-updated-sub001/internal/repository"
	tenantRepo "github.com/Yespecom/server-updated-sub001/internal/repository/tenant"
)

// storeIDPattern: exactly six alphanumeric characters, case-insensitive.
var storeIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)

const storeRouteTTL = 24 * time.Hour

// RouteCache fronts the storeID -> tenant mapping. Satisfied by
// *cache.Client; nil disables caching.
type RouteCache interface {
	GetStoreRoute(ctx context.Context, storeID string) (*cache.StoreRoute, error)
	SetStoreRoute(ctx context.Context, storeID string, route *cache.StoreRoute, expiration time.Duration) error
}

// StoreResolver turns a path-embedded store identifier into a StoreContext:
// owning tenant, live connection handle, and display metadata.
type StoreResolver struct {
	accounts repository.AccountStore
	registry *database.Registry
	routes   RouteCache
	log      *zap.Logger
}

func NewStoreResolver(accounts repository.AccountStore, registry *database.Registry, routes RouteCache, log *zap.Logger) *StoreResolver {
	return &StoreResolver{
		accounts: accounts,
		registry: registry,
		routes:   routes,
		log:      log,
	}
}

// Middleware resolves the :storeId path parameter and attaches the
// StoreContext. Runs before any store-scoped handler or auth variant.
func (s *StoreResolver) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("storeId")
		if !storeIDPattern.MatchString(raw) {
			errs.AbortWith(c, errs.InvalidStoreID())
			return
		}

		ctx := c.Request.Context()

		route, err := s.resolveRoute(ctx, raw)
		if err != nil {
			errs.AbortWith(c, err)
			return
		}

		handle, resolveErr := s.registry.Resolve(ctx, route.TenantID)
		if resolveErr != nil {
			s.log.Error("tenant resolve failed",
				zap.String("store_id", route.StoreID),
				zap.String("tenant_id", route.TenantID),
				zap.Error(resolveErr))
			errs.AbortWith(c, errs.DBUnavailable(resolveErr))
			return
		}

		owner, ownerErr := handle.Identities().GetAdminByEmail(ctx, route.Email)
		if ownerErr != nil {
			if errors.Is(ownerErr, tenantRepo.ErrNotFound) {
				errs.AbortWith(c, errs.TenantIdentityMissing())
				return
			}
			errs.AbortWith(c, errs.Internal(ownerErr))
			return
		}

		if !owner.HasStore {
			errs.AbortWith(c, errs.StoreNotActive())
			return
		}

		setStore(c, &StoreContext{
			TenantID: route.TenantID,
			StoreID:  route.StoreID,
			Info: tenantModels.StoreInfo{
				StoreID: route.StoreID,
				Name:    owner.StoreName,
				Logo:    owner.StoreLogo,
			},
			Handle: handle,
		})

		c.Next()
	}
}

// resolveRoute maps a raw store identifier to its owning tenant. Identifiers
// are conventionally stored uppercase, so the uppercase lookup comes first;
// legacy records that kept their original casing are caught by the
// case-insensitive fallback. Cache errors only log; the platform database
// remains the source of truth.
func (s *StoreResolver) resolveRoute(ctx context.Context, raw string) (*cache.StoreRoute, *errs.Error) {
	upper := strings.ToUpper(raw)

	if s.routes != nil {
		route, err := s.routes.GetStoreRoute(ctx, upper)
		if err == nil {
			return route, nil
		}
		if !errors.Is(err, cache.Nil) {
			s.log.Warn("store route cache read failed", zap.String("store_id", upper), zap.Error(err))
		}
	}

	account, err := s.accounts.GetByStoreID(ctx, upper)
	if errors.Is(err, repository.ErrNotFound) {
		account, err = s.accounts.GetByStoreIDFold(ctx, raw)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.StoreNotFound()
		}
		return nil, errs.Internal(err)
	}

	route := &cache.StoreRoute{
		TenantID: account.TenantID.String(),
		StoreID:  account.StoreID,
		Email:    account.Email,
	}

	if s.routes != nil {
		if err := s.routes.SetStoreRoute(ctx, upper, route, storeRouteTTL); err != nil {
			s.log.Warn("store route cache write failed", zap.String("store_id", upper), zap.Error(err))
		}
	}

	return route, nil
}
