package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/database"
	"github.com/Yespecom/server-updated-sub001/internal/errs"
	"github.com/Yespecom/server-updated-sub001/internal/repository"
	tenantRepo "github.com/Yespecom/server-updated-sub001/internal/repository/tenant"
	"github.com/Yespecom/server-updated-sub001/internal/token"
)

// AuthMiddleware is the request auth pipeline. The admin variant derives the
// tenant from the bearer's platform account; the customer variant requires
// an already-resolved store context and binds the token to it.
type AuthMiddleware struct {
	codec    *token.Codec
	accounts repository.AccountStore
	registry *database.Registry
	log      *zap.Logger
}

func NewAuthMiddleware(codec *token.Codec, accounts repository.AccountStore, registry *database.Registry, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		codec:    codec,
		accounts: accounts,
		registry: registry,
		log:      log,
	}
}

// bearer extracts and verifies the Authorization header.
func (m *AuthMiddleware) bearer(c *gin.Context) (string, *token.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", nil, errs.NoToken()
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", nil, errs.NoToken()
	}

	claims, err := m.codec.Verify(parts[1])
	if err != nil {
		return "", nil, err
	}
	return parts[1], claims, nil
}

// stale reports whether the password changed after the token was issued.
// Comparison is in whole epoch seconds, matching the token's issuedAt
// resolution.
func stale(passwordChangedAt *time.Time, claims *token.Claims) bool {
	if passwordChangedAt == nil || claims.IssuedAt == nil {
		return false
	}
	return passwordChangedAt.Unix() > claims.IssuedAt.Unix()
}

// RequireAdmin authenticates a platform admin token and loads the matching
// tenant identity. Steps run strictly in order; any failure short-circuits.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, claims, err := m.bearer(c)
		if err != nil {
			errs.AbortWith(c, err)
			return
		}

		if claims.Type != token.TypeAdmin {
			errs.AbortWith(c, errs.InvalidTokenType())
			return
		}

		ctx := c.Request.Context()

		account, err := m.accounts.GetActiveByEmail(ctx, claims.Email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				errs.AbortWith(c, errs.AccountNotFound())
				return
			}
			errs.AbortWith(c, errs.Internal(err))
			return
		}

		// The platform and tenant copies of passwordChangedAt are checked
		// independently; either one moving past issuedAt kills the token.
		if stale(account.PasswordChangedAt, claims) {
			errs.AbortWith(c, errs.TokenStale())
			return
		}

		handle, err := m.registry.Resolve(ctx, account.TenantID.String())
		if err != nil {
			m.log.Error("tenant resolve failed",
				zap.String("tenant_id", account.TenantID.String()),
				zap.Error(err))
			errs.AbortWith(c, errs.DBUnavailable(err))
			return
		}

		admin, err := handle.Identities().GetAdminByID(ctx, claims.SubjectID)
		if err != nil {
			if errors.Is(err, tenantRepo.ErrNotFound) {
				errs.AbortWith(c, errs.IdentityNotFound())
				return
			}
			errs.AbortWith(c, errs.Internal(err))
			return
		}
		if !admin.IsActive {
			errs.AbortWith(c, errs.AccountInactive())
			return
		}

		if stale(admin.PasswordChangedAt, claims) {
			errs.AbortWith(c, errs.TokenStale())
			return
		}

		// Best effort: a failed login-time update is logged, never fatal.
		now := time.Now()
		if err := handle.Identities().TouchAdminLogin(ctx, admin.ID, now); err != nil {
			m.log.Warn("failed to record admin login time",
				zap.String("tenant_id", account.TenantID.String()),
				zap.Error(err))
		}

		setIdentity(c, &RequestIdentity{
			TenantID: account.TenantID.String(),
			StoreID:  account.StoreID,
			Admin:    admin.Sanitized(),
			Token:    raw,
			Claims:   claims,
		})

		c.Next()
	}
}

// RequireCustomer authenticates a store customer token against the store
// context resolved earlier in the chain. A token minted for store A never
// authenticates against store B, even within the same tenant.
func (m *AuthMiddleware) RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		sc := Store(c)
		if sc == nil {
			errs.AbortWith(c, errs.Internal(errors.New("customer auth requires a resolved store context")))
			return
		}

		raw, claims, err := m.bearer(c)
		if err != nil {
			errs.AbortWith(c, err)
			return
		}

		if claims.Type != token.TypeCustomer {
			errs.AbortWith(c, errs.InvalidTokenType())
			return
		}

		if claims.StoreID != sc.StoreID {
			errs.AbortWith(c, errs.StoreMismatch())
			return
		}

		ctx := c.Request.Context()

		customer, err := sc.Handle.Customers().GetByID(ctx, claims.SubjectID)
		if err != nil {
			if errors.Is(err, tenantRepo.ErrNotFound) {
				errs.AbortWith(c, errs.IdentityNotFound())
				return
			}
			errs.AbortWith(c, errs.Internal(err))
			return
		}
		if !customer.IsActive {
			errs.AbortWith(c, errs.AccountInactive())
			return
		}

		if stale(customer.PasswordChangedAt, claims) {
			errs.AbortWith(c, errs.TokenStale())
			return
		}

		now := time.Now()
		if err := sc.Handle.Customers().TouchLogin(ctx, customer.ID, now); err != nil {
			m.log.Warn("failed to record customer login time",
				zap.String("store_id", sc.StoreID),
				zap.Error(err))
		}

		setIdentity(c, &RequestIdentity{
			TenantID: sc.TenantID,
			StoreID:  sc.StoreID,
			Customer: customer.Sanitized(),
			Token:    raw,
			Claims:   claims,
		})

		c.Next()
	}
}
