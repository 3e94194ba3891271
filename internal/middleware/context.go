package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Yespecom/server-updated-sub001/internal/database"
	tenantModels "github.com/Yespecom/server-updated-sub001/internal/models/tenant"
	"github.com/Yespecom/server-updated-sub001/internal/token"
)

const (
	ctxKeyIdentity = "request_identity"
	ctxKeyStore    = "store_context"
)

// RequestIdentity is the authenticated identity attached to a request after
// the auth pipeline succeeds. Exactly one of Admin or Customer is set,
// matching the token type, with password fields stripped.
type RequestIdentity struct {
	TenantID string
	StoreID  string
	Admin    *tenantModels.AdminUser
	Customer *tenantModels.Customer
	Token    string
	Claims   *token.Claims
}

// StoreContext is the per-request result of resolving a path-embedded store
// identifier: the owning tenant, its connection handle, and display
// metadata. Never persisted; rebuilt for every request.
type StoreContext struct {
	TenantID string
	StoreID  string
	Info     tenantModels.StoreInfo
	Handle   *database.Handle
}

// Identity returns the request identity set by the auth pipeline, or nil.
func Identity(c *gin.Context) *RequestIdentity {
	if v, ok := c.Get(ctxKeyIdentity); ok {
		return v.(*RequestIdentity)
	}
	return nil
}

// Store returns the resolved store context, or nil.
func Store(c *gin.Context) *StoreContext {
	if v, ok := c.Get(ctxKeyStore); ok {
		return v.(*StoreContext)
	}
	return nil
}

func setIdentity(c *gin.Context, identity *RequestIdentity) {
	c.Set(ctxKeyIdentity, identity)
}

func setStore(c *gin.Context, sc *StoreContext) {
	c.Set(ctxKeyStore, sc)
}
