package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/database"
	"github.com/Yespecom/server-updated-sub001/internal/errs"
	"github.com/Yespecom/server-updated-sub001/internal/middleware"
	tenantModels "github.com/Yespecom/server-updated-sub001/internal/models/tenant"
)

// AdminHandler serves tenant-owner routes. The tenant is always taken from
// the authenticated identity, never from the URL.
type AdminHandler struct {
	registry *database.Registry
	log      *zap.Logger
}

func NewAdminHandler(registry *database.Registry, log *zap.Logger) *AdminHandler {
	return &AdminHandler{registry: registry, log: log}
}

// Me echoes the authenticated admin identity.
func (h *AdminHandler) Me(c *gin.Context) {
	identity := middleware.Identity(c)
	c.JSON(http.StatusOK, gin.H{
		"tenant_id": identity.TenantID,
		"store_id":  identity.StoreID,
		"user":      identity.Admin,
	})
}

// Products lists the tenant's catalog.
func (h *AdminHandler) Products(c *gin.Context) {
	identity := middleware.Identity(c)

	handle, err := h.registry.Resolve(c.Request.Context(), identity.TenantID)
	if err != nil {
		h.log.Error("tenant resolve failed", zap.String("tenant_id", identity.TenantID), zap.Error(err))
		errs.Respond(c, errs.DBUnavailable(err))
		return
	}

	products, err := handle.Products().List(c.Request.Context())
	if err != nil {
		errs.Respond(c, errs.Internal(err))
		return
	}

	c.JSON(http.StatusOK, tenantModels.ProductListResponse{
		Products:   products,
		TotalCount: len(products),
	})
}
