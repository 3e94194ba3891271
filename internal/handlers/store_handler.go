package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/errs"
	"github.com/Yespecom/server-updated-sub001/internal/middleware"
	tenantModels "github.com/Yespecom/server-updated-sub001/internal/models/tenant"
	tenantRepo "github.com/Yespecom/server-updated-sub001/internal/repository/tenant"
	"github.com/Yespecom/server-updated-sub001/internal/token"
	"github.com/Yespecom/server-updated-sub001/internal/utils"
)

// StoreHandler serves storefront routes under /api/:storeId. Every handler
// runs after the store context resolver.
type StoreHandler struct {
	codec *token.Codec
	log   *zap.Logger
}

func NewStoreHandler(codec *token.Codec, log *zap.Logger) *StoreHandler {
	return &StoreHandler{codec: codec, log: log}
}

// Info returns the store's public display metadata.
func (h *StoreHandler) Info(c *gin.Context) {
	sc := middleware.Store(c)
	c.JSON(http.StatusOK, sc.Info)
}

// Register creates a customer in the store's tenant database.
func (h *StoreHandler) Register(c *gin.Context) {
	var req tenantModels.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.Validation(err.Error()))
		return
	}
	req.Email = utils.NormalizeEmail(req.Email)

	sc := middleware.Store(c)

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		errs.Respond(c, errs.Internal(err))
		return
	}

	customer, err := sc.Handle.Customers().Create(c.Request.Context(), req.Email, hash, req.FullName, req.Phone)
	if err != nil {
		h.log.Error("customer registration failed", zap.String("store_id", sc.StoreID), zap.Error(err))
		errs.Respond(c, errs.Internal(err))
		return
	}

	c.JSON(http.StatusCreated, customer.Sanitized())
}

// Login authenticates a customer against the store's tenant database and
// issues a customer token bound to this store.
func (h *StoreHandler) Login(c *gin.Context) {
	var req tenantModels.CustomerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.Validation(err.Error()))
		return
	}
	req.Email = utils.NormalizeEmail(req.Email)

	sc := middleware.Store(c)

	customer, err := sc.Handle.Customers().GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, tenantRepo.ErrNotFound) {
			errs.Respond(c, errs.InvalidCredentials())
			return
		}
		errs.Respond(c, errs.Internal(err))
		return
	}

	if !customer.IsActive || !utils.CheckPasswordHash(req.Password, customer.PasswordHash) {
		errs.Respond(c, errs.InvalidCredentials())
		return
	}

	signed, err := h.codec.Issue(token.Claims{
		SubjectID: customer.ID,
		Email:     customer.Email,
		Type:      token.TypeCustomer,
		StoreID:   sc.StoreID,
	})
	if err != nil {
		errs.Respond(c, errs.Internal(err))
		return
	}

	c.JSON(http.StatusOK, tenantModels.CustomerLoginResponse{
		Token:   signed,
		StoreID: sc.StoreID,
		Email:   customer.Email,
	})
}

// Products lists the store catalog for an authenticated customer.
func (h *StoreHandler) Products(c *gin.Context) {
	sc := middleware.Store(c)

	products, err := sc.Handle.Products().List(c.Request.Context())
	if err != nil {
		errs.Respond(c, errs.Internal(err))
		return
	}

	c.JSON(http.StatusOK, tenantModels.ProductListResponse{
		Products:   products,
		TotalCount: len(products),
	})
}

// Me echoes the authenticated customer identity.
func (h *StoreHandler) Me(c *gin.Context) {
	identity := middleware.Identity(c)
	c.JSON(http.StatusOK, gin.H{
		"store_id": identity.StoreID,
		"customer": identity.Customer,
	})
}
