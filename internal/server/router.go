// Package server assembles the HTTP router. Route ordering is a contract:
// fixed-prefix routes (health, auth, otp, password-reset, admin) register
// before the dynamic /api/:storeId matcher, and the reserved-segment guard
// backstops that ordering at runtime.
package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/errs"
	"github.com/Yespecom/server-updated-sub001/internal/handlers"
	"github.com/Yespecom/server-updated-sub001/internal/middleware"
)

// reservedSegments are path prefixes that must never be interpreted as store
// identifiers.
var reservedSegments = map[string]struct{}{
	"admin":          {},
	"auth":           {},
	"otp":            {},
	"password-reset": {},
	"health":         {},
}

// ReservedSegmentGuard rejects any store-route request whose :storeId
// segment collides with a reserved prefix. Firing means the dispatcher
// ordering is broken; the failure is a 500, not a client error.
func ReservedSegmentGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		segment := strings.ToLower(c.Param("storeId"))
		if _, reserved := reservedSegments[segment]; reserved {
			errs.AbortWith(c, errs.RoutingIntegrity(segment))
			return
		}
		c.Next()
	}
}

// requestLogger logs each request at info level with latency and status.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Deps carries everything the router needs, constructed once in main.
type Deps struct {
	Log           *zap.Logger
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	OTP           *handlers.OTPHandler
	PasswordReset *handlers.PasswordResetHandler
	Admin         *handlers.AdminHandler
	Store         *handlers.StoreHandler
	AuthPipeline  *middleware.AuthMiddleware
	StoreResolver *middleware.StoreResolver
}

// New builds the router. Registration order is most-specific first; the
// dynamic store group comes last.
func New(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(deps.Log), gin.Recovery())

	router.GET("/health", deps.Health.Health)

	api := router.Group("/api")

	api.POST("/auth/login", deps.Auth.Login)

	api.POST("/otp/send", deps.OTP.Send)
	api.POST("/otp/verify", deps.OTP.Verify)

	api.POST("/password-reset/request", deps.PasswordReset.Request)
	api.POST("/password-reset/confirm", deps.PasswordReset.Confirm)

	admin := api.Group("/admin")
	admin.Use(deps.AuthPipeline.RequireAdmin())
	{
		admin.GET("/me", deps.Admin.Me)
		admin.GET("/products", deps.Admin.Products)
	}

	store := api.Group("/:storeId")
	store.Use(ReservedSegmentGuard(), deps.StoreResolver.Middleware())
	{
		store.GET("/info", deps.Store.Info)
		store.POST("/auth/register", deps.Store.Register)
		store.POST("/auth/login", deps.Store.Login)

		protected := store.Group("")
		protected.Use(deps.AuthPipeline.RequireCustomer())
		{
			protected.GET("/products", deps.Store.Products)
			protected.GET("/me", deps.Store.Me)
		}
	}

	return router
}
