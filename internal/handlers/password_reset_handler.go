package handlers

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/cache"
	"github.com/Yespecom/server-updated-sub001/internal/database"
	"github.com/Yespecom/server-updated-sub001/internal/errs"
	"github.com/Yespecom/server-updated-sub001/internal/mailer"
	"github.com/Yespecom/server-updated-sub001/internal/models"
	"github.com/Yespecom/server-updated-sub001/internal/repository"
	"github.com/Yespecom/server-updated-sub001/internal/utils"
)

const resetCodeTTL = 15 * time.Minute

// ResetCodeStore holds outstanding password-reset codes. Satisfied by
// *cache.Client.
type ResetCodeStore interface {
	SetResetCode(ctx context.Context, email, codeHash string, expiration time.Duration) error
	GetResetCode(ctx context.Context, email string) (string, error)
	DeleteResetCode(ctx context.Context, email string) error
}

// PasswordResetHandler drives the owner password-reset flow. A successful
// reset rotates the password hash in BOTH the platform account and the
// tenant admin record, which invalidates every token issued before the
// change.
type PasswordResetHandler struct {
	accounts repository.AccountStore
	registry *database.Registry
	codes    ResetCodeStore
	mail     mailer.Mailer
	log      *zap.Logger
}

func NewPasswordResetHandler(accounts repository.AccountStore, registry *database.Registry, codes ResetCodeStore, mail mailer.Mailer, log *zap.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{
		accounts: accounts,
		registry: registry,
		codes:    codes,
		mail:     mail,
		log:      log,
	}
}

func hashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Request issues a reset code. The response is identical whether or not the
// account exists, so the endpoint cannot be used to enumerate accounts.
func (h *PasswordResetHandler) Request(c *gin.Context) {
	var req models.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.Validation(err.Error()))
		return
	}
	req.Email = utils.NormalizeEmail(req.Email)

	uniform := gin.H{"message": "if the account exists, a reset code has been sent"}

	account, err := h.accounts.GetActiveByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.log.Error("password reset account lookup failed", zap.Error(err))
		}
		c.JSON(http.StatusOK, uniform)
		return
	}

	code, err := utils.GenerateNumericCode(6)
	if err != nil {
		h.log.Error("failed to generate reset code", zap.Error(err))
		c.JSON(http.StatusOK, uniform)
		return
	}

	if err := h.codes.SetResetCode(c.Request.Context(), account.Email, hashResetCode(code), resetCodeTTL); err != nil {
		h.log.Error("failed to store reset code", zap.Error(err))
		c.JSON(http.StatusOK, uniform)
		return
	}

	body := fmt.Sprintf("Your password reset code is %s. It expires in 15 minutes.", code)
	if err := h.mail.Send(c.Request.Context(), account.Email, "Password reset", body); err != nil {
		h.log.Error("failed to send reset mail", zap.Error(err))
	}

	c.JSON(http.StatusOK, uniform)
}

// Confirm validates the reset code and rotates the password in both copies
// of the account record.
func (h *PasswordResetHandler) Confirm(c *gin.Context) {
	var req models.PasswordResetConfirm
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.Validation(err.Error()))
		return
	}
	req.Email = utils.NormalizeEmail(req.Email)

	ctx := c.Request.Context()

	storedHash, err := h.codes.GetResetCode(ctx, req.Email)
	if err != nil {
		if errors.Is(err, cache.Nil) {
			errs.Respond(c, errs.InvalidResetCode())
			return
		}
		errs.Respond(c, errs.Internal(err))
		return
	}
	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(hashResetCode(req.Code))) != 1 {
		errs.Respond(c, errs.InvalidResetCode())
		return
	}

	account, err := h.accounts.GetActiveByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errs.Respond(c, errs.InvalidResetCode())
			return
		}
		errs.Respond(c, errs.Internal(err))
		return
	}

	newHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		errs.Respond(c, errs.Internal(err))
		return
	}

	changedAt := time.Now()

	if err := h.accounts.UpdatePassword(ctx, account.ID, newHash, changedAt); err != nil {
		errs.Respond(c, errs.Internal(err))
		return
	}

	// Keep the tenant copy in lockstep so the staleness check holds no
	// matter which copy a pipeline consults.
	handle, err := h.registry.Resolve(ctx, account.TenantID.String())
	if err != nil {
		h.log.Error("tenant resolve failed during password reset",
			zap.String("tenant_id", account.TenantID.String()),
			zap.Error(err))
		errs.Respond(c, errs.DBUnavailable(err))
		return
	}
	if err := handle.Identities().UpdateAdminPassword(ctx, account.Email, newHash, changedAt); err != nil {
		h.log.Error("tenant password update failed",
			zap.String("tenant_id", account.TenantID.String()),
			zap.Error(err))
		errs.Respond(c, errs.Internal(err))
		return
	}

	if err := h.codes.DeleteResetCode(ctx, req.Email); err != nil {
		h.log.Warn("failed to consume reset code", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
