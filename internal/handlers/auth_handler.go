package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/errs"
	"github.com/Yespecom/server-updated-sub001/internal/models"
	"github.com/Yespecom/server-updated-sub001/internal/repository"
	"github.com/Yespecom/server-updated-sub001/internal/token"
	"github.com/Yespecom/server-updated-sub001/internal/utils"
	"github.com/Yespecom/server-updated-sub001/internal/verify"
)

// AuthHandler handles platform admin authentication.
type AuthHandler struct {
	accounts repository.AccountStore
	codec    *token.Codec
	captcha  verify.CaptchaVerifier
	minScore float64
	log      *zap.Logger
}

func NewAuthHandler(accounts repository.AccountStore, codec *token.Codec, captcha verify.CaptchaVerifier, minScore float64, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		codec:    codec,
		captcha:  captcha,
		minScore: minScore,
		log:      log,
	}
}

// Login authenticates a tenant owner against the platform database and
// issues an admin token. Invalid email and invalid password produce the same
// response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.Validation(err.Error()))
		return
	}
	req.Email = utils.NormalizeEmail(req.Email)

	if h.captcha != nil {
		result, err := h.captcha.Verify(c.Request.Context(), req.CaptchaToken, c.ClientIP())
		if err != nil {
			h.log.Error("captcha verification error", zap.Error(err))
			errs.Respond(c, errs.Internal(err))
			return
		}
		if !result.Success || result.Score < h.minScore {
			errs.Respond(c, errs.CaptchaFailed())
			return
		}
	}

	account, err := h.accounts.GetActiveByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errs.Respond(c, errs.InvalidCredentials())
			return
		}
		errs.Respond(c, errs.Internal(err))
		return
	}

	if !utils.CheckPasswordHash(req.Password, account.PasswordHash) {
		errs.Respond(c, errs.InvalidCredentials())
		return
	}

	signed, err := h.codec.Issue(token.Claims{
		SubjectID: account.ID,
		Email:     account.Email,
		Type:      token.TypeAdmin,
		TenantID:  account.TenantID.String(),
		StoreID:   account.StoreID,
	})
	if err != nil {
		errs.Respond(c, errs.Internal(err))
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token:    signed,
		TenantID: account.TenantID.String(),
		StoreID:  account.StoreID,
		Email:    account.Email,
	})
}
