package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/errs"
	"github.com/Yespecom/server-updated-sub001/internal/models"
	"github.com/Yespecom/server-updated-sub001/internal/verify"
)

// OTPHandler proxies phone one-time-code issuance and verification to the
// configured provider.
type OTPHandler struct {
	otp verify.OTPProvider
	log *zap.Logger
}

func NewOTPHandler(otp verify.OTPProvider, log *zap.Logger) *OTPHandler {
	return &OTPHandler{otp: otp, log: log}
}

func (h *OTPHandler) Send(c *gin.Context) {
	var req models.OTPSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.Validation(err.Error()))
		return
	}

	if err := h.otp.Send(c.Request.Context(), req.Phone); err != nil {
		h.log.Error("otp send failed", zap.Error(err))
		errs.Respond(c, errs.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "code sent"})
}

func (h *OTPHandler) Verify(c *gin.Context) {
	var req models.OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errs.Respond(c, errs.Validation(err.Error()))
		return
	}

	valid, err := h.otp.Check(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		h.log.Error("otp check failed", zap.Error(err))
		errs.Respond(c, errs.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": valid})
}
