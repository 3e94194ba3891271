// Package verify wraps the third-party verification providers the platform
// calls out to: CAPTCHA scoring and phone one-time codes. Each provider is an
// interface with an HTTP implementation plus a development fallback, chosen
// by driver name.
package verify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/config"
)

// Result is a provider verdict on a submitted token.
type Result struct {
	Success bool
	Score   float64
}

// CaptchaVerifier scores a client-supplied captcha token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, captchaToken, remoteIP string) (*Result, error)
}

// OTPProvider issues and checks phone one-time codes.
type OTPProvider interface {
	Send(ctx context.Context, phone string) error
	Check(ctx context.Context, phone, code string) (bool, error)
}

// NewCaptchaVerifier selects the captcha driver from config.
func NewCaptchaVerifier(cfg *config.CaptchaConfig, log *zap.Logger) (CaptchaVerifier, error) {
	switch cfg.Driver {
	case "http":
		return newHTTPCaptcha(cfg, log), nil
	case "noop", "":
		log.Warn("captcha verification disabled, every token passes")
		return &noopCaptcha{}, nil
	default:
		return nil, fmt.Errorf("unknown captcha driver: %s", cfg.Driver)
	}
}

// NewOTPProvider selects the OTP driver from config.
func NewOTPProvider(cfg *config.OTPConfig, log *zap.Logger) (OTPProvider, error) {
	switch cfg.Driver {
	case "http":
		return newHTTPOTP(cfg, log), nil
	case "mock", "":
		log.Warn("OTP provider running in mock mode, codes are logged instead of sent")
		return newMockOTP(log), nil
	default:
		return nil, fmt.Errorf("unknown OTP driver: %s", cfg.Driver)
	}
}

type noopCaptcha struct{}

func (n *noopCaptcha) Verify(ctx context.Context, captchaToken, remoteIP string) (*Result, error) {
	return &Result{Success: true, Score: 1.0}, nil
}
