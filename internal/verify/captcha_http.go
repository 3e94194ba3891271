package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/config"
)

type captchaResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// httpCaptcha posts tokens to a reCAPTCHA-style siteverify endpoint.
type httpCaptcha struct {
	client *resty.Client
	secret string
	log    *zap.Logger
}

func newHTTPCaptcha(cfg *config.CaptchaConfig, log *zap.Logger) *httpCaptcha {
	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &httpCaptcha{
		client: client,
		secret: cfg.Secret,
		log:    log,
	}
}

func (h *httpCaptcha) Verify(ctx context.Context, captchaToken, remoteIP string) (*Result, error) {
	var out captchaResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"secret":   h.secret,
			"response": captchaToken,
			"remoteip": remoteIP,
		}).
		SetResult(&out).
		Post("")
	if err != nil {
		return nil, fmt.Errorf("captcha verification request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("captcha provider returned status %d", resp.StatusCode())
	}

	if len(out.ErrorCodes) > 0 {
		h.log.Debug("captcha provider rejected token", zap.Strings("error_codes", out.ErrorCodes))
	}

	return &Result{Success: out.Success, Score: out.Score}, nil
}
