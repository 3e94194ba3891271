package verify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/config"
	"github.com/Yespecom/server-updated-sub001/internal/utils"
)

type otpResponse struct {
	Status string `json:"status"`
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
}

// httpOTP talks to the SMS verification vendor.
type httpOTP struct {
	client *resty.Client
	log    *zap.Logger
}

func newHTTPOTP(cfg *config.OTPConfig, log *zap.Logger) *httpOTP {
	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &httpOTP{client: client, log: log}
}

func (h *httpOTP) Send(ctx context.Context, phone string) error {
	var out otpResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"phone": phone}).
		SetResult(&out).
		Post("/send")
	if err != nil {
		return fmt.Errorf("otp send request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("otp provider returned status %d: %s", resp.StatusCode(), out.Error)
	}
	return nil
}

func (h *httpOTP) Check(ctx context.Context, phone, code string) (bool, error) {
	var out otpResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"phone": phone, "code": code}).
		SetResult(&out).
		Post("/check")
	if err != nil {
		return false, fmt.Errorf("otp check request failed: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("otp provider returned status %d: %s", resp.StatusCode(), out.Error)
	}
	return out.Valid, nil
}

// mockOTP keeps issued codes in memory and logs them. Development only.
type mockOTP struct {
	log   *zap.Logger
	mu    sync.Mutex
	codes map[string]string
}

func newMockOTP(log *zap.Logger) *mockOTP {
	return &mockOTP{log: log, codes: make(map[string]string)}
}

func (m *mockOTP) Send(ctx context.Context, phone string) error {
	code, err := utils.GenerateNumericCode(6)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.codes[phone] = code
	m.mu.Unlock()

	m.log.Info("mock OTP issued", zap.String("phone", phone), zap.String("code", code))
	return nil
}

func (m *mockOTP) Check(ctx context.Context, phone, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expected, ok := m.codes[phone]
	if !ok || expected != code {
		return false, nil
	}
	delete(m.codes, phone)
	return true, nil
}
