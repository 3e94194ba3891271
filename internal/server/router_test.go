package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/cache"
	"github.com/Yespecom/server-updated-sub001/internal/config"
	"github.com/Yespecom/server-updated-sub001/internal/database"
	"github.com/Yespecom/server-updated-sub001/internal/handlers"
	"github.com/Yespecom/server-updated-sub001/internal/mailer"
	"github.com/Yespecom/server-updated-sub001/internal/middleware"
	"github.com/Yespecom/server-updated-sub001/internal/models"
	tenantModels "github.com/Yespecom/server-updated-sub001/internal/models/tenant"
	"github.com/Yespecom/server-updated-sub001/internal/repository"
	tenantRepo "github.com/Yespecom/server-updated-sub001/internal/repository/tenant"
	"github.com/Yespecom/server-updated-sub001/internal/token"
	"github.com/Yespecom/server-updated-sub001/internal/utils"
	"github.com/Yespecom/server-updated-sub001/internal/verify"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts []*models.MainAccount
}

func (f *fakeAccounts) GetActiveByEmail(ctx context.Context, email string) (*models.MainAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email && a.IsActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccounts) GetByStoreID(ctx context.Context, storeID string) (*models.MainAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.StoreID == storeID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccounts) GetByStoreIDFold(ctx context.Context, storeID string) (*models.MainAccount, error) {
	return f.GetByStoreID(ctx, storeID)
}

func (f *fakeAccounts) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.ID == id {
			a.PasswordHash = passwordHash
			at := changedAt
			a.PasswordChangedAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeTenant struct {
	mu        sync.Mutex
	admins    []*tenantModels.AdminUser
	customers []*tenantModels.Customer
	products  []tenantModels.Product
}

func (f *fakeTenant) GetAdminByID(ctx context.Context, id uuid.UUID) (*tenantModels.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.admins {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, tenantRepo.ErrNotFound
}

func (f *fakeTenant) GetAdminByEmail(ctx context.Context, email string) (*tenantModels.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.admins {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, tenantRepo.ErrNotFound
}

func (f *fakeTenant) TouchAdminLogin(ctx context.Context, id uuid.UUID, at time.Time) error { return nil }

func (f *fakeTenant) UpdateAdminPassword(ctx context.Context, email, passwordHash string, changedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.admins {
		if u.Email == email {
			u.PasswordHash = passwordHash
			at := changedAt
			u.PasswordChangedAt = &at
			return nil
		}
	}
	return tenantRepo.ErrNotFound
}

func (f *fakeTenant) GetByID(ctx context.Context, id uuid.UUID) (*tenantModels.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cu := range f.customers {
		if cu.ID == id {
			cp := *cu
			return &cp, nil
		}
	}
	return nil, tenantRepo.ErrNotFound
}

func (f *fakeTenant) GetByEmail(ctx context.Context, email string) (*tenantModels.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cu := range f.customers {
		if cu.Email == email {
			cp := *cu
			return &cp, nil
		}
	}
	return nil, tenantRepo.ErrNotFound
}

func (f *fakeTenant) Create(ctx context.Context, email, passwordHash, fullName, phone string) (*tenantModels.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	customer := &tenantModels.Customer{
		ID:           uuid.New(),
		Email:        email,
		FullName:     fullName,
		Phone:        phone,
		IsActive:     true,
		PasswordHash: passwordHash,
	}
	f.customers = append(f.customers, customer)
	return customer, nil
}

func (f *fakeTenant) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error { return nil }

func (f *fakeTenant) List(ctx context.Context) ([]tenantModels.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tenantModels.Product{}, f.products...), nil
}

type fakeTenantConn struct{ tenant *fakeTenant }

func (c *fakeTenantConn) Ping(ctx context.Context) error       { return nil }
func (c *fakeTenantConn) Close()                               {}
func (c *fakeTenantConn) Identities() tenantRepo.IdentityStore { return c.tenant }
func (c *fakeTenantConn) Customers() tenantRepo.CustomerStore  { return c.tenant }
func (c *fakeTenantConn) Products() tenantRepo.ProductStore    { return c.tenant }

type fakeDialer struct{ tenants map[string]*fakeTenant }

func (d *fakeDialer) Dial(ctx context.Context, tenantID string) (database.Conn, error) {
	tenant, ok := d.tenants[tenantID]
	if !ok {
		return nil, errors.New("no such tenant database")
	}
	return &fakeTenantConn{tenant: tenant}, nil
}

type fakeCodes struct {
	mu    sync.Mutex
	codes map[string]string
}

func newFakeCodes() *fakeCodes { return &fakeCodes{codes: make(map[string]string)} }

func (f *fakeCodes) SetResetCode(ctx context.Context, email, codeHash string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[email] = codeHash
	return nil
}

func (f *fakeCodes) GetResetCode(ctx context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if hash, ok := f.codes[email]; ok {
		return hash, nil
	}
	return "", cache.Nil
}

func (f *fakeCodes) DeleteResetCode(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, email)
	return nil
}

// testEnv wires the full router against in-memory stores: one tenant owning
// store XXXXXX.
type testEnv struct {
	router   *gin.Engine
	accounts *fakeAccounts
	tenant   *fakeTenant
	tenantID uuid.UUID
	ownerID  uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := zap.NewNop()

	env := &testEnv{
		tenantID: uuid.New(),
		ownerID:  uuid.New(),
	}

	hash, err := utils.HashPassword("owner-password-1")
	require.NoError(t, err)

	env.accounts = &fakeAccounts{accounts: []*models.MainAccount{
		{
			ID:           env.ownerID,
			Email:        "owner@example.com",
			TenantID:     env.tenantID,
			StoreID:      "XXXXXX",
			IsActive:     true,
			PasswordHash: hash,
		},
	}}

	env.tenant = &fakeTenant{
		admins: []*tenantModels.AdminUser{
			{
				ID:        env.ownerID,
				Email:     "owner@example.com",
				Role:      "owner",
				IsActive:  true,
				HasStore:  true,
				StoreName: "Test Store",
			},
		},
		products: []tenantModels.Product{
			{ID: uuid.New(), Name: "Widget", Price: 9.99, Stock: 3, Active: true},
			{ID: uuid.New(), Name: "Gadget", Price: 19.99, Stock: 1, Active: true},
		},
	}

	registry := database.NewRegistry(&fakeDialer{tenants: map[string]*fakeTenant{
		env.tenantID.String(): env.tenant,
	}}, log)

	codec := token.NewCodec(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1})

	captcha, err := verify.NewCaptchaVerifier(&config.CaptchaConfig{Driver: "noop"}, log)
	require.NoError(t, err)
	otp, err := verify.NewOTPProvider(&config.OTPConfig{Driver: "mock"}, log)
	require.NoError(t, err)
	mail, err := mailer.New(&config.MailConfig{Driver: "log"}, log)
	require.NoError(t, err)

	authPipeline := middleware.NewAuthMiddleware(codec, env.accounts, registry, log)
	storeResolver := middleware.NewStoreResolver(env.accounts, registry, nil, log)

	env.router = New(Deps{
		Log:           log,
		Health:        handlers.NewHealthHandler("test"),
		Auth:          handlers.NewAuthHandler(env.accounts, codec, captcha, 0.5, log),
		OTP:           handlers.NewOTPHandler(otp, log),
		PasswordReset: handlers.NewPasswordResetHandler(env.accounts, registry, newFakeCodes(), mail, log),
		Admin:         handlers.NewAdminHandler(registry, log),
		Store:         handlers.NewStoreHandler(codec, log),
		AuthPipeline:  authPipeline,
		StoreResolver: storeResolver,
	})
	return env
}

func (env *testEnv) do(method, path, bearer string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func responseCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	code, _ := body["code"].(string)
	return code
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["environment"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestReservedSegmentGuard(t *testing.T) {
	// Simulate a dispatcher misconfiguration that lets reserved prefixes
	// fall through to the dynamic store matcher.
	r := gin.New()
	r.GET("/api/:storeId/ping", ReservedSegmentGuard(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, segment := range []string{"admin", "auth", "otp", "password-reset", "health", "ADMIN"} {
		req := httptest.NewRequest(http.MethodGet, "/api/"+segment+"/ping", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code, "segment %q", segment)
		assert.Equal(t, "ROUTING_INTEGRITY", responseCode(t, w), "segment %q", segment)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/AAAAAA/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesNeverReachStoreResolver(t *testing.T) {
	env := newTestEnv(t)

	// An unauthenticated admin request fails with a token error, proving it
	// was dispatched to the admin pipeline, not resolved as store "admin".
	w := env.do(http.MethodGet, "/api/admin/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "NO_TOKEN", responseCode(t, w))
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{
		Email:    "owner@example.com",
		Password: "owner-password-1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, env.tenantID.String(), login.TenantID)
	assert.Equal(t, "XXXXXX", login.StoreID)

	// Admin route accepts the admin token.
	w = env.do(http.MethodGet, "/api/admin/products", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list tenantModels.ProductListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 2, list.TotalCount)

	// Customer route rejects the same admin token.
	w = env.do(http.MethodGet, "/api/XXXXXX/products", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN_TYPE", responseCode(t, w))
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{
		Email:    "owner@example.com",
		Password: "wrong-password-1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", responseCode(t, w))
}

func TestCustomerFlow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/XXXXXX/auth/register", "", tenantModels.RegisterCustomerRequest{
		Email:    "shopper@example.com",
		Password: "shopper-pass-1",
		FullName: "Test Shopper",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodPost, "/api/XXXXXX/auth/login", "", tenantModels.CustomerLoginRequest{
		Email:    "shopper@example.com",
		Password: "shopper-pass-1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login tenantModels.CustomerLoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "XXXXXX", login.StoreID)

	w = env.do(http.MethodGet, "/api/XXXXXX/products", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/XXXXXX/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestStoreInfoIsPublic(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/XXXXXX/info", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info tenantModels.StoreInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "Test Store", info.Name)
}

func TestUnknownStoreIs404(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/YYYYYY/info", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "STORE_NOT_FOUND", responseCode(t, w))
}

func TestOTPRoundtripWithMockProvider(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/otp/send", "", models.OTPSendRequest{Phone: "+15550001111"})
	require.Equal(t, http.StatusOK, w.Code)

	// Wrong code is rejected without error.
	w = env.do(http.MethodPost, "/api/otp/verify", "", models.OTPVerifyRequest{
		Phone: "+15550001111",
		Code:  "999999",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["verified"])
}
