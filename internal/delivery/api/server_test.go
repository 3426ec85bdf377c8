package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"authcore/config"
	apimiddleware "authcore/internal/delivery/api/middleware"
	"authcore/internal/delivery/api/response"
	"authcore/internal/delivery/api/router"
	"authcore/internal/delivery/api/router/handler"
	deliverycontext "authcore/internal/delivery/context"
	"authcore/internal/infra/auth"
	"authcore/internal/infra/metrics"
	"authcore/internal/infra/persistence/memory"
	"authcore/internal/infra/ratelimit"
	"authcore/internal/usecase/impl"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"golang.org/x/crypto/bcrypt"
)

type authBody struct {
	AccessToken string         `json:"access_token"`
	User        map[string]any `json:"user"`
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		SecretKey: struct {
			Access string `json:"access" yaml:"access"`
		}{Access: "test_access_secret_key_very_long_for_testing"},
		Auth:    &config.AuthConfig{BcryptCost: bcrypt.MinCost, TokenTTL: time.Hour},
		Metrics: &config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	cfg.HTTP.MaxRequestBodySize = "100KB"
	cfg.Storage.Driver = config.StorageDriverMemory

	return cfg
}

func newTestEcho(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()

	hasher, err := auth.NewBcryptHasher(cfg)
	require.NoError(t, err)
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	registry := metrics.NewRegistry()
	authMetrics, err := metrics.NewAuthMetrics(metrics.Params{Config: cfg, Registry: registry})
	require.NoError(t, err)

	limiter := ratelimit.NewAttemptLimiter(ratelimit.Params{
		Lc:     fxtest.NewLifecycle(t),
		Config: cfg,
		Logger: logger,
	})

	authUC := impl.NewAuthService(impl.AuthServiceParams{
		TxManager:    memory.NewTransactionManager(store),
		UserRepo:     memory.NewUserRepository(store),
		Hasher:       hasher,
		TokenService: tokens,
		Limiter:      limiter,
		Metrics:      authMetrics,
		Logger:       logger,
	})
	profileUC := impl.NewProfileService(impl.ProfileServiceParams{
		UserRepo: memory.NewUserRepository(store),
		Logger:   logger,
	})

	return NewEcho(cfg, logger, router.RouterParams{
		AuthHandler: handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC, Logger: logger}),
		UserHandler: handler.NewUserHandler(handler.UserHandlerParams{ProfileUC: profileUC}),
		AuthMiddleware: apimiddleware.NewAuthMiddleware(apimiddleware.AuthMiddlewareParams{
			TokenService: tokens,
			AuthUC:       authUC,
			Logger:       logger,
		}),
		Registry: registry,
		Config:   cfg,
	})
}

func doJSON(e *echo.Echo, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

const testUserBody = `{"email":"test@example.com","password":"password123","username":"testuser"}`

func TestRegister_Success(t *testing.T) {
	e := newTestEcho(t, newTestConfig())

	rec := doJSON(e, http.MethodPost, "/auth/register", testUserBody, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode[authBody](t, rec)
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "test@example.com", body.User["email"])
	assert.Equal(t, "testuser", body.User["username"])
	assert.NotEmpty(t, body.User["id"])
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")
	assert.NotEmpty(t, rec.Header().Get(deliverycontext.HeaderXRequestID))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newTestEcho(t, newTestConfig())

	require.Equal(t, http.StatusCreated, doJSON(e, http.MethodPost, "/auth/register", testUserBody, nil).Code)

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"test@example.com","password":"another-pass","username":"someone"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[response.ErrorResponse](t, rec)
	assert.Equal(t, "DUPLICATE_CREDENTIAL", body.Error.Code)
	assert.NotEmpty(t, body.Meta.RequestID)
}

func TestRegister_ValidationFailures(t *testing.T) {
	e := newTestEcho(t, newTestConfig())

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "malformed email", body: `{"email":"nope","password":"password123","username":"u"}`, field: "email"},
		{name: "short password", body: `{"email":"a@b.co","password":"12345","username":"u"}`, field: "password"},
		{name: "missing username", body: `{"email":"a@b.co","password":"password123"}`, field: "username"},
		{name: "password over 72 bytes", body: `{"email":"a@b.co","password":"` + strings.Repeat("é", 40) + `","username":"u"}`, field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/auth/register", tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[response.ErrorResponse](t, rec)
			assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
			assert.Contains(t, rec.Body.String(), `"field":"`+tt.field+`"`)
		})
	}

	rec := doJSON(e, http.MethodPost, "/auth/register", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_MultibytePasswordWithinLimit(t *testing.T) {
	e := newTestEcho(t, newTestConfig())
	password := strings.Repeat("é", 36)

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"multi@example.com","password":"`+password+`","username":"multi"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPost, "/auth/login", `{"email":"multi@example.com","password":"`+password+`"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegisterThenLogin(t *testing.T) {
	e := newTestEcho(t, newTestConfig())

	registered := decode[authBody](t, doJSON(e, http.MethodPost, "/auth/register", testUserBody, nil))

	rec := doJSON(e, http.MethodPost, "/auth/login", `{"email":"test@example.com","password":"password123"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode[authBody](t, rec)
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "test@example.com", body.User["email"])
	assert.Equal(t, registered.User["id"], body.User["id"])
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	e := newTestEcho(t, newTestConfig())
	require.Equal(t, http.StatusCreated, doJSON(e, http.MethodPost, "/auth/register", testUserBody, nil).Code)

	unknown := doJSON(e, http.MethodPost, "/auth/login", `{"email":"nonexistent@example.com","password":"wrongpassword"}`, nil)
	wrong := doJSON(e, http.MethodPost, "/auth/login", `{"email":"test@example.com","password":"wrongpassword"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)

	unknownBody := decode[response.ErrorResponse](t, unknown)
	wrongBody := decode[response.ErrorResponse](t, wrong)
	assert.Equal(t, "INVALID_CREDENTIALS", unknownBody.Error.Code)
	assert.Equal(t, unknownBody.Error, wrongBody.Error)
}

func TestUsersMe(t *testing.T) {
	e := newTestEcho(t, newTestConfig())
	registered := decode[authBody](t, doJSON(e, http.MethodPost, "/auth/register", testUserBody, nil))

	rec := doJSON(e, http.MethodGet, "/users/me", "", map[string]string{
		echo.HeaderAuthorization: "Bearer " + registered.AccessToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]map[string]any](t, rec)
	assert.Equal(t, registered.User, body["user"])

	for _, header := range []string{"", "Bearer", "Bearer not-a-token", "Basic " + registered.AccessToken} {
		rec := doJSON(e, http.MethodGet, "/users/me", "", map[string]string{echo.HeaderAuthorization: header})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestLocalStrategy(t *testing.T) {
	e := newTestEcho(t, newTestConfig())
	require.Equal(t, http.StatusCreated, doJSON(e, http.MethodPost, "/auth/register", testUserBody, nil).Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/local", nil)
	req.SetBasicAuth("test@example.com", "password123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]map[string]any](t, rec)
	assert.Equal(t, "test@example.com", body["user"]["email"])
	assert.NotContains(t, rec.Body.String(), "$2a$")

	req = httptest.NewRequest(http.MethodGet, "/auth/local", nil)
	req.SetBasicAuth("test@example.com", "wrongpassword")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func basicAuth(e *echo.Echo, email, password string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/auth/local", nil)
	req.SetBasicAuth(email, password)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func TestLocalStrategy_SharesLoginAttemptLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := newTestConfig()
	cfg.RateLimit = &config.RateLimitConfig{Enabled: true, Addr: mr.Addr(), MaxAttempts: 3, Window: time.Minute}
	e := newTestEcho(t, cfg)
	require.Equal(t, http.StatusCreated, doJSON(e, http.MethodPost, "/auth/register", testUserBody, nil).Code)

	wrongLogin := `{"email":"test@example.com","password":"wrongpassword"}`
	for range 3 {
		assert.Equal(t, http.StatusUnauthorized, doJSON(e, http.MethodPost, "/auth/login", wrongLogin, nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doJSON(e, http.MethodPost, "/auth/login", wrongLogin, nil).Code)

	for range 5 {
		assert.Equal(t, http.StatusTooManyRequests, basicAuth(e, "test@example.com", "wrongpassword").Code)
	}
	rec := basicAuth(e, "test@example.com", "password123")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"user"`)

	// A fresh window lets the right password through again.
	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, basicAuth(e, "test@example.com", "password123").Code)
}

func TestLocalStrategy_GuessesCountAgainstLogin(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := newTestConfig()
	cfg.RateLimit = &config.RateLimitConfig{Enabled: true, Addr: mr.Addr(), MaxAttempts: 3, Window: time.Minute}
	e := newTestEcho(t, cfg)
	require.Equal(t, http.StatusCreated, doJSON(e, http.MethodPost, "/auth/register", testUserBody, nil).Code)

	for range 3 {
		assert.Equal(t, http.StatusUnauthorized, basicAuth(e, "test@example.com", "wrongpassword").Code)
	}

	rec := doJSON(e, http.MethodPost, "/auth/login", `{"email":"test@example.com","password":"password123"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEcho(t, newTestConfig())

	assert.Equal(t, http.StatusOK, doJSON(e, http.MethodGet, "/health", "", nil).Code)

	require.Equal(t, http.StatusCreated, doJSON(e, http.MethodPost, "/auth/register", testUserBody, nil).Code)
	rec := doJSON(e, http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `authcore_auth_attempts_total{operation="register",outcome="success"} 1`)
}

func TestBodyLimit(t *testing.T) {
	cfg := newTestConfig()
	cfg.HTTP.MaxRequestBodySize = "1KB"
	e := newTestEcho(t, cfg)

	huge := `{"email":"a@b.co","password":"password123","username":"` + strings.Repeat("x", 2048) + `"}`
	rec := doJSON(e, http.MethodPost, "/auth/register", huge, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
