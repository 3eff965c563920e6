package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-auth-service/internal/config"
	"github.com/go-auth-service/internal/domain"
	jwtinfra "github.com/go-auth-service/internal/infrastructure/jwt"
	"github.com/go-auth-service/internal/infrastructure/memory"
	"github.com/go-auth-service/internal/infrastructure/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedCodes struct {
	mu   sync.Mutex
	last map[string]string
}

func (c *capturedCodes) SendTwoFACode(_ context.Context, email domain.Email, code domain.TwoFACode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[email.String()] = code.String()
	return nil
}

func (c *capturedCodes) code(email string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last[email]
}

func newTestJWTProvider(t *testing.T, cfg *config.Config) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	cfg.JWTPrivateKeyPath = filepath.Join(dir, "private.pem")
	cfg.JWTPublicKeyPath = filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(cfg.JWTPrivateKeyPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(cfg.JWTPublicKeyPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(cfg)
	require.NoError(t, err)
	return p
}

func newTestServer(t *testing.T) (http.Handler, *capturedCodes) {
	t.Helper()
	cfg := &config.Config{
		AppEnv:         "test",
		JWTTTL:         10 * time.Minute,
		JWTCookieName:  "jwt",
		AllowedOrigins: []string{"*"},
	}
	provider := newTestJWTProvider(t, cfg)

	hasher, err := password.NewArgon2(password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)
	pool := password.NewPool(hasher, 2)
	t.Cleanup(pool.Close)

	codes := &capturedCodes{last: map[string]string{}}
	return NewRouter(cfg, &Deps{
		Accounts:     memory.NewAccountStore(pool),
		BannedTokens: memory.NewBannedTokenStore(cfg.JWTTTL),
		TwoFACodes:   memory.NewTwoFACodeStore(10 * time.Minute),
		Hasher:       pool,
		JWTProvider:  provider,
		Notifier:     codes,
	}), codes
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func jwtCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "jwt" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no jwt cookie in response")
	return nil
}

func TestRouter_HealthCheck(t *testing.T) {
	h, _ := newTestServer(t)
	rr := do(t, h, http.MethodGet, "/health-check/ping", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())
}

func TestRouter_PlainLoginLifecycle(t *testing.T) {
	h, _ := newTestServer(t)
	creds := map[string]interface{}{"email": "u@example.com", "password": "password123", "requires2FA": false}

	assert.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/signup", creds).Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/signup", creds).Code)

	rr := do(t, h, http.MethodPost, "/login", creds)
	require.Equal(t, http.StatusOK, rr.Code)
	cookie := jwtCookie(t, rr)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/verify-token", map[string]string{"token": cookie.Value}).Code)

	rr = do(t, h, http.MethodGet, "/me", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"email":"u@example.com"}`, rr.Body.String())

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/logout", nil, cookie).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/logout", nil, cookie).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/verify-token", map[string]string{"token": cookie.Value}).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/me", nil, cookie).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/logout", nil).Code)
}

func TestRouter_TwoFALifecycle(t *testing.T) {
	h, codes := newTestServer(t)
	creds := map[string]interface{}{"email": "u@example.com", "password": "password123", "requires2FA": true}
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/signup", creds).Code)

	rr := do(t, h, http.MethodPost, "/login", creds)
	require.Equal(t, http.StatusPartialContent, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
	var challenge struct {
		Message        string `json:"message"`
		LoginAttemptID string `json:"loginAttemptId"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&challenge))
	assert.Equal(t, "2FA required", challenge.Message)

	code := codes.code("u@example.com")
	wrong := "000000"
	if code == wrong {
		wrong = "999999"
	}
	verify := func(c string) *httptest.ResponseRecorder {
		return do(t, h, http.MethodPost, "/verify-2fa", map[string]string{
			"email": "u@example.com", "loginAttemptId": challenge.LoginAttemptID, "2FACode": c,
		})
	}

	assert.Equal(t, http.StatusUnauthorized, verify(wrong).Code)
	rr = verify(code)
	require.Equal(t, http.StatusOK, rr.Code)
	cookie := jwtCookie(t, rr)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/me", nil, cookie).Code)
	assert.Equal(t, http.StatusUnauthorized, verify(code).Code)
}

func TestRouter_InputErrors(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodPost, "/signup", map[string]interface{}{"email": "no-at", "password": "password123", "requires2FA": false})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/signup", map[string]interface{}{"email": "", "password": "password123", "requires2FA": false})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{"))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, h, http.MethodPost, "/login", map[string]string{"email": "ghost@example.com", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rr.Body.String())
}

func TestRouter_MissingFieldsAreUnprocessable(t *testing.T) {
	h, _ := newTestServer(t)

	cases := []struct {
		path string
		body map[string]interface{}
	}{
		{"/signup", map[string]interface{}{"email": "u@example.com", "password": "password123"}},
		{"/signup", map[string]interface{}{"password": "password123", "requires2FA": true}},
		{"/login", map[string]interface{}{"email": "u@example.com"}},
		{"/verify-2fa", map[string]interface{}{"email": "u@example.com", "2FACode": "123456"}},
		{"/verify-token", map[string]interface{}{}},
	}
	for _, tc := range cases {
		rr := do(t, h, http.MethodPost, tc.path, tc.body)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, "%s %v", tc.path, tc.body)
	}

	// the signup without requires2FA must not have created an account
	rr := do(t, h, http.MethodPost, "/login", map[string]string{"email": "u@example.com", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
