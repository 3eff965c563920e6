package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-auth-service/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeKeys generates a fresh RSA key pair and writes it to PEM files under
// t.TempDir().
func writeKeys(t *testing.T) (privPath, pubPath string, key *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath = filepath.Join(dir, "private.pem")
	pubPath = filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))
	return privPath, pubPath, key
}

func newTestProvider(t *testing.T) (*Provider, *rsa.PrivateKey) {
	t.Helper()
	privPath, pubPath, key := writeKeys(t)
	p, err := NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTTTL:            10 * time.Minute,
	})
	require.NoError(t, err)
	return p, key
}

func TestProvider_SignVerify(t *testing.T) {
	p, _ := newTestProvider(t)

	tok, err := p.Sign("a@b.com")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email())
	assert.Len(t, claims.ID, 26, "jti is a ULID")
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
	assert.Equal(t, 10*time.Minute, p.TTL())
}

func TestProvider_Sign_UniquePerCall(t *testing.T) {
	p, _ := newTestProvider(t)

	a, err := p.Sign("a@b.com")
	require.NoError(t, err)
	b, err := p.Sign("a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestProvider_Verify_Expired(t *testing.T) {
	p, _ := newTestProvider(t)
	tok, err := p.Sign("a@b.com")
	require.NoError(t, err)

	p.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestProvider_Verify_WrongKey(t *testing.T) {
	p, _ := newTestProvider(t)
	other, _ := newTestProvider(t)

	tok, err := other.Sign("a@b.com")
	require.NoError(t, err)
	_, err = p.Verify(tok)
	assert.Error(t, err)
}

func TestProvider_Verify_RejectsHMAC(t *testing.T) {
	p, _ := newTestProvider(t)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "a@b.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.Error(t, err)
}

func TestProvider_Verify_RequiresExpiryAndSubject(t *testing.T) {
	p, key := newTestProvider(t)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{Subject: "a@b.com"}).SignedString(key)
	require.NoError(t, err)
	_, err = p.Verify(noExp)
	assert.Error(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(key)
	require.NoError(t, err)
	_, err = p.Verify(noSub)
	assert.Error(t, err)
}

func TestNewProvider_MissingKey(t *testing.T) {
	_, err := NewProvider(&config.Config{
		JWTPrivateKeyPath: filepath.Join(t.TempDir(), "missing.pem"),
		JWTTTL:            time.Minute,
	})
	assert.ErrorContains(t, err, "read private key")
}
