package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-auth-service/internal/config"
	"github.com/go-auth-service/internal/domain"
	"github.com/go-auth-service/internal/infrastructure/memory"
	redisinfra "github.com/go-auth-service/internal/infrastructure/redis"
	"github.com/go-auth-service/internal/infrastructure/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopHasher struct{}

func (nopHasher) Hash(context.Context, domain.Password) (string, error) { return "h", nil }
func (nopHasher) Verify(context.Context, string, domain.Password) error { return nil }

func baseConfig() *config.Config {
	return &config.Config{
		AccountStore: "memory",
		TokenStore:   "memory",
		JWTTTL:       10 * time.Minute,
		TwoFACodeTTL: 10 * time.Minute,
		Notifier:     "log",
	}
}

func TestOpenStores_Memory(t *testing.T) {
	s, closeFn, err := openStores(context.Background(), baseConfig(), nopHasher{})
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &memory.AccountStore{}, s.accounts)
	assert.IsType(t, &memory.BannedTokenStore{}, s.bannedTokens)
	assert.IsType(t, &memory.TwoFACodeStore{}, s.twoFACodes)
}

func TestOpenStores_SQLiteAndRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.AccountStore = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "auth.db")
	cfg.TokenStore = "redis"
	cfg.RedisAddr = mr.Addr()

	s, closeFn, err := openStores(context.Background(), cfg, nopHasher{})
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &sqlite.AccountStore{}, s.accounts)
	assert.IsType(t, &redisinfra.BannedTokenStore{}, s.bannedTokens)
	assert.IsType(t, &redisinfra.TwoFACodeStore{}, s.twoFACodes)
}

func TestOpenStores_Unknown(t *testing.T) {
	cfg := baseConfig()
	cfg.AccountStore = "postgres"
	_, _, err := openStores(context.Background(), cfg, nopHasher{})
	assert.ErrorContains(t, err, "ACCOUNT_STORE")

	cfg = baseConfig()
	cfg.TokenStore = "memcached"
	_, _, err = openStores(context.Background(), cfg, nopHasher{})
	assert.ErrorContains(t, err, "TOKEN_STORE")
}

func TestNewNotifier(t *testing.T) {
	cfg := baseConfig()
	n, err := newNotifier(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, n)

	cfg.Notifier = "smtp"
	_, err = newNotifier(context.Background(), cfg)
	assert.NoError(t, err)

	cfg.Notifier = "sns"
	_, err = newNotifier(context.Background(), cfg)
	assert.ErrorContains(t, err, "SNS_TOPIC_ARN")

	cfg.Notifier = "pigeon"
	_, err = newNotifier(context.Background(), cfg)
	assert.Error(t, err)
}
