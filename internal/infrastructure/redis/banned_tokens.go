package redisinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/go-auth-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// BannedTokenKeyPrefix namespaces revoked tokens in a shared Redis.
const BannedTokenKeyPrefix = "banned_token:"

// BannedTokenStore stores one key per revoked token with a TTL equal to the
// token validity window, so the set cleans itself up.
type BannedTokenStore struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

var _ domain.BannedTokenStore = (*BannedTokenStore)(nil)

func NewBannedTokenStore(client redis.UniversalClient, ttl time.Duration) *BannedTokenStore {
	return &BannedTokenStore{redis: client, ttl: ttl}
}

func bannedTokenKey(token string) string { return BannedTokenKeyPrefix + token }

func (s *BannedTokenStore) Ban(ctx context.Context, token string) error {
	if err := s.redis.Set(ctx, bannedTokenKey(token), "true", s.ttl).Err(); err != nil {
		return fmt.Errorf("ban token: %w: %v", domain.ErrUnexpected, err)
	}
	return nil
}

func (s *BannedTokenStore) IsBanned(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Exists(ctx, bannedTokenKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("check banned token: %w: %v", domain.ErrUnexpected, err)
	}
	return n > 0, nil
}
