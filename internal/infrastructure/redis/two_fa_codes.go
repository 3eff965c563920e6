package redisinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-auth-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	// TwoFACodeKeyPrefix namespaces pending challenges in a shared Redis.
	TwoFACodeKeyPrefix = "two_fa_code:"

	consumeMaxRetries = 4
)

// TwoFACodeStore keeps each pending challenge as a JSON pair
// ["<login attempt id>","<code>"] under two_fa_code:<email>, expiring after ttl.
type TwoFACodeStore struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

var _ domain.TwoFACodeStore = (*TwoFACodeStore)(nil)

func NewTwoFACodeStore(client redis.UniversalClient, ttl time.Duration) *TwoFACodeStore {
	return &TwoFACodeStore{redis: client, ttl: ttl}
}

func twoFACodeKey(email domain.Email) string { return TwoFACodeKeyPrefix + email.String() }

func (s *TwoFACodeStore) Put(ctx context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) error {
	data, err := json.Marshal([2]string{id.String(), code.String()})
	if err != nil {
		return fmt.Errorf("encode 2FA code: %w: %v", domain.ErrUnexpected, err)
	}
	if err := s.redis.Set(ctx, twoFACodeKey(email), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("put 2FA code: %w: %v", domain.ErrUnexpected, err)
	}
	return nil
}

func (s *TwoFACodeStore) Remove(ctx context.Context, email domain.Email) error {
	if err := s.redis.Del(ctx, twoFACodeKey(email)).Err(); err != nil {
		return fmt.Errorf("remove 2FA code: %w: %v", domain.ErrUnexpected, err)
	}
	return nil
}

func (s *TwoFACodeStore) Get(ctx context.Context, email domain.Email) (domain.LoginAttemptID, domain.TwoFACode, error) {
	data, err := s.redis.Get(ctx, twoFACodeKey(email)).Bytes()
	if err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, lookupErr(err)
	}
	return decodePending(data)
}

// Consume deletes the entry under WATCH so that a concurrent Put or Consume
// between the read and the delete aborts the transaction. An aborted
// transaction is retried; the retry then sees the changed or missing entry.
func (s *TwoFACodeStore) Consume(ctx context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) error {
	key := twoFACodeKey(email)
	for i := 0; i < consumeMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return lookupErr(err)
			}
			gotID, gotCode, err := decodePending(data)
			if err != nil {
				return err
			}
			if gotID != id || gotCode != code {
				return fmt.Errorf("consume 2FA code: %w", domain.ErrLoginAttemptIDNotFound)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, domain.ErrLoginAttemptIDNotFound) && !errors.Is(err, domain.ErrUnexpected) {
			return fmt.Errorf("consume 2FA code: %w: %v", domain.ErrUnexpected, err)
		}
		return err
	}
	return fmt.Errorf("consume 2FA code: %w", domain.ErrLoginAttemptIDNotFound)
}

func lookupErr(err error) error {
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("get 2FA code: %w", domain.ErrLoginAttemptIDNotFound)
	}
	return fmt.Errorf("get 2FA code: %w: %v", domain.ErrUnexpected, err)
}

func decodePending(data []byte) (domain.LoginAttemptID, domain.TwoFACode, error) {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("decode 2FA code: %w: %v", domain.ErrUnexpected, err)
	}
	id, err := domain.ParseLoginAttemptID(pair[0])
	if err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("decode 2FA code: %w: %v", domain.ErrUnexpected, err)
	}
	code, err := domain.ParseTwoFACode(pair[1])
	if err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("decode 2FA code: %w: %v", domain.ErrUnexpected, err)
	}
	return id, code, nil
}
