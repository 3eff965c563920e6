package memory

import (
	"context"
	"sync"
	"time"

	"github.com/go-auth-service/internal/domain"
)

// BannedTokenStore is a set of revoked tokens. Each entry lives for ttl and is
// dropped lazily on lookup or by Sweep.
type BannedTokenStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

var _ domain.BannedTokenStore = (*BannedTokenStore)(nil)

func NewBannedTokenStore(ttl time.Duration) *BannedTokenStore {
	return &BannedTokenStore{
		tokens: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *BannedTokenStore) Ban(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = s.now().Add(s.ttl)
	return nil
}

func (s *BannedTokenStore) IsBanned(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[token]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.tokens, token)
		return false, nil
	}
	return true, nil
}

// Sweep removes expired entries.
func (s *BannedTokenStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for token, exp := range s.tokens {
		if !now.Before(exp) {
			delete(s.tokens, token)
		}
	}
}
