package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-auth-service/internal/domain"
)

type pendingEntry struct {
	id        domain.LoginAttemptID
	code      domain.TwoFACode
	expiresAt time.Time
}

// TwoFACodeStore holds one pending challenge per email with a bounded
// lifetime.
type TwoFACodeStore struct {
	mu      sync.Mutex
	pending map[domain.Email]pendingEntry
	ttl     time.Duration
	now     func() time.Time
}

var _ domain.TwoFACodeStore = (*TwoFACodeStore)(nil)

func NewTwoFACodeStore(ttl time.Duration) *TwoFACodeStore {
	return &TwoFACodeStore{
		pending: make(map[domain.Email]pendingEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *TwoFACodeStore) Put(_ context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[email] = pendingEntry{id: id, code: code, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *TwoFACodeStore) Remove(_ context.Context, email domain.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, email)
	return nil
}

func (s *TwoFACodeStore) Get(_ context.Context, email domain.Email) (domain.LoginAttemptID, domain.TwoFACode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(email)
	if !ok {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("get %s: %w", email, domain.ErrLoginAttemptIDNotFound)
	}
	return e.id, e.code, nil
}

func (s *TwoFACodeStore) Consume(_ context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(email)
	if !ok || e.id != id || e.code != code {
		return fmt.Errorf("consume %s: %w", email, domain.ErrLoginAttemptIDNotFound)
	}
	delete(s.pending, email)
	return nil
}

// lookup must be called with mu held.
func (s *TwoFACodeStore) lookup(email domain.Email) (pendingEntry, bool) {
	e, ok := s.pending[email]
	if !ok {
		return pendingEntry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.pending, email)
		return pendingEntry{}, false
	}
	return e, true
}
