package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-auth-service/internal/domain"
)

// AccountStore keeps accounts in a map guarded by a RWMutex. The lock is
// never held across password verification.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[domain.Email]domain.Account
	hasher   domain.PasswordHasher
}

var _ domain.AccountStore = (*AccountStore)(nil)

func NewAccountStore(hasher domain.PasswordHasher) *AccountStore {
	return &AccountStore{
		accounts: make(map[domain.Email]domain.Account),
		hasher:   hasher,
	}
}

func (s *AccountStore) Add(_ context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.Email]; ok {
		return fmt.Errorf("add %s: %w", a.Email, domain.ErrAccountExists)
	}
	s.accounts[a.Email] = *a
	return nil
}

func (s *AccountStore) Get(_ context.Context, email domain.Email) (*domain.Account, error) {
	s.mu.RLock()
	a, ok := s.accounts[email]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get %s: %w", email, domain.ErrAccountNotFound)
	}
	return &a, nil
}

func (s *AccountStore) Validate(ctx context.Context, email domain.Email, password domain.Password) error {
	a, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	return s.hasher.Verify(ctx, a.PasswordHash, password)
}

// Len reports the number of stored accounts.
func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
