package domain

import "context"

// AccountStore persists accounts keyed by email.
type AccountStore interface {
	// Add inserts a new account, failing with ErrAccountExists when the email
	// is already registered.
	Add(ctx context.Context, a *Account) error
	Get(ctx context.Context, email Email) (*Account, error)
	// Validate returns ErrAccountNotFound or ErrPasswordMismatch. Callers
	// must not expose the difference.
	Validate(ctx context.Context, email Email, password Password) error
}

// BannedTokenStore is the set of revoked session tokens.
type BannedTokenStore interface {
	Ban(ctx context.Context, token string) error
	IsBanned(ctx context.Context, token string) (bool, error)
}

// TwoFACodeStore holds at most one pending challenge per email.
type TwoFACodeStore interface {
	// Put replaces any existing challenge for email.
	Put(ctx context.Context, email Email, id LoginAttemptID, code TwoFACode) error
	Remove(ctx context.Context, email Email) error
	Get(ctx context.Context, email Email) (LoginAttemptID, TwoFACode, error)
	// Consume deletes the challenge only if it still holds exactly (id, code).
	// At most one of several concurrent callers succeeds; the rest get
	// ErrLoginAttemptIDNotFound.
	Consume(ctx context.Context, email Email, id LoginAttemptID, code TwoFACode) error
}

// PasswordHasher computes and checks one-way password hashes.
type PasswordHasher interface {
	Hash(ctx context.Context, password Password) (string, error)
	// Verify returns ErrPasswordMismatch when password does not match hash.
	Verify(ctx context.Context, hash string, password Password) error
}
