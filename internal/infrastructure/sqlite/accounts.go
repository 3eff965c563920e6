package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-auth-service/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	email TEXT PRIMARY KEY NOT NULL,
	password_hash TEXT NOT NULL,
	requires_2fa BOOLEAN NOT NULL DEFAULT FALSE
)`

type accountRow struct {
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Requires2FA  bool   `db:"requires_2fa"`
}

// AccountStore persists accounts in a SQLite table keyed by email. The
// database enforces uniqueness, so concurrent signups for one email cannot
// both succeed.
type AccountStore struct {
	db     *sqlx.DB
	hasher domain.PasswordHasher
}

var _ domain.AccountStore = (*AccountStore)(nil)

// Open connects to the database at path and creates the accounts table if
// it does not exist.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create accounts table: %w", err)
	}
	return db, nil
}

func NewAccountStore(db *sqlx.DB, hasher domain.PasswordHasher) *AccountStore {
	return &AccountStore{db: db, hasher: hasher}
}

func (s *AccountStore) Add(ctx context.Context, a *domain.Account) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (email, password_hash, requires_2fa) VALUES (?, ?, ?) ON CONFLICT (email) DO NOTHING`,
		a.Email.String(), a.PasswordHash, a.Requires2FA)
	if err != nil {
		return fmt.Errorf("insert account: %w: %v", domain.ErrUnexpected, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert account: %w: %v", domain.ErrUnexpected, err)
	}
	if n == 0 {
		return fmt.Errorf("insert account %s: %w", a.Email, domain.ErrAccountExists)
	}
	return nil
}

// Get returns the account with its stored password hash.
func (s *AccountStore) Get(ctx context.Context, email domain.Email) (*domain.Account, error) {
	var row accountRow
	err := s.db.GetContext(ctx, &row, `SELECT email, password_hash, requires_2fa FROM accounts WHERE email = ?`, email.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", email, domain.ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select account: %w: %v", domain.ErrUnexpected, err)
	}
	stored, err := domain.ParseEmail(row.Email)
	if err != nil {
		return nil, fmt.Errorf("decode account: %w: %v", domain.ErrUnexpected, err)
	}
	return &domain.Account{Email: stored, PasswordHash: row.PasswordHash, Requires2FA: row.Requires2FA}, nil
}

func (s *AccountStore) Validate(ctx context.Context, email domain.Email, password domain.Password) error {
	a, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	return s.hasher.Verify(ctx, a.PasswordHash, password)
}
