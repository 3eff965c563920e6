package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-auth-service/internal/application/notification"
	"github.com/go-auth-service/internal/domain"
	jwtinfra "github.com/go-auth-service/internal/infrastructure/jwt"
)

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Requires2FA bool   `json:"requires2FA"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyTwoFARequest struct {
	Email          string `json:"email"`
	LoginAttemptID string `json:"loginAttemptId"`
	TwoFACode      string `json:"2FACode"`
}

// LoginResult carries exactly one of Token (authenticated) or
// LoginAttemptID (a 2FA challenge is pending).
type LoginResult struct {
	Token          string
	LoginAttemptID string
}

func (r LoginResult) Requires2FA() bool { return r.LoginAttemptID != "" }

// TokenCodec issues and checks session tokens.
type TokenCodec interface {
	Sign(email string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type Service interface {
	Signup(ctx context.Context, req SignupRequest) error
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	VerifyTwoFA(ctx context.Context, req VerifyTwoFARequest) (token string, err error)
	Logout(ctx context.Context, token string) error
	// VerifyToken returns the email the token was issued to.
	VerifyToken(ctx context.Context, token string) (string, error)
}

type ServiceDeps struct {
	Accounts     domain.AccountStore
	BannedTokens domain.BannedTokenStore
	TwoFACodes   domain.TwoFACodeStore
	Hasher       domain.PasswordHasher
	Tokens       TokenCodec
	Notifier     notification.Service
}

type service struct {
	accounts     domain.AccountStore
	bannedTokens domain.BannedTokenStore
	twoFACodes   domain.TwoFACodeStore
	hasher       domain.PasswordHasher
	tokens       TokenCodec
	notifier     notification.Service
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts:     deps.Accounts,
		bannedTokens: deps.BannedTokens,
		twoFACodes:   deps.TwoFACodes,
		hasher:       deps.Hasher,
		tokens:       deps.Tokens,
		notifier:     deps.Notifier,
	}
}

func (s *service) Signup(ctx context.Context, req SignupRequest) error {
	email, err := domain.ParseEmail(req.Email)
	if err != nil {
		return fmt.Errorf("signup: %w", domain.ErrInvalidCredentials)
	}
	password, err := domain.ParsePassword(req.Password)
	if err != nil {
		return fmt.Errorf("signup: %w", domain.ErrInvalidCredentials)
	}

	// Cheap existence check before paying for a hash; Add stays authoritative.
	_, err = s.accounts.Get(ctx, email)
	switch {
	case err == nil:
		return fmt.Errorf("signup: %w", domain.ErrUserAlreadyExists)
	case !errors.Is(err, domain.ErrAccountNotFound):
		return unexpected("signup: get account", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return unexpected("signup: hash password", err)
	}
	err = s.accounts.Add(ctx, &domain.Account{Email: email, PasswordHash: hash, Requires2FA: req.Requires2FA})
	switch {
	case errors.Is(err, domain.ErrAccountExists):
		return fmt.Errorf("signup: %w", domain.ErrUserAlreadyExists)
	case err != nil:
		return unexpected("signup: add account", err)
	}
	slog.Info("account created", "requires_2fa", req.Requires2FA)
	return nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	email, err := domain.ParseEmail(req.Email)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	}
	password, err := domain.ParsePassword(req.Password)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	}

	if err := s.accounts.Validate(ctx, email, password); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) || errors.Is(err, domain.ErrPasswordMismatch) {
			return LoginResult{}, fmt.Errorf("login: %w", domain.ErrIncorrectCredentials)
		}
		return LoginResult{}, unexpected("login: validate", err)
	}
	account, err := s.accounts.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return LoginResult{}, fmt.Errorf("login: %w", domain.ErrIncorrectCredentials)
		}
		return LoginResult{}, unexpected("login: get account", err)
	}

	if !account.Requires2FA {
		token, err := s.sign(email)
		if err != nil {
			return LoginResult{}, err
		}
		return LoginResult{Token: token}, nil
	}

	attemptID := domain.NewLoginAttemptID()
	code, err := domain.NewTwoFACode()
	if err != nil {
		return LoginResult{}, unexpected("login: generate 2FA code", err)
	}
	if err := s.twoFACodes.Put(ctx, email, attemptID, code); err != nil {
		return LoginResult{}, unexpected("login: store 2FA code", err)
	}
	if err := s.notifier.SendTwoFACode(ctx, email, code); err != nil {
		return LoginResult{}, unexpected("login: deliver 2FA code", err)
	}
	return LoginResult{LoginAttemptID: attemptID.String()}, nil
}

func (s *service) VerifyTwoFA(ctx context.Context, req VerifyTwoFARequest) (string, error) {
	email, err := domain.ParseEmail(req.Email)
	if err != nil {
		return "", fmt.Errorf("verify 2FA: %w", domain.ErrInvalidCredentials)
	}
	attemptID, err := domain.ParseLoginAttemptID(req.LoginAttemptID)
	if err != nil {
		return "", fmt.Errorf("verify 2FA: %w", domain.ErrInvalidCredentials)
	}
	code, err := domain.ParseTwoFACode(req.TwoFACode)
	if err != nil {
		return "", fmt.Errorf("verify 2FA: %w", domain.ErrInvalidCredentials)
	}

	storedID, storedCode, err := s.twoFACodes.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrLoginAttemptIDNotFound) {
			return "", fmt.Errorf("verify 2FA: %w", domain.ErrIncorrectCredentials)
		}
		return "", unexpected("verify 2FA: get pending", err)
	}
	idOK := subtle.ConstantTimeCompare([]byte(storedID.String()), []byte(attemptID.String())) == 1
	codeOK := subtle.ConstantTimeCompare([]byte(storedCode.String()), []byte(code.String())) == 1
	if !idOK || !codeOK {
		return "", fmt.Errorf("verify 2FA: %w", domain.ErrIncorrectCredentials)
	}

	// Consume is the single-use gate: of several concurrent requests holding
	// the same pair only one gets past it.
	if err := s.twoFACodes.Consume(ctx, email, attemptID, code); err != nil {
		if errors.Is(err, domain.ErrLoginAttemptIDNotFound) {
			return "", fmt.Errorf("verify 2FA: %w", domain.ErrIncorrectCredentials)
		}
		return "", unexpected("verify 2FA: consume pending", err)
	}
	return s.sign(email)
}

func (s *service) VerifyToken(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", fmt.Errorf("verify token: %w", domain.ErrInvalidToken)
	}
	banned, err := s.bannedTokens.IsBanned(ctx, token)
	if err != nil {
		return "", unexpected("verify token: check revocation", err)
	}
	if banned {
		return "", fmt.Errorf("verify token: %w", domain.ErrInvalidToken)
	}
	return claims.Email(), nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("logout: %w", domain.ErrMissingToken)
	}
	if _, err := s.VerifyToken(ctx, token); err != nil {
		return err
	}
	if err := s.bannedTokens.Ban(ctx, token); err != nil {
		return unexpected("logout: ban token", err)
	}
	return nil
}

func (s *service) sign(email domain.Email) (string, error) {
	token, err := s.tokens.Sign(email.String())
	if err != nil {
		return "", unexpected("sign token", err)
	}
	return token, nil
}

// unexpected tags err as domain.ErrUnexpected unless a store already did.
func unexpected(op string, err error) error {
	if errors.Is(err, domain.ErrUnexpected) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnexpected, err)
}
