package domain

import "errors"

// Store-level sentinel errors. Backends wrap these so the auth flow can
// discriminate outcomes with errors.Is without knowing which backend is in use.
var (
	ErrAccountExists          = errors.New("account already exists")
	ErrAccountNotFound        = errors.New("account not found")
	ErrPasswordMismatch       = errors.New("password does not match")
	ErrLoginAttemptIDNotFound = errors.New("login attempt id not found")
	ErrUnexpected             = errors.New("unexpected error")
)

// Validation errors returned by the value-object parsers.
var (
	ErrInvalidEmail          = errors.New("invalid email")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrInvalidLoginAttemptID = errors.New("invalid login attempt id")
	ErrInvalidTwoFACode      = errors.New("invalid 2FA code")
)

// Flow-level outcomes returned by the authentication service. Store signals
// are collapsed into these so callers never learn which check failed.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrMissingToken         = errors.New("missing auth token")
	ErrInvalidToken         = errors.New("invalid auth token")
)
