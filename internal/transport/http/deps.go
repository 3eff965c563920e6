package http

import (
	"github.com/go-auth-service/internal/application/notification"
	"github.com/go-auth-service/internal/domain"
	jwtinfra "github.com/go-auth-service/internal/infrastructure/jwt"
)

// Deps holds the stores and collaborators the router wires into the
// authentication flow. Backends are chosen in main.
type Deps struct {
	Accounts     domain.AccountStore
	BannedTokens domain.BannedTokenStore
	TwoFACodes   domain.TwoFACodeStore
	Hasher       domain.PasswordHasher
	JWTProvider  *jwtinfra.Provider
	Notifier     notification.Service
}
