package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const EmailKey contextKey = "email"

// TokenVerifier checks a session token, including revocation, and returns
// the email it was issued to.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// Auth returns middleware that validates the session token and injects the
// account email into context. The token is read from the Bearer header,
// falling back to the named cookie.
func Auth(verifier TokenVerifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := TokenFromRequest(r, cookieName)
			if tokenStr == "" {
				writeJSONError(w, http.StatusBadRequest, "Missing auth token")
				return
			}
			email, err := verifier.VerifyToken(r.Context(), tokenStr)
			if err != nil {
				status, msg := ErrorStatus(err)
				if status == http.StatusInternalServerError {
					slog.Error("verify token", "err", err)
				}
				writeJSONError(w, status, msg)
				return
			}
			ctx := context.WithValue(r.Context(), EmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest returns the Bearer token, or the cookie value when no
// Authorization header is present.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// EmailFromContext extracts the authenticated email from the request context.
func EmailFromContext(ctx context.Context) (string, bool) {
	e, ok := ctx.Value(EmailKey).(string)
	return e, ok && e != ""
}
