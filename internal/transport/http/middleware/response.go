package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-auth-service/internal/domain"
)

// ErrorStatus maps a flow error to its HTTP status and public message. The
// message never says which check failed.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusBadRequest, "Missing auth token"
	case errors.Is(err, domain.ErrIncorrectCredentials):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid auth token"
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusConflict, "User already exists"
	default:
		return http.StatusInternalServerError, "Unexpected error"
	}
}

// writeJSONError writes a JSON-encoded error response with the correct Content-Type.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
