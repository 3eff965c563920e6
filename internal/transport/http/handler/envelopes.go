package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-auth-service/internal/transport/http/middleware"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TwoFactorEnvelope is returned with 206 when login needs a second factor.
type TwoFactorEnvelope struct {
	Message        string `json:"message"`
	LoginAttemptID string `json:"loginAttemptId"`
}

// MeEnvelope wraps the authenticated account.
type MeEnvelope struct {
	Email string `json:"email"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError writes the public status and message for a flow error.
func httpError(w http.ResponseWriter, err error) {
	status, msg := middleware.ErrorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "err", err)
	}
	writeError(w, status, msg)
}
