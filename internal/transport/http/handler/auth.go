package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-auth-service/internal/application/auth"
	"github.com/go-auth-service/internal/pkg/validate"
	"github.com/go-auth-service/internal/transport/http/middleware"
)

// Request bodies use pointers so an absent field is told apart from an
// empty one: absent is 422, empty goes on to the flow and is 400.
type signupBody struct {
	Email       *string `json:"email" validate:"required"`
	Password    *string `json:"password" validate:"required"`
	Requires2FA *bool   `json:"requires2FA" validate:"required"`
}

type loginBody struct {
	Email    *string `json:"email" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

type verifyTwoFABody struct {
	Email          *string `json:"email" validate:"required"`
	LoginAttemptID *string `json:"loginAttemptId" validate:"required"`
	TwoFACode      *string `json:"2FACode" validate:"required"`
}

type verifyTokenBody struct {
	Token *string `json:"token" validate:"required"`
}

// CookieConfig describes the cookie that carries the session token.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// AuthHandler handles signup, login, 2FA, logout and token checks.
type AuthHandler struct {
	svc    auth.Service
	cookie CookieConfig
}

func NewAuthHandler(svc auth.Service, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body signupBody
	if !decode(w, r, &body) {
		return
	}
	req := auth.SignupRequest{Email: *body.Email, Password: *body.Password, Requires2FA: *body.Requires2FA}
	if err := h.svc.Signup(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "User created successfully!"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decode(w, r, &body) {
		return
	}
	res, err := h.svc.Login(r.Context(), auth.LoginRequest{Email: *body.Email, Password: *body.Password})
	if err != nil {
		httpError(w, err)
		return
	}
	if res.Requires2FA() {
		writeJSON(w, http.StatusPartialContent, TwoFactorEnvelope{
			Message:        "2FA required",
			LoginAttemptID: res.LoginAttemptID,
		})
		return
	}
	h.setCookie(w, res.Token)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Login successful"})
}

func (h *AuthHandler) VerifyTwoFA(w http.ResponseWriter, r *http.Request) {
	var body verifyTwoFABody
	if !decode(w, r, &body) {
		return
	}
	token, err := h.svc.VerifyTwoFA(r.Context(), auth.VerifyTwoFARequest{
		Email:          *body.Email,
		LoginAttemptID: *body.LoginAttemptID,
		TwoFACode:      *body.TwoFACode,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	h.setCookie(w, token)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Login successful"})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(h.cookie.Name); err == nil {
		token = c.Value
	}
	if err := h.svc.Logout(r.Context(), token); err != nil {
		httpError(w, err)
		return
	}
	h.clearCookie(w)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Logged out"})
}

func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var body verifyTokenBody
	if !decode(w, r, &body) {
		return
	}
	if _, err := h.svc.VerifyToken(r.Context(), *body.Token); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Token is valid"})
}

// Me reports the account behind the request's session token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid auth token")
		return
	}
	writeJSON(w, http.StatusOK, MeEnvelope{Email: email})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// decode reads a JSON body into v and checks its required fields. Both
// undecodable bodies and missing fields are 422; malformed values are left
// to the flow, which reports them as invalid credentials.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}
