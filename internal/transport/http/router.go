package http

import (
	"net/http"

	"github.com/go-auth-service/internal/application/auth"
	"github.com/go-auth-service/internal/config"
	"github.com/go-auth-service/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-service/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // the session token travels in a cookie
		MaxAge:           300,
	}))

	authSvc := auth.NewService(auth.ServiceDeps{
		Accounts:     deps.Accounts,
		BannedTokens: deps.BannedTokens,
		TwoFACodes:   deps.TwoFACodes,
		Hasher:       deps.Hasher,
		Tokens:       deps.JWTProvider,
		Notifier:     deps.Notifier,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, handler.CookieConfig{
		Name:   cfg.JWTCookieName,
		TTL:    deps.JWTProvider.TTL(),
		Secure: cfg.AppEnv == "production",
	})

	// ── Public routes ────────────────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.Post("/signup", authH.Signup)
	r.Post("/login", authH.Login)
	r.Post("/verify-2fa", authH.VerifyTwoFA)
	r.Post("/logout", authH.Logout)
	r.Post("/verify-token", authH.VerifyToken)

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Auth(authSvc, cfg.JWTCookieName))
		r.Get("/me", authH.Me)
	})

	return r
}
