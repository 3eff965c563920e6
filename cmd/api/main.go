package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-auth-service/internal/config"
	jwtinfra "github.com/go-auth-service/internal/infrastructure/jwt"
	"github.com/go-auth-service/internal/infrastructure/password"
	transporthttp "github.com/go-auth-service/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	// Validate has bounded the Argon2 costs, so these conversions are exact.
	hasher, err := password.NewArgon2(password.Params{
		Memory:      uint32(cfg.Argon2MemoryKB),
		Time:        uint32(cfg.Argon2Time),
		Parallelism: uint8(cfg.Argon2Parallelism),
		SaltLength:  password.DefaultParams().SaltLength,
		KeyLength:   password.DefaultParams().KeyLength,
	})
	if err != nil {
		log.Fatalf("argon2: %v", err)
	}
	pool := password.NewPool(hasher, cfg.HashWorkers)
	defer pool.Close()

	stores, closeStores, err := openStores(ctx, cfg, pool)
	if err != nil {
		log.Fatalf("stores: %v", err)
	}
	defer closeStores()

	notifier, err := newNotifier(ctx, cfg)
	if err != nil {
		log.Fatalf("notifier: %v", err)
	}

	deps := &transporthttp.Deps{
		Accounts:     stores.accounts,
		BannedTokens: stores.bannedTokens,
		TwoFACodes:   stores.twoFACodes,
		Hasher:       pool,
		JWTProvider:  jwtProvider,
		Notifier:     notifier,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, accounts=%s, tokens=%s)",
			cfg.AppPort, cfg.AppEnv, cfg.AccountStore, cfg.TokenStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
		os.Exit(1)
	}
	log.Println("Server stopped")
}
