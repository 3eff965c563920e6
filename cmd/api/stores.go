package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-auth-service/internal/application/notification"
	"github.com/go-auth-service/internal/config"
	"github.com/go-auth-service/internal/domain"
	"github.com/go-auth-service/internal/infrastructure/dynamo"
	"github.com/go-auth-service/internal/infrastructure/memory"
	redisinfra "github.com/go-auth-service/internal/infrastructure/redis"
	"github.com/go-auth-service/internal/infrastructure/smtp"
	"github.com/go-auth-service/internal/infrastructure/sns"
	"github.com/go-auth-service/internal/infrastructure/sqlite"
)

type stores struct {
	accounts     domain.AccountStore
	bannedTokens domain.BannedTokenStore
	twoFACodes   domain.TwoFACodeStore
}

// openStores builds the account and token stores selected by ACCOUNT_STORE
// and TOKEN_STORE. The returned func releases their connections.
func openStores(ctx context.Context, cfg *config.Config, hasher domain.PasswordHasher) (*stores, func(), error) {
	var (
		s       stores
		closers []func()
		ddb     *dynamodb.Client
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	dynamoClient := func() (*dynamodb.Client, error) {
		if ddb != nil {
			return ddb, nil
		}
		c, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		// Creates the tables if they don't exist.
		dynamo.Bootstrap(ctx, c, cfg.DynamoTables)
		ddb = c
		return c, nil
	}

	switch cfg.AccountStore {
	case "memory":
		s.accounts = memory.NewAccountStore(hasher)
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = db.Close() })
		s.accounts = sqlite.NewAccountStore(db, hasher)
	case "dynamo":
		c, err := dynamoClient()
		if err != nil {
			return nil, nil, err
		}
		s.accounts = dynamo.NewAccountStore(c, cfg.DynamoTables.Accounts, hasher)
	default:
		return nil, nil, fmt.Errorf("unknown ACCOUNT_STORE %q", cfg.AccountStore)
	}

	switch cfg.TokenStore {
	case "memory":
		banned := memory.NewBannedTokenStore(cfg.JWTTTL)
		done := make(chan struct{})
		go sweep(banned, cfg.JWTTTL, done)
		closers = append(closers, func() { close(done) })
		s.bannedTokens = banned
		s.twoFACodes = memory.NewTwoFACodeStore(cfg.TwoFACodeTTL)
	case "redis":
		rdb, err := redisinfra.NewClient(ctx, cfg)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		s.bannedTokens = redisinfra.NewBannedTokenStore(rdb, cfg.JWTTTL)
		s.twoFACodes = redisinfra.NewTwoFACodeStore(rdb, cfg.TwoFACodeTTL)
	case "dynamo":
		c, err := dynamoClient()
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		s.bannedTokens = dynamo.NewBannedTokenStore(c, cfg.DynamoTables.BannedTokens, cfg.JWTTTL)
		s.twoFACodes = dynamo.NewTwoFACodeStore(c, cfg.DynamoTables.TwoFACodes, cfg.TwoFACodeTTL)
	default:
		closeAll()
		return nil, nil, fmt.Errorf("unknown TOKEN_STORE %q", cfg.TokenStore)
	}

	return &s, closeAll, nil
}

// sweep drops expired revocations so the in-memory set stays bounded.
func sweep(s *memory.BannedTokenStore, every time.Duration, done <-chan struct{}) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Sweep()
		case <-done:
			return
		}
	}
}

func newNotifier(ctx context.Context, cfg *config.Config) (notification.Service, error) {
	switch cfg.Notifier {
	case "log":
		if cfg.AppEnv == "production" {
			slog.Warn("NOTIFIER=log writes 2FA codes to the log")
		}
		return notification.NewService(notification.LogSender{}, cfg.TwoFACodeTTL), nil
	case "smtp":
		return notification.NewService(smtp.NewMailer(cfg), cfg.TwoFACodeTTL), nil
	case "sns":
		p, err := sns.NewTopicPublisher(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return notification.NewService(p, cfg.TwoFACodeTTL), nil
	default:
		return nil, fmt.Errorf("unknown NOTIFIER %q", cfg.Notifier)
	}
}
