package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-service/internal/domain"
)

const twoFASubject = "Your verification code"

// Sender delivers a message to an email address over some channel
// (SMTP, an SNS topic, the log in development).
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service delivers out-of-band messages to account holders.
type Service interface {
	SendTwoFACode(ctx context.Context, email domain.Email, code domain.TwoFACode) error
}

type service struct {
	sender  Sender
	codeTTL time.Duration
}

// NewService returns a Service whose 2FA messages state codeTTL as the
// code's lifetime; it should match the pending-2FA store's TTL.
func NewService(sender Sender, codeTTL time.Duration) Service {
	return &service{sender: sender, codeTTL: codeTTL}
}

func (s *service) SendTwoFACode(ctx context.Context, email domain.Email, code domain.TwoFACode) error {
	body := fmt.Sprintf("Your login code is %s. It expires in %s.", code, expiresIn(s.codeTTL))
	if err := s.sender.Send(ctx, email.String(), twoFASubject, body); err != nil {
		return fmt.Errorf("send 2FA code: %w", err)
	}
	return nil
}

func expiresIn(d time.Duration) string {
	switch {
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	case d >= time.Second && d%time.Second == 0:
		return plural(int(d/time.Second), "second")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// LogSender writes messages to the structured log instead of delivering
// them. Development only: the body carries the code.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, to, subject, body string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "outgoing message", "to", to, "subject", subject, "body", body)
	return nil
}
