package notification

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/go-auth-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

func parse(t *testing.T) (domain.Email, domain.TwoFACode) {
	t.Helper()
	e, err := domain.ParseEmail("a@b.com")
	require.NoError(t, err)
	c, err := domain.ParseTwoFACode("042195")
	require.NoError(t, err)
	return e, c
}

func TestSendTwoFACode_FormatsMessage(t *testing.T) {
	s := &mockSender{}
	s.On("Send", mock.Anything, "a@b.com", twoFASubject,
		"Your login code is 042195. It expires in 10 minutes.").Return(nil)

	e, c := parse(t)
	require.NoError(t, NewService(s, 10*time.Minute).SendTwoFACode(context.Background(), e, c))
	s.AssertExpectations(t)
}

func TestSendTwoFACode_StatesConfiguredTTL(t *testing.T) {
	cases := []struct {
		ttl  time.Duration
		want string
	}{
		{time.Minute, "It expires in 1 minute."},
		{5 * time.Minute, "It expires in 5 minutes."},
		{90 * time.Second, "It expires in 90 seconds."},
		{1500 * time.Millisecond, "It expires in 1.5s."},
	}
	e, c := parse(t)
	for _, tc := range cases {
		s := &mockSender{}
		s.On("Send", mock.Anything, "a@b.com", twoFASubject, mock.MatchedBy(func(body string) bool {
			return strings.HasSuffix(body, tc.want)
		})).Return(nil)

		require.NoError(t, NewService(s, tc.ttl).SendTwoFACode(context.Background(), e, c))
		s.AssertExpectations(t)
	}
}

func TestSendTwoFACode_WrapsSenderError(t *testing.T) {
	s := &mockSender{}
	boom := errors.New("smtp down")
	s.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(boom)

	e, c := parse(t)
	err := NewService(s, time.Minute).SendTwoFACode(context.Background(), e, c)
	assert.ErrorIs(t, err, boom)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := LogSender{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	require.NoError(t, s.Send(context.Background(), "a@b.com", "subj", "code 123456"))
	assert.Contains(t, buf.String(), "to=a@b.com")
	assert.Contains(t, buf.String(), "123456")
}
