package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePassword(t *testing.T) {
	tests := []struct {
		raw string
		ok  bool
	}{
		{"", false},
		{"1234567", false},
		{"12345678", true},
		{"password123", true},
		// seven characters, 21 bytes
		{"ñññññññ", false},
		// eight characters, more than eight bytes
		{"пароль12", true},
		{"日本語日本語日本", true},
	}
	for _, tt := range tests {
		_, err := ParsePassword(tt.raw)
		if tt.ok {
			assert.NoError(t, err, "input %q", tt.raw)
		} else {
			assert.ErrorIs(t, err, ErrInvalidPassword, "input %q", tt.raw)
		}
	}
}
