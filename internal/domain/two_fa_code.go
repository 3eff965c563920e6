package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/go-auth-service/internal/pkg/validate"
)

// TwoFACode is a six digit one-time code. Leading zeros are significant.
type TwoFACode struct {
	value string
}

var twoFACodeSpace = big.NewInt(1_000_000)

// NewTwoFACode draws a uniformly random code in 000000-999999.
func NewTwoFACode() (TwoFACode, error) {
	n, err := rand.Int(rand.Reader, twoFACodeSpace)
	if err != nil {
		return TwoFACode{}, fmt.Errorf("generate 2FA code: %w", err)
	}
	return TwoFACode{value: fmt.Sprintf("%06d", n.Int64())}, nil
}

// ParseTwoFACode accepts exactly six ASCII digits.
func ParseTwoFACode(raw string) (TwoFACode, error) {
	if err := validate.Var(raw, "len=6,number"); err != nil {
		return TwoFACode{}, fmt.Errorf("%w: %v", ErrInvalidTwoFACode, err)
	}
	return TwoFACode{value: raw}, nil
}

func (c TwoFACode) String() string { return c.value }
