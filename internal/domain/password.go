package domain

import (
	"fmt"

	"github.com/go-auth-service/internal/pkg/validate"
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 8

// Password holds a plaintext candidate password. It only lives for the
// duration of a request; stores keep the Argon2id hash instead.
type Password struct {
	value string
}

func ParsePassword(raw string) (Password, error) {
	if err := validate.Var(raw, fmt.Sprintf("min=%d", MinPasswordLength)); err != nil {
		return Password{}, fmt.Errorf("%w: %v", ErrInvalidPassword, err)
	}
	return Password{value: raw}, nil
}

func (p Password) String() string { return p.value }
