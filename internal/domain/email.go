package domain

import (
	"fmt"

	"github.com/go-auth-service/internal/pkg/validate"
)

// Email is an account identifier. It is compared byte for byte; no case
// folding or other normalisation is applied.
type Email struct {
	value string
}

// ParseEmail accepts any non-empty string containing '@'.
func ParseEmail(raw string) (Email, error) {
	if err := validate.Var(raw, "required,contains=@"); err != nil {
		return Email{}, fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	return Email{value: raw}, nil
}

func (e Email) String() string { return e.value }
