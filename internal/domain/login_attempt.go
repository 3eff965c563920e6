package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// LoginAttemptID correlates a login that triggered a 2FA challenge with the
// verify call that answers it.
type LoginAttemptID struct {
	value string
}

// NewLoginAttemptID generates a fresh random (version 4) id.
func NewLoginAttemptID() LoginAttemptID {
	return LoginAttemptID{value: uuid.NewString()}
}

// ParseLoginAttemptID accepts canonical 36-character UUID text only.
func ParseLoginAttemptID(raw string) (LoginAttemptID, error) {
	if len(raw) != 36 {
		return LoginAttemptID{}, ErrInvalidLoginAttemptID
	}
	if _, err := uuid.Parse(raw); err != nil {
		return LoginAttemptID{}, fmt.Errorf("%w: %v", ErrInvalidLoginAttemptID, err)
	}
	return LoginAttemptID{value: raw}, nil
}

func (id LoginAttemptID) String() string { return id.value }
