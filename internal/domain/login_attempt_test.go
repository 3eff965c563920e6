package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoginAttemptID_IsParseableV4(t *testing.T) {
	id := NewLoginAttemptID()
	parsed, err := ParseLoginAttemptID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.Equal(t, uuid.Version(4), uuid.MustParse(id.String()).Version())
	assert.NotEqual(t, id, NewLoginAttemptID())
}

func TestParseLoginAttemptID_Rejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"not-a-uuid",
		"123e4567-e89b-12d3-a456-42661417400",
		"{123e4567-e89b-12d3-a456-426614174000}",
		"urn:uuid:123e4567-e89b-12d3-a456-426614174000",
		"123e4567e89b12d3a456426614174000",
		"123e4567-e89b-12d3-a456-42661417400g",
	} {
		_, err := ParseLoginAttemptID(raw)
		assert.ErrorIs(t, err, ErrInvalidLoginAttemptID, "input %q", raw)
	}
}
