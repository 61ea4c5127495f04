package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_NonDeterministic(t *testing.T) {
	first, err := Hash("Str0ng!Pass")
	require.NoError(t, err)
	second, err := Hash("Str0ng!Pass")
	require.NoError(t, err)

	// different salts, different bytes
	assert.NotEqual(t, first, second)

	// yet both verify
	assert.True(t, Verify("Str0ng!Pass", first))
	assert.True(t, Verify("Str0ng!Pass", second))
}

func TestHash_EmptySecret(t *testing.T) {
	_, err := Hash("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestVerify_WrongSecret(t *testing.T) {
	hashed, err := Hash("Str0ng!Pass")
	require.NoError(t, err)

	assert.False(t, Verify("WrongPassword", hashed))
}

func TestVerify_MalformedHash(t *testing.T) {
	assert.False(t, Verify("Str0ng!Pass", "not-a-bcrypt-hash"))
	assert.False(t, Verify("Str0ng!Pass", ""))
}

func TestHashToken_Deterministic(t *testing.T) {
	first := HashToken("some-refresh-token")
	second := HashToken("some-refresh-token")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // sha256 hex
	assert.NotEqual(t, first, HashToken("other-token"))
}

func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword("short"))
	assert.True(t, ValidatePassword("longenough"))
}
