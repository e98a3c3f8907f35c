package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("Str0ng!Passw")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Passw", hash)

	assert.True(t, hasher.Verify("Str0ng!Passw", hash))
	assert.False(t, hasher.Verify("Wr0ng!Passwd", hash))
}

func TestHashesAreSalted(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("Str0ng!Passw")
	require.NoError(t, err)
	second, err := hasher.Hash("Str0ng!Passw")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestOutOfRangeCostFallsBackToDefault(t *testing.T) {
	hasher := NewPasswordHasher(99)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)

	hasher = NewPasswordHasher(0)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}

func TestCheckPasswordsMatch(t *testing.T) {
	assert.NoError(t, CheckPasswordsMatch("Str0ng!Passw", "Str0ng!Passw"))
	assert.NoError(t, CheckPasswordsMatch(" Str0ng!Passw ", "Str0ng!Passw"))

	err := CheckPasswordsMatch("Str0ng!Passw", "Different!Pw1")
	assertFailures(t, err, "password", "PasswordMismatch")
}

func TestHandlePassword(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	t.Run("Mismatch", func(t *testing.T) {
		_, err := hasher.HandlePassword("Str0ng!Passw", "Other!Passw1")
		assertFailures(t, err, "password", "PasswordMismatch")
	})

	t.Run("WeakPasswordReportsEveryViolation", func(t *testing.T) {
		_, err := hasher.HandlePassword("weak", "weak")
		assertFailures(t, err, "password", "PassUpper", "PassNumber", "PassSpecial", "PassLength")
	})

	t.Run("Valid", func(t *testing.T) {
		hash, err := hasher.HandlePassword("Str0ng!Passw", "Str0ng!Passw")
		require.NoError(t, err)
		assert.True(t, hasher.Verify("Str0ng!Passw", hash))
	})
}
