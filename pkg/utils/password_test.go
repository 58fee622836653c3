package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "secret", h)
	assert.True(t, strings.HasPrefix(h, "$2a$"))
	assert.True(t, CheckPassword("secret", h))
	assert.False(t, CheckPassword("Secret", h))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPassword_CostFallback(t *testing.T) {
	h, err := HashPassword("secret", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHashPassword_LongerThanBcryptInput(t *testing.T) {
	long := strings.Repeat("x", 80)
	h, err := HashPassword(long, bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword(long, h))
	assert.False(t, CheckPassword(long[:72], h))
	assert.False(t, CheckPassword(long+"y", h))
}

func TestHashPassword_AtBcryptLimit(t *testing.T) {
	pw := strings.Repeat("x", 72)
	h, err := HashPassword(pw, bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte(pw)))
}

func TestCheckPassword_Garbage(t *testing.T) {
	assert.False(t, CheckPassword("secret", "not-a-hash"))
}
