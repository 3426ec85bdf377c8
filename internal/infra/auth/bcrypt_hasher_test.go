package auth

import (
	"strings"
	"testing"

	"authcore/config"
	domainerrors "authcore/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_DefaultCostIsTen(t *testing.T) {
	hasher, err := NewBcryptHasher(&config.Config{})
	require.NoError(t, err)

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestBcryptHasher_ConfiguredCost(t *testing.T) {
	hasher, err := NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost}})
	require.NoError(t, err)

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestBcryptHasher_RejectsCostOutOfRange(t *testing.T) {
	_, err := NewBcryptHasherWithCost(bcrypt.MinCost - 1)
	assert.Error(t, err)

	_, err = NewBcryptHasherWithCost(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestBcryptHasher_RoundTrip(t *testing.T) {
	hasher, err := NewBcryptHasherWithCost(bcrypt.MinCost)
	require.NoError(t, err)

	passwords := []string{"password123", "p@ss wörd", "123456", strings.Repeat("x", 72)}
	for _, password := range passwords {
		t.Run(password, func(t *testing.T) {
			hash, err := hasher.Hash(password)
			require.NoError(t, err)
			assert.NotEqual(t, password, hash)
			assert.NotContains(t, hash, password)

			assert.True(t, hasher.Check(password, hash))
			assert.False(t, hasher.Check(password+"x", hash))
			assert.False(t, hasher.Check("", hash))
		})
	}
}

func TestBcryptHasher_SaltsEveryHash(t *testing.T) {
	hasher, err := NewBcryptHasherWithCost(bcrypt.MinCost)
	require.NoError(t, err)

	first, err := hasher.Hash("password123")
	require.NoError(t, err)
	second, err := hasher.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("password123", first))
	assert.True(t, hasher.Check("password123", second))
}

func TestBcryptHasher_Check_InvalidHash(t *testing.T) {
	hasher, err := NewBcryptHasherWithCost(bcrypt.MinCost)
	require.NoError(t, err)

	assert.False(t, hasher.Check("password123", "invalid_hash"))
	assert.False(t, hasher.Check("password123", ""))
}

func TestBcryptHasher_Hash_TooLong(t *testing.T) {
	hasher, err := NewBcryptHasherWithCost(bcrypt.MinCost)
	require.NoError(t, err)

	_, err = hasher.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	// 40 runes but 80 bytes.
	_, err = hasher.Hash(strings.Repeat("é", 40))
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	hash, err := hasher.Hash(strings.Repeat("é", 36))
	require.NoError(t, err)
	assert.True(t, hasher.Check(strings.Repeat("é", 36), hash))
}
