package tourbase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tourbase/tourbase"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Run("hashes a password", func(t *testing.T) {
		hash, err := tourbase.HashPassword("pass1234")

		assert.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, "pass1234", hash)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		hash, err := tourbase.HashPassword("")

		assert.ErrorIs(t, err, tourbase.ErrNoEmptyString)
		assert.Empty(t, hash)
	})

	t.Run("same password hashes differently each time", func(t *testing.T) {
		first, err := tourbase.HashPassword("pass1234")
		assert.NoError(t, err)

		second, err := tourbase.HashPassword("pass1234")
		assert.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := tourbase.HashPassword("pass1234")
	assert.NoError(t, err)

	t.Run("accepts matching password", func(t *testing.T) {
		assert.NoError(t, tourbase.ComparePasswordAndHash("pass1234", hash))
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		err := tourbase.ComparePasswordAndHash("wrong-password", hash)
		assert.ErrorIs(t, err, tourbase.ErrMismatchedHashAndPassword)
	})

	t.Run("rejects garbage hash", func(t *testing.T) {
		err := tourbase.ComparePasswordAndHash("pass1234", "not-a-bcrypt-hash")
		assert.Error(t, err)
	})
}

func TestHashCostIsSubBcryptMax(t *testing.T) {
	hash, err := tourbase.HashPassword("pass1234")
	assert.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, cost, bcrypt.DefaultCost)
	assert.LessOrEqual(t, cost, 12)
}
