package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("123456789")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "123456789", hash)

	// Same plaintext hashes differently (salted)
	hash2, err := HashPassword("123456789")
	assert.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("123456789")
	assert.NoError(t, err)

	assert.True(t, CheckPassword("123456789", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
	assert.False(t, CheckPassword("123456789", "not-a-hash"))
}
