package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("s3cret-passw0rd")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-passw0rd", hash)

	assert.NoError(t, ComparePasswordAndHash("s3cret-passw0rd", hash))
}

func TestComparePasswordMismatch(t *testing.T) {
	hash, err := HashPassword("s3cret-passw0rd")
	require.NoError(t, err)

	err = ComparePasswordAndHash("wrong-password", hash)
	assert.ErrorIs(t, err, ErrMismatchedHashAndPassword)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrNoEmptyString)
}

func TestComparePasswordAgainstEmptyHash(t *testing.T) {
	err := ComparePasswordAndHash("anything", "")
	assert.Error(t, err)
}
