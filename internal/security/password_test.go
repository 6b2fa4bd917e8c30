package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("s3cret!")
	require.NoError(t, err)
	second, err := hasher.Hash("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "salts must differ")
	assert.True(t, hasher.Verify("s3cret!", first))
	assert.True(t, hasher.Verify("s3cret!", second))
	assert.False(t, hasher.Verify("s3cret?", first))
}

func TestPasswordHasher_Compare(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(bcrypt.MinCost)
	digest, err := hasher.Hash("demo")
	require.NoError(t, err)

	require.NoError(t, hasher.Compare("demo", digest))
	require.ErrorIs(t, hasher.Compare("other", digest), ErrPasswordMismatch)
	require.ErrorIs(t, hasher.Compare("demo", "not-a-bcrypt-digest"), ErrMalformedDigest)
	require.ErrorIs(t, hasher.Compare("demo", "   "), ErrMalformedDigest)
	assert.False(t, hasher.Verify("demo", ""))
}

func TestPasswordHasher_Configuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
	assert.Equal(t, bcrypt.MinCost, NewPasswordHasher(bcrypt.MinCost).cost)

	_, err := NewPasswordHasher(bcrypt.MinCost).Hash("")
	require.Error(t, err)

	assert.True(t, IsBlankDigest(""))
	assert.True(t, IsBlankDigest("  \t"))
	assert.False(t, IsBlankDigest("$2a$04$abc"))
}
