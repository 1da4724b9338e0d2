package cryptopackage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAPIKey_Format(t *testing.T) {
	hash, err := HashAPIKey("ct_secret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	assert.Contains(t, hash, "m=19456,t=2,p=1")

	// 盐值不同，哈希不同
	other, err := HashAPIKey("ct_secret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestVerifyAPIKey(t *testing.T) {
	hash, err := HashAPIKey("ct_secret")
	require.NoError(t, err)

	ok, err := VerifyAPIKey("ct_secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyAPIKey("ct_wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyAPIKey_InvalidHash(t *testing.T) {
	cases := []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$broken$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA",
	}
	for _, c := range cases {
		_, err := VerifyAPIKey("key", c)
		assert.Error(t, err, c)
	}
}
