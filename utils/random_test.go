package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomToken_Length(t *testing.T) {
	tests := []struct {
		inputLength int
		encoded     int
	}{
		{16, 22},
		{32, 43},
		{64, 86},
	}

	for _, tt := range tests {
		token, err := GenerateRandomToken(tt.inputLength)
		require.NoError(t, err)
		assert.Len(t, token, tt.encoded)
	}
}

func TestGenerateAPIKey(t *testing.T) {
	a, err := GenerateAPIKey()
	require.NoError(t, err)
	b, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, APIKeyPrefix))
	assert.NotEqual(t, a, b)
}

func TestBuildStripURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/strips/12", BuildStripURL("http://localhost:8080/", 12))
}
