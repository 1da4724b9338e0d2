package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptopackage "github.com/anoixa/comic-tracker/utils/crypto"
)

var testSecret = strings.Repeat("s", MinSecretLength)

func TestNewJWTService_RejectsWeakConfig(t *testing.T) {
	_, err := NewJWTService("short", time.Hour)
	assert.Error(t, err)

	_, err = NewJWTService(testSecret, 0)
	assert.Error(t, err)
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)

	token, expiry, err := svc.GenerateAccessToken("ops", 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	claims, err := svc.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, "access", claims.Type)
	assert.NotEmpty(t, claims.ID)

	other, err := NewJWTService(strings.Repeat("x", MinSecretLength), time.Hour)
	require.NoError(t, err)
	_, err = other.ExtractClaims(token)
	assert.Error(t, err)
}

func TestJWTService_Expired(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Minute)
	require.NoError(t, err)

	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	token, _, err := svc.GenerateAccessToken("ops", time.Minute)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ExtractClaims(token)
	assert.Error(t, err)
}

func TestKeyService_Validate(t *testing.T) {
	hash, err := cryptopackage.HashAPIKey("ct_secret")
	require.NoError(t, err)

	svc := NewKeyService(hash)
	assert.True(t, svc.Enabled())
	require.NoError(t, svc.Validate("ct_secret"))
	require.NoError(t, svc.Validate("ct_secret"), "cached fingerprint")
	assert.True(t, errors.Is(svc.Validate("ct_wrong"), ErrInvalidAPIKey))
	assert.True(t, errors.Is(svc.Validate(""), ErrInvalidAPIKey))

	disabled := NewKeyService("")
	assert.False(t, disabled.Enabled())
	assert.True(t, errors.Is(disabled.Validate("ct_secret"), ErrInvalidAPIKey))
}
