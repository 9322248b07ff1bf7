package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fxjournal/backend/src/config"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	config.Cfg = &config.AppConfig{AccessTokenExpiry: time.Hour}
	return NewAuthService("test-secret-key-that-is-long-enough")
}

func TestHashAndComparePassword(t *testing.T) {
	svc := newTestAuthService(t)

	hash, err := svc.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.NoError(t, svc.CompareHashAndPassword(hash, "hunter2hunter2"))
	assert.Error(t, svc.CompareHashAndPassword(hash, "wrong-password"))
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestAuthService(t)

	token, err := svc.GenerateToken("42")
	require.NoError(t, err)

	sub, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestAuthService(t)
	token, err := svc.GenerateToken("42")
	require.NoError(t, err)

	other := NewAuthService("another-secret-key-entirely-here")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(t)
	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestGenerateRandomTokenIsUnique(t *testing.T) {
	svc := newTestAuthService(t)

	a, err := svc.GenerateRandomToken()
	require.NoError(t, err)
	b, err := svc.GenerateRandomToken()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
