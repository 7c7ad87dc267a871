package service

import (
	"testing"
	"time"

	"github.com/lixenwraith/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-minimum-32-characters-long"

func TestNewRejectsShortSecret(t *testing.T) {
	_, err := New("short")
	assert.ErrorIs(t, err, ErrSecretTooShort)
}

func TestAdminTokenRoundTrip(t *testing.T) {
	svc, err := New(testSecret)
	require.NoError(t, err)

	token, err := svc.GenerateAdminToken("ops", time.Hour)
	require.NoError(t, err)

	subject, claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", subject)
	assert.Equal(t, RoleAdmin, claims["role"])
	assert.NotEmpty(t, claims["jti"])
}

func TestValidateTokenRejects(t *testing.T) {
	svc, err := New(testSecret)
	require.NoError(t, err)

	other, err := New("another-secret-minimum-32-characters")
	require.NoError(t, err)
	foreign, err := other.GenerateAdminToken("ops", time.Hour)
	require.NoError(t, err)

	_, _, err = svc.ValidateToken(foreign)
	assert.Error(t, err, "wrong signing secret")

	_, _, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	plain, err := auth.GenerateHS256Token([]byte(testSecret), "user", map[string]any{"role": "viewer"}, time.Hour)
	require.NoError(t, err)
	_, _, err = svc.ValidateToken(plain)
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestGenerateAdminTokenRequiresSubject(t *testing.T) {
	svc, err := New(testSecret)
	require.NoError(t, err)
	_, err = svc.GenerateAdminToken("", time.Hour)
	assert.Error(t, err)
}
