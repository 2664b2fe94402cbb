package common

import (
	"testing"
	"time"

	"claridx/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager(config.AuthConfig{JWTSecret: "test-secret", Issuer: "claridx", TokenTTL: time.Hour})

	token, claims, err := m.Generate("D1", RoleDoctor)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "D1", parsed.AccountID)
	assert.Equal(t, RoleDoctor, parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager(config.AuthConfig{JWTSecret: "test-secret", Issuer: "claridx", TokenTTL: time.Hour})
	other := NewTokenManager(config.AuthConfig{JWTSecret: "other-secret", Issuer: "claridx", TokenTTL: time.Hour})

	foreign, _, err := other.Generate("P1", RolePatient)
	require.NoError(t, err)

	_, err = m.Validate(foreign)
	assert.True(t, IsUnauthorized(err))

	_, err = m.Validate("garbage")
	assert.True(t, IsUnauthorized(err))

	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := m.Generate("P1", RolePatient)
	require.NoError(t, err)
	m.now = time.Now

	_, err = m.Validate(expired)
	assert.True(t, IsUnauthorized(err))
}
