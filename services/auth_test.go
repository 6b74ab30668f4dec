package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studywise/backend/models"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	s := NewAuthService(nil, "test-secret")
	user := &models.User{ID: "user-123", Email: "test@example.com", Role: "user"}

	token, err := s.generateAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims := &CookieClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)

	// Short-lived token
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt.Time, 30*time.Second)
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	s := NewAuthService(nil, "correct-secret")
	token, err := s.generateAccessToken(&models.User{ID: "u1"})
	require.NoError(t, err)

	claims := &CookieClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	assert.Error(t, err)
}

func TestHashToken(t *testing.T) {
	s := NewAuthService(nil, "secret")

	h1 := s.hashToken("token-a")
	h2 := s.hashToken("token-a")
	h3 := s.hashToken("token-b")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64, "sha256 hex digest")
	assert.NotContains(t, h1, "token-a", "raw token never stored")
}

func TestGenerateSecureToken(t *testing.T) {
	s := NewAuthService(nil, "secret")

	t1, err := s.generateSecureToken()
	require.NoError(t, err)
	t2, err := s.generateSecureToken()
	require.NoError(t, err)

	assert.Len(t, t1, 64)
	assert.NotEqual(t, t1, t2)
}
