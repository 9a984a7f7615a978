package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sosika-app/sosika-backend/config"
	"github.com/sosika-app/sosika-backend/middlewares"
)

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hashed)

	assert.True(t, CheckPassword(hashed, "s3cret"))
	assert.False(t, CheckPassword(hashed, "wrong"))
}

func TestGenerateAccessTokenRoundTrip(t *testing.T) {
	config.SecretKey = []byte("test-secret")
	userID := uuid.New()

	token, err := GenerateAccessToken(userID, []string{"user", "vendor"})
	require.NoError(t, err)

	claims := &middlewares.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return config.SecretKey, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, []string{"user", "vendor"}, claims.Roles)
}

func TestGenerateTokensIssuesRefreshToken(t *testing.T) {
	config.SecretKey = []byte("test-secret")
	userID := uuid.New()

	access, refresh, err := GenerateTokens(userID, []string{"user"})
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(refresh, claims, func(t *jwt.Token) (interface{}, error) {
		return config.SecretKey, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, userID.String(), claims.Subject)
}
