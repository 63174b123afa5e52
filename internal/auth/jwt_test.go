package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clanstats-server/internal/shared/config"
)

func setTestConfig(t *testing.T, expiration time.Duration) {
	t.Helper()
	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			TokenExpiration: expiration,
		},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	setTestConfig(t, time.Hour)

	token, err := GenerateToken(7, "kratos", "Kratos", RoleCoLeader)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "kratos", claims.Username)
	assert.Equal(t, "Kratos", claims.Name)
	assert.Equal(t, RoleCoLeader, claims.Role)
	assert.Equal(t, "user_7", claims.Subject)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	setTestConfig(t, -time.Minute)

	token, err := GenerateToken(7, "kratos", "Kratos", RoleLeader)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	setTestConfig(t, time.Hour)
	token, err := GenerateToken(7, "kratos", "Kratos", RoleLeader)
	require.NoError(t, err)

	config.GlobalConfig.Auth.JWTSecret = "different-secret"
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsUnknownRole(t *testing.T) {
	setTestConfig(t, time.Hour)

	claims := Claims{
		UserID:   7,
		Username: "kratos",
		Name:     "Kratos",
		Role:     Role("elder"),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.GlobalConfig.Auth.JWTSecret))
	require.NoError(t, err)

	_, err = ValidateToken(signed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	setTestConfig(t, time.Hour)

	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}
