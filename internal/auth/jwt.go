package auth

import (
	"fmt"
	"time"

	"clanstats-server/internal/shared/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the signed identity attached to every request. There is
// no server-side session state; a user deactivated after issuance keeps
// passing authorization until the token expires.
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"nombre"`
	Role     Role   `json:"rol"`
	jwt.RegisteredClaims
}

func GenerateToken(userID int, username, name string, role Role) (string, error) {
	cfg := config.GlobalConfig

	claims := Claims{
		UserID:   userID,
		Username: username,
		Name:     name,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.Auth.TokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   fmt.Sprintf("user_%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Auth.JWTSecret))
}

func ValidateToken(tokenString string) (*Claims, error) {
	cfg := config.GlobalConfig

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.Auth.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if !claims.Role.IsValid() {
		return nil, fmt.Errorf("invalid role in token: %q", claims.Role)
	}

	return claims, nil
}
