package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken mints an HS256 token for userID, valid for 24 hours.
func GenerateToken(userID string, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
