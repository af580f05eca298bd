package utils

import (
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ExtractUserFromToken parses and verifies the bearer token once and returns
// the username claim, which identifies the acting user for audit entries,
// together with the optional display-name claim. The display name falls back
// to the username when absent.
func ExtractUserFromToken(tokenString string) (username, name string, err error) {
	secretKey := os.Getenv("JWT_SECRET")
	if secretKey == "" {
		return "", "", fmt.Errorf("JWT_SECRET is not set")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		return "", "", fmt.Errorf("error parsing token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	username, _ = claims["username"].(string)
	if username == "" {
		return "", "", fmt.Errorf("username claim not found in token")
	}

	name, _ = claims["name"].(string)
	if name == "" {
		name = username
	}
	return username, name, nil
}
