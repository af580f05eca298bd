package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestExtractUserFromToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := signToken(t, "test-secret", jwt.MapClaims{"username": "mperic", "name": "Marko Peric"})
	username, name, err := ExtractUserFromToken(token)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if username != "mperic" || name != "Marko Peric" {
		t.Errorf("got (%q, %q), want (mperic, Marko Peric)", username, name)
	}
}

func TestExtractUserFromTokenNameFallsBackToUsername(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := signToken(t, "test-secret", jwt.MapClaims{"username": "mperic"})
	username, name, err := ExtractUserFromToken(token)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if username != "mperic" || name != "mperic" {
		t.Errorf("got (%q, %q), want the username for both", username, name)
	}
}

func TestExtractUserFromTokenRejectsBadSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := signToken(t, "other-secret", jwt.MapClaims{"username": "mperic"})
	if _, _, err := ExtractUserFromToken(token); err == nil {
		t.Error("expected an error for a token signed with a different secret")
	}
}

func TestExtractUserFromTokenRequiresUsername(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := signToken(t, "test-secret", jwt.MapClaims{"name": "Marko Peric"})
	if _, _, err := ExtractUserFromToken(token); err == nil {
		t.Error("expected an error when the username claim is missing")
	}
}
