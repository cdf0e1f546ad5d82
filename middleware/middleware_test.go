package middleware

import (
	"mercado/globals"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		Username: "ana",
		UserID:   userID,
		Role:     []string{"user"},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestParseTokenRawAndBearer(t *testing.T) {
	tok := signToken(t, "u1", time.Hour)

	for _, raw := range []string{tok, "Bearer " + tok} {
		claims, err := ParseToken(raw)
		if err != nil {
			t.Fatalf("ParseToken(%q...) failed: %v", raw[:10], err)
		}
		if claims.UserID != "u1" {
			t.Fatalf("unexpected user id %q", claims.UserID)
		}
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "Bearer ", "not.a.jwt"} {
		if _, err := ParseToken(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tok := signToken(t, "u1", -time.Minute)
	if _, err := ParseToken(tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestValidateJWTRequiresBearerHeader(t *testing.T) {
	tok := signToken(t, "u2", time.Hour)

	claims, err := ValidateJWT("Bearer " + tok)
	if err != nil {
		t.Fatalf("ValidateJWT failed: %v", err)
	}
	if claims.UserID != "u2" {
		t.Fatalf("unexpected user id %q", claims.UserID)
	}

	if _, err := ValidateJWT(""); err == nil {
		t.Fatal("expected error for empty header")
	}
}
