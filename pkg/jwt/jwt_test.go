package jwt

import (
	"strings"
	"testing"
	"time"

	"serenecare/config"

	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour})
	userID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(userID, "doc@example.com", "doctor")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Role != "doctor" {
		t.Errorf("role = %q, want doctor", claims.Role)
	}
	if claims.TokenID != tokenID {
		t.Errorf("token id = %q, want %q", claims.TokenID, tokenID)
	}
	if claims.TokenType != AccessToken {
		t.Errorf("token type = %q", claims.TokenType)
	}
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	issuer := NewJWTService(config.JWTConfig{Secret: "one", AccessExpiry: time.Hour})
	verifier := NewJWTService(config.JWTConfig{Secret: "two", AccessExpiry: time.Hour})

	token, _, err := issuer.GenerateAccessToken(uuid.New(), "p@example.com", "patient")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestValidateTokenRejectsTamperedPayload(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: time.Hour})
	token, _, err := svc.GenerateAccessToken(uuid.New(), "p@example.com", "patient")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "AA"
	if _, err := svc.ValidateToken(strings.Join(parts, ".")); err == nil {
		t.Fatal("expected tampered token to fail")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: -time.Minute})
	token, _, err := svc.GenerateAccessToken(uuid.New(), "p@example.com", "patient")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}
