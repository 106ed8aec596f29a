package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	issuer, err := NewTokenIssuer("test-signing-secret", "account-otp-service", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}

	signed, expiresAt, err := issuer.Issue("user-123", "user@example.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if time.Until(expiresAt) <= 14*time.Minute {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	var claims AccessTokenClaims
	parsed, err := jwt.ParseWithClaims(signed, &claims, func(token *jwt.Token) (any, error) {
		return []byte("test-signing-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("ParseWithClaims returned error: %v", err)
	}
	if !parsed.Valid {
		t.Fatalf("expected valid token")
	}
	if claims.Subject != "user-123" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("unexpected email claim: %s", claims.Email)
	}
	if claims.Issuer != "account-otp-service" {
		t.Fatalf("unexpected issuer: %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected a jti claim")
	}
}

func TestTokenIssuer_RequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer("", "account-otp-service", time.Minute); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestTokenIssuer_RequiresSubject(t *testing.T) {
	issuer, err := NewTokenIssuer("test-signing-secret", "account-otp-service", time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}
	if _, _, err := issuer.Issue("", "user@example.com"); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}
