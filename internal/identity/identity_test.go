package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func TestInspectToken(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{
		"preferred_username": "jdoe",
		"sub":                "user-uuid",
		"exp":                exp.Unix(),
	})

	username, expiresAt, err := InspectToken(token)
	if err != nil {
		t.Fatalf("InspectToken() error = %v", err)
	}
	if username != "jdoe" {
		t.Fatalf("username = %q, want jdoe", username)
	}
	if !expiresAt.Equal(exp) {
		t.Fatalf("expiresAt = %v, want %v", expiresAt, exp)
	}
}

func TestInspectTokenSubjectFallback(t *testing.T) {
	t.Parallel()

	token := signedToken(t, jwt.MapClaims{"sub": "user-uuid"})

	username, expiresAt, err := InspectToken(token)
	if err != nil {
		t.Fatalf("InspectToken() error = %v", err)
	}
	if username != "user-uuid" {
		t.Fatalf("username = %q, want sub fallback user-uuid", username)
	}
	if !expiresAt.IsZero() {
		t.Fatalf("expiresAt = %v, want zero for a token without exp", expiresAt)
	}
}

func TestInspectTokenMalformed(t *testing.T) {
	t.Parallel()

	if _, _, err := InspectToken("not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestStaticTokenMissing(t *testing.T) {
	t.Parallel()

	provider := NewStatic("")

	_, err := provider.Token(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("error = %v, want ErrNoToken", err)
	}
	if provider.Username() != "" {
		t.Fatalf("Username() = %q, want empty", provider.Username())
	}
}

func TestStaticTokenValid(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	token := signedToken(t, jwt.MapClaims{
		"preferred_username": "jdoe",
		"exp":                now.Add(time.Hour).Unix(),
	})

	provider := newStatic(token, func() time.Time { return now })

	got, err := provider.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got != token {
		t.Fatal("Token() should return the configured token")
	}
	if provider.Username() != "jdoe" {
		t.Fatalf("Username() = %q, want jdoe", provider.Username())
	}
}

func TestStaticTokenExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	token := signedToken(t, jwt.MapClaims{
		"preferred_username": "jdoe",
		"exp":                now.Add(-time.Minute).Unix(),
	})

	provider := newStatic(token, func() time.Time { return now })

	_, err := provider.Token(context.Background())
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("error = %v, want ErrTokenExpired", err)
	}
}

func TestStaticTokenWithoutExpiryIsUsable(t *testing.T) {
	t.Parallel()

	token := signedToken(t, jwt.MapClaims{"preferred_username": "jdoe"})
	provider := NewStatic(token)

	if _, err := provider.Token(context.Background()); err != nil {
		t.Fatalf("Token() error = %v, tokens without exp should pass", err)
	}
}
