package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no identity token available")
	ErrTokenExpired = errors.New("identity token expired")
)

// tokenClaims covers the Keycloak-style claims this client cares about.
type tokenClaims struct {
	PreferredUsername string `json:"preferred_username"`
	jwt.RegisteredClaims
}

// InspectToken extracts the username and expiry from a JWT without
// verifying the signature; the server is the authority on token validity,
// the client only needs the cache key and a cheap expiry check.
func InspectToken(token string) (username string, expiresAt time.Time, err error) {
	parser := jwt.NewParser()

	var claims tokenClaims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to parse identity token: %w", err)
	}

	username = claims.PreferredUsername
	if username == "" {
		username = claims.Subject
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return username, expiresAt, nil
}

// ensureUsable rejects empty and expired tokens. Tokens without an exp
// claim are accepted; the server will refuse them if it disagrees.
func ensureUsable(token string, now time.Time) error {
	if token == "" {
		return ErrNoToken
	}

	_, expiresAt, err := InspectToken(token)
	if err != nil {
		return err
	}
	if !expiresAt.IsZero() && expiresAt.Before(now) {
		return fmt.Errorf("%w: expired at %s", ErrTokenExpired, expiresAt.Format(time.RFC3339))
	}

	return nil
}
