package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/99designs/keyring"
)

const (
	serviceName = "notify-channel"
	tokenKey    = "access-token"
)

// KeyringProvider reads the bearer token from the OS keyring, so the client
// can run unattended after a one-time `SetToken`.
type KeyringProvider struct {
	ring keyring.Keyring
	now  func() time.Time
}

func OpenKeyring() (*KeyringProvider, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/notify-channel/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("notify-channel-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}

	return &KeyringProvider{ring: ring, now: time.Now}, nil
}

func (p *KeyringProvider) Token(ctx context.Context) (string, error) {
	item, err := p.ring.Get(tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("reading token from keyring: %w", err)
	}

	token := string(item.Data)
	if err := ensureUsable(token, p.now()); err != nil {
		return "", err
	}

	return token, nil
}

// Username inspects the stored token best-effort; an unusable token yields
// an empty username, which disables the durable cache.
func (p *KeyringProvider) Username() string {
	item, err := p.ring.Get(tokenKey)
	if err != nil {
		return ""
	}

	username, _, err := InspectToken(string(item.Data))
	if err != nil {
		return ""
	}
	return username
}

// SetToken stores or replaces the bearer token in the OS keyring.
func (p *KeyringProvider) SetToken(token string) error {
	if token == "" {
		return ErrNoToken
	}

	err := p.ring.Set(keyring.Item{
		Key:  tokenKey,
		Data: []byte(token),
	})
	if err != nil {
		return fmt.Errorf("storing token in keyring: %w", err)
	}

	return nil
}
