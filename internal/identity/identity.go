package identity

import "context"

// Provider supplies the bearer token used to open the notification channel
// and the username that scopes the durable cache. A connect attempt must
// fail fast, without entering backoff, when no non-expired token is
// available.
type Provider interface {
	Token(ctx context.Context) (string, error)
	Username() string
}
