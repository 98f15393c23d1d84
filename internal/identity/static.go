package identity

import (
	"context"
	"time"
)

// Static serves a fixed token handed over at construction, typically from
// the environment.
type Static struct {
	token    string
	username string
	now      func() time.Time
}

func NewStatic(token string) *Static {
	return newStatic(token, time.Now)
}

func newStatic(token string, nowFn func() time.Time) *Static {
	if nowFn == nil {
		nowFn = time.Now
	}

	s := &Static{token: token, now: nowFn}
	if token != "" {
		if username, _, err := InspectToken(token); err == nil {
			s.username = username
		}
	}
	return s
}

func (s *Static) Token(ctx context.Context) (string, error) {
	if err := ensureUsable(s.token, s.now()); err != nil {
		return "", err
	}
	return s.token, nil
}

func (s *Static) Username() string {
	return s.username
}
