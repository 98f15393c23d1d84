package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kursadbilgin/notify-channel/internal/domain"
)

type fakeSink struct {
	name string
	mu   sync.Mutex
	got  []domain.Notification
	err  error
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Alert(_ context.Context, notification domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, notification)
	return f.err
}

func (f *fakeSink) received() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Notification, len(f.got))
	copy(out, f.got)
	return out
}

type fakeLimiter struct {
	allowFn func(ctx context.Context, notificationType string) (bool, error)
}

func (f *fakeLimiter) Allow(ctx context.Context, notificationType string) (bool, error) {
	return f.allowFn(ctx, notificationType)
}

func testNotification(id, notificationType string) domain.Notification {
	return domain.Notification{
		ID:        id,
		Message:   "build failed on main",
		Type:      notificationType,
		Timestamp: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Sender:    "ci-bot",
	}
}

func TestDispatcherDeliversToAllSinks(t *testing.T) {
	t.Parallel()

	first := &fakeSink{name: "first"}
	second := &fakeSink{name: "second"}

	dispatcher := NewDispatcher([]Alerter{first, second}, nil, nil, nil)
	dispatcher.dispatch(testNotification("n-1", domain.TypeTicketAssignment))

	if got := first.received(); len(got) != 1 || got[0].ID != "n-1" {
		t.Fatalf("first sink got %+v, want one notification n-1", got)
	}
	if got := second.received(); len(got) != 1 || got[0].ID != "n-1" {
		t.Fatalf("second sink got %+v, want one notification n-1", got)
	}
}

func TestDispatcherIsolatesSinkFailures(t *testing.T) {
	t.Parallel()

	failing := &fakeSink{name: "failing", err: errors.New("boom")}
	healthy := &fakeSink{name: "healthy"}

	dispatcher := NewDispatcher([]Alerter{failing, healthy}, nil, nil, nil)
	dispatcher.dispatch(testNotification("n-2", domain.TypeDeadlineWarning))

	if got := healthy.received(); len(got) != 1 {
		t.Fatalf("healthy sink got %d notifications, want 1", len(got))
	}
}

func TestDispatcherSkipsWhenRateLimited(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{name: "sink"}
	limiter := &fakeLimiter{
		allowFn: func(context.Context, string) (bool, error) { return false, nil },
	}

	dispatcher := NewDispatcher([]Alerter{sink}, limiter, nil, nil)
	dispatcher.dispatch(testNotification("n-3", domain.TypeInfo))

	if got := sink.received(); len(got) != 0 {
		t.Fatalf("sink got %d notifications, want 0 when rate limited", len(got))
	}
}

func TestDispatcherFailsOpenOnLimiterError(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{name: "sink"}
	limiter := &fakeLimiter{
		allowFn: func(context.Context, string) (bool, error) { return false, errors.New("redis down") },
	}

	dispatcher := NewDispatcher([]Alerter{sink}, limiter, nil, nil)
	dispatcher.dispatch(testNotification("n-4", domain.TypeInfo))

	if got := sink.received(); len(got) != 1 {
		t.Fatalf("sink got %d notifications, want 1 when limiter errors", len(got))
	}
}

func TestDispatcherNotifyWithoutSinksIsNoop(t *testing.T) {
	t.Parallel()

	dispatcher := NewDispatcher(nil, nil, nil, nil)
	dispatcher.Notify(testNotification("n-5", domain.TypeInfo))
}
