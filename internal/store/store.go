package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kursadbilgin/notify-channel/internal/cache"
	"github.com/kursadbilgin/notify-channel/internal/domain"
	"github.com/kursadbilgin/notify-channel/internal/observability"
)

const (
	// DefaultCapacity bounds the in-memory collection; insertion beyond it
	// evicts oldest-first.
	DefaultCapacity = 100

	persistTimeout = 5 * time.Second
)

// Store is the authoritative ordered collection of notifications, newest
// first. Every mutation publishes a complete immutable snapshot to all
// subscribers and persists to the durable cache best-effort; a cache
// failure never affects the in-memory state.
//
// Repeated ids create independent entries: the server is trusted not to
// redeliver, and the store does not dedupe.
type Store struct {
	capacity int
	cache    cache.Cache
	username string
	logger   *zap.Logger
	metrics  *observability.Metrics
	onIngest func(domain.Notification)

	mu        sync.Mutex
	items     []domain.Notification
	subs      map[int]chan []domain.Notification
	nextSubID int
	saveSeq   uint64
	persistMu sync.Mutex
}

// New creates an empty store. The username scopes durable cache entries;
// when it is empty the cache is never touched.
func New(capacity int, c cache.Cache, username string, metrics *observability.Metrics, logger *zap.Logger) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		capacity: capacity,
		cache:    c,
		username: username,
		logger:   logger,
		metrics:  metrics,
		subs:     make(map[int]chan []domain.Notification),
	}
}

// OnIngest registers the side-effect hook invoked exactly once per ingested
// notification. Must be set before the store receives traffic.
func (s *Store) OnIngest(fn func(domain.Notification)) {
	s.onIngest = fn
}

// Hydrate loads the persisted collection for the configured username. Load
// failures are logged and leave the store empty; they are never fatal.
func (s *Store) Hydrate(ctx context.Context) {
	if s.username == "" {
		return
	}

	notifications, err := s.cache.Load(ctx, s.username)
	if err != nil {
		s.logger.Warn("failed to load cached notifications",
			zap.String("username", s.username),
			zap.Error(err),
		)
		s.metrics.IncCacheFailure("load")
		return
	}
	if len(notifications) > s.capacity {
		notifications = notifications[:s.capacity]
	}

	s.mu.Lock()
	s.items = notifications
	s.publishLocked()
	s.mu.Unlock()

	s.logger.Info("notification store hydrated",
		zap.String("username", s.username),
		zap.Int("count", len(notifications)),
	)
}

// Ingest prepends a notification, evicting the oldest entry past capacity,
// then triggers the side-effect hook.
func (s *Store) Ingest(n domain.Notification) {
	s.mu.Lock()
	s.items = append([]domain.Notification{n}, s.items...)
	if len(s.items) > s.capacity {
		s.items = s.items[:s.capacity]
	}
	s.publishLocked()
	s.persistLocked()
	s.mu.Unlock()

	s.metrics.IncNotificationIngested(n.Type)
	if s.onIngest != nil {
		s.onIngest(n)
	}
}

// MarkRead sets read=true on the matching record; a no-op for unknown ids,
// but the snapshot is still published.
func (s *Store) MarkRead(id string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
		}
	}
	s.publishLocked()
	s.persistLocked()
	s.mu.Unlock()
}

func (s *Store) MarkAllRead() {
	s.mu.Lock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.publishLocked()
	s.persistLocked()
	s.mu.Unlock()
}

// Remove deletes the matching record; a no-op for unknown ids.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, n := range s.items {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	s.items = kept
	s.publishLocked()
	s.persistLocked()
	s.mu.Unlock()
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.publishLocked()
	s.persistLocked()
	s.mu.Unlock()
}

// Snapshot returns a copy of the current collection, newest first.
func (s *Store) Snapshot() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Subscribe returns a channel that receives the current snapshot
// immediately and a fresh snapshot after every mutation. Slow consumers
// observe the latest state only; intermediate snapshots may be dropped.
// The returned cancel function releases the subscription.
func (s *Store) Subscribe() (<-chan []domain.Notification, func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan []domain.Notification, 1)
	ch <- s.snapshotLocked()
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.mu.Unlock()
	}

	return ch, cancel
}

func (s *Store) snapshotLocked() []domain.Notification {
	snapshot := make([]domain.Notification, len(s.items))
	copy(snapshot, s.items)
	return snapshot
}

func (s *Store) publishLocked() {
	snapshot := s.snapshotLocked()
	for _, sub := range s.subs {
		select {
		case sub <- snapshot:
		default:
			// Replace the stale pending snapshot; latest wins.
			select {
			case <-sub:
			default:
			}
			select {
			case sub <- snapshot:
			default:
			}
		}
	}
}

// persistLocked saves the current snapshot fire-and-forget. A newer
// mutation supersedes any save still waiting its turn.
func (s *Store) persistLocked() {
	if s.username == "" {
		return
	}

	s.saveSeq++
	seq := s.saveSeq
	snapshot := s.snapshotLocked()

	go func() {
		s.persistMu.Lock()
		defer s.persistMu.Unlock()

		s.mu.Lock()
		stale := seq != s.saveSeq
		s.mu.Unlock()
		if stale {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := s.cache.Save(ctx, s.username, snapshot); err != nil {
			s.logger.Warn("failed to persist notifications",
				zap.String("username", s.username),
				zap.Error(err),
			)
			s.metrics.IncCacheFailure("save")
		}
	}()
}
