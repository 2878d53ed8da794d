package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/quire/internal/logging"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/ports"
	"github.com/aretw0/quire/pkg/stories"
)

// DefaultLockTTL bounds how long a distributed lock may be held by a crashed writer.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Saver writes story changes to a store. It uses reference counting to garbage
// collect unused per-story locks.
type Saver struct {
	store ports.StoryStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Saver.
type Option func(*Saver)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Saver) {
		s.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Saver) {
		s.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Saver.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Saver) {
		s.logger = logger
	}
}

// NewSaver creates a Saver over store.
func NewSaver(store ports.StoryStore, opts ...Option) *Saver {
	s := &Saver{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (s *Saver) acquire(id string) *lockEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.locks[id]
	if !exists {
		entry = &lockEntry{}
		s.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (s *Saver) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(s.locks, id)
	}
}

// WithLock executes fn while holding the lock for the story.
func (s *Saver) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := s.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		s.release(id)
	}()

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, id, s.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				s.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"story_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Save persists one story.
func (s *Saver) Save(ctx context.Context, story *domain.Story) error {
	return s.WithLock(ctx, story.ID, func(ctx context.Context) error {
		return s.store.SaveStory(ctx, story)
	})
}

// Delete removes one story from the store.
func (s *Saver) Delete(ctx context.Context, id string) error {
	return s.WithLock(ctx, id, func(ctx context.Context) error {
		return s.store.DeleteStory(ctx, id)
	})
}

// Load returns every stored story.
func (s *Saver) Load(ctx context.Context) ([]*domain.Story, error) {
	return s.store.ListStories(ctx)
}

// Store returns the underlying story store.
func (s *Saver) Store() ports.StoryStore {
	return s.store
}

// Observe persists the effect of action, given the states before and after it.
// Actions that only touch transient fields are ignored.
func (s *Saver) Observe(ctx context.Context, prev, next []*domain.Story, action stories.Action) error {
	if !stories.IsPersistable(action) {
		return nil
	}
	diff := domain.Diff(prev, next)
	if diff.IsEmpty() {
		return nil
	}

	var errs []error
	for _, id := range diff.Removed {
		if err := s.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("delete story %s: %w", id, err))
		}
	}
	for _, story := range append(diff.Added, diff.Changed...) {
		if err := s.Save(ctx, story); err != nil {
			errs = append(errs, fmt.Errorf("save story %s: %w", story.ID, err))
		}
	}
	if len(errs) == 0 {
		s.logger.Debug("Persisted stories", "action", action.Type(),
			"saved", len(diff.Added)+len(diff.Changed), "deleted", len(diff.Removed))
	}
	return errors.Join(errs...)
}

// Listener adapts Observe to a library subscription. Errors are logged.
func (s *Saver) Listener() func(prev, next []*domain.Story, action stories.Action) {
	return func(prev, next []*domain.Story, action stories.Action) {
		if err := s.Observe(context.Background(), prev, next, action); err != nil {
			s.logger.Error("Failed to persist stories", "action", action.Type(), "err", err)
		}
	}
}
