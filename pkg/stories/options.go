package stories

import (
	"log/slog"
	"time"

	"github.com/aretw0/quire/internal/logging"
	"github.com/aretw0/quire/pkg/domain"
)

// Observer is notified about rejected actions and repair corrections.
// It is how metrics hook into the reducer without the reducer knowing about them.
type Observer interface {
	Rejected(actionType, reason string)
	Corrected(c Correction)
}

type nopObserver struct{}

func (nopObserver) Rejected(string, string) {}
func (nopObserver) Corrected(Correction)    {}

type config struct {
	logger   *slog.Logger
	ids      domain.IDGenerator
	now      func() time.Time
	observer Observer
}

// Option configures a Reducer or a Repair call.
type Option func(*config)

// WithLogger sets the logger for rejections and repairs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithIDGenerator overrides the id source for created and repaired entities.
func WithIDGenerator(ids domain.IDGenerator) Option {
	return func(c *config) {
		c.ids = ids
	}
}

// WithClock overrides the time source used for lastUpdate.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// WithObserver registers an observer for rejections and corrections.
func WithObserver(o Observer) Option {
	return func(c *config) {
		c.observer = o
	}
}

func newConfig(opts []Option) config {
	c := config{
		logger:   logging.NewNop(),
		ids:      domain.UUIDGenerator{},
		now:      time.Now,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
