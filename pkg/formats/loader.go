package formats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/quire/internal/logging"
	"github.com/aretw0/quire/pkg/domain"
	"golang.org/x/sync/singleflight"
)

// Loader fetches and parses format definitions. Concurrent Load calls for the same
// URL share a single fetch and receive the same result.
type Loader struct {
	fetcher Fetcher
	group   singleflight.Group
	logger  *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the loader's logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader backed by fetcher.
func NewLoader(fetcher Fetcher, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher: fetcher,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the definition found at url.
//
// The fetch itself is not tied to ctx: once started it runs to completion for the
// benefit of every waiter. ctx only bounds how long this caller waits.
func (l *Loader) Load(ctx context.Context, url string) (*domain.FormatProperties, error) {
	ch := l.group.DoChan(url, func() (any, error) {
		l.logger.Debug("Fetching story format", "url", url)
		data, err := l.fetcher.Fetch(context.WithoutCancel(ctx), url)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		props, err := ParseDefinition(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", url, err)
		}
		return props, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			l.logger.Debug("Shared in-flight story format fetch", "url", url)
		}
		return res.Val.(*domain.FormatProperties), nil
	}
}
