package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/internal/config"
	"github.com/aretw0/quire/pkg/adapters/file"
	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/adapters/redis"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/formats"
	"github.com/aretw0/quire/pkg/observability"
	"github.com/aretw0/quire/pkg/persistence"
	"github.com/aretw0/quire/pkg/persistence/middleware"
	"github.com/aretw0/quire/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// App is a library wired to storage, persistence and metrics as configured.
type App struct {
	Config   *config.Config
	Library  *quire.Library
	Saver    *persistence.Saver
	Registry *prometheus.Registry
	Logger   *slog.Logger

	closers []func() error
}

// AppOption adjusts how an App is built. Tests use it to inject fakes.
type AppOption func(*appSettings)

type appSettings struct {
	store   ports.StoryStore
	fetcher formats.Fetcher
	ids     domain.IDGenerator
}

// WithStore bypasses the configured backend.
func WithStore(store ports.StoryStore) AppOption {
	return func(s *appSettings) {
		s.store = store
	}
}

// WithFetcher replaces the network and disk format fetcher.
func WithFetcher(f formats.Fetcher) AppOption {
	return func(s *appSettings) {
		s.fetcher = f
	}
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(ids domain.IDGenerator) AppOption {
	return func(s *appSettings) {
		s.ids = ids
	}
}

// NewApp builds the library described by cfg and loads the stored stories into it.
// Stories healed by the initial repair pass are written back.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...AppOption) (*App, error) {
	settings := appSettings{ids: domain.UUIDGenerator{}}
	for _, opt := range opts {
		opt(&settings)
	}

	app := &App{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	}

	store := settings.store
	var locker ports.DistributedLocker
	if store == nil {
		var err error
		store, locker, err = app.openStore(cfg)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Storage.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.Storage.EncryptionKey)
		if err != nil || len(key) != 32 {
			app.Close()
			return nil, fmt.Errorf("storage.encryption_key must be a base64 encoded 32 byte key")
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}

	fetcher := settings.fetcher
	if fetcher == nil {
		fetcher = formats.NewFetcher(nil, cfg.FormatsDir)
	}

	metrics := observability.NewMetrics(app.Registry)
	app.Library = quire.New(
		quire.WithLogger(logger),
		quire.WithMetrics(metrics),
		quire.WithFormats(cfg.StoryFormats(settings.ids)),
		quire.WithDefaultFormat(cfg.DefaultFormat),
		quire.WithProofingFormat(cfg.ProofingFormat),
		quire.WithFetcher(fetcher),
		quire.WithAppInfo(cfg.App),
		quire.WithPlaceholders(cfg.Placeholders),
		quire.WithIDGenerator(settings.ids),
	)

	saverOpts := []persistence.Option{persistence.WithLogger(logger)}
	if locker != nil {
		saverOpts = append(saverOpts, persistence.WithLocker(locker))
	}
	app.Saver = persistence.NewSaver(store, saverOpts...)

	list, err := app.Saver.Load(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}
	app.Library.Subscribe(app.Saver.Listener())
	app.Library.Init(list)
	logger.Debug("Library ready", "stories", len(list), "backend", cfg.Storage.Backend)
	return app, nil
}

func (a *App) openStore(cfg *config.Config) (ports.StoryStore, ports.DistributedLocker, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	case config.BackendRedis:
		rc := cfg.Storage.Redis
		var opts []redis.Option
		if rc.Prefix != "" {
			opts = append(opts, redis.WithPrefix(rc.Prefix))
		}
		if rc.TTL > 0 {
			opts = append(opts, redis.WithTTL(rc.TTL))
		}
		store := redis.New(rc.Addr, rc.Password, rc.DB, opts...)
		a.closers = append(a.closers, store.Close)
		if rc.Lock {
			prefix := rc.Prefix
			if prefix == "" {
				prefix = redis.DefaultPrefix
			}
			return store, redis.NewLocker(store.Client(), prefix), nil
		}
		return store, nil, nil
	default:
		return file.New(cfg.LibraryDir, file.WithAppInfo(cfg.App)), nil, nil
	}
}

// Story finds a story by id, then by name.
func (a *App) Story(ref string) (*domain.Story, error) {
	if s, err := a.Library.Story(ref); err == nil {
		return s, nil
	}
	return a.Library.StoryByName(ref)
}

// Close releases backend connections.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
