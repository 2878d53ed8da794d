package quire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/quire/internal/logging"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/formats"
	"github.com/aretw0/quire/pkg/links"
	"github.com/aretw0/quire/pkg/observability"
	"github.com/aretw0/quire/pkg/ports"
	"github.com/aretw0/quire/pkg/publish"
	"github.com/aretw0/quire/pkg/stories"
	"golang.org/x/sync/errgroup"
)

// Listener is called after every dispatched action with the states before and after it.
// Listeners run on the dispatching goroutine and must not call Dispatch.
type Listener func(prev, next []*domain.Story, action stories.Action)

// Library is the state container for stories and story formats.
type Library struct {
	dispatchMu sync.Mutex // serializes reduction and notification
	mu         sync.RWMutex
	stories    []*domain.Story
	formats    []*domain.StoryFormat

	listeners map[int]Listener
	nextSub   int

	storyReducer  *stories.Reducer
	formatReducer *formats.Reducer
	loader        *formats.Loader

	fetcher        formats.Fetcher
	defaultFormat  domain.FormatRef
	proofingFormat domain.FormatRef
	app            domain.AppInfo
	placeholders   map[string]string
	ids            domain.IDGenerator
	now            func() time.Time
	logger         *slog.Logger
	metrics        *observability.Metrics
}

// Option defines a functional option for configuring the Library.
type Option func(*Library)

// WithLogger sets a custom structured logger for the library and its reducers.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		l.logger = logger
	}
}

// WithMetrics records dispatches, rejections, repairs, format loads and publishes.
func WithMetrics(m *observability.Metrics) Option {
	return func(l *Library) {
		l.metrics = m
	}
}

// WithFormats seeds the format pool.
func WithFormats(pool []*domain.StoryFormat) Option {
	return func(l *Library) {
		l.formats = slices.Clone(pool)
	}
}

// WithDefaultFormat sets the format new and unresolvable stories are bound to.
func WithDefaultFormat(ref domain.FormatRef) Option {
	return func(l *Library) {
		l.defaultFormat = ref
	}
}

// WithProofingFormat sets the format used by Proof.
func WithProofingFormat(ref domain.FormatRef) Option {
	return func(l *Library) {
		l.proofingFormat = ref
	}
}

// WithFetcher sets where format definitions are read from.
// The default reads http(s) URLs over the network and everything else from disk.
func WithFetcher(f formats.Fetcher) Option {
	return func(l *Library) {
		l.fetcher = f
	}
}

// WithAppInfo sets the creator name and version written into published stories.
func WithAppInfo(app domain.AppInfo) Option {
	return func(l *Library) {
		l.app = app
	}
}

// WithPlaceholders adds fixed {{KEY}} substitutions to every published story.
// Story properties of the same key take precedence.
func WithPlaceholders(values map[string]string) Option {
	return func(l *Library) {
		l.placeholders = maps.Clone(values)
	}
}

// WithIDGenerator overrides the source of story, passage and format ids.
func WithIDGenerator(ids domain.IDGenerator) Option {
	return func(l *Library) {
		l.ids = ids
	}
}

// WithClock overrides the time source used for lastUpdate.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		l.now = now
	}
}

// New creates an empty Library.
func New(opts ...Option) *Library {
	l := &Library{
		listeners: make(map[int]Listener),
		app:       domain.AppInfo{Name: AppName, Version: Version},
		ids:       domain.UUIDGenerator{},
		now:       time.Now,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fetcher == nil {
		l.fetcher = formats.NewFetcher(nil, "")
	}

	storyOpts := []stories.Option{
		stories.WithLogger(l.logger),
		stories.WithIDGenerator(l.ids),
		stories.WithClock(l.now),
	}
	if l.metrics != nil {
		storyOpts = append(storyOpts, stories.WithObserver(l.metrics))
	}
	l.storyReducer = stories.NewReducer(storyOpts...)
	l.formatReducer = formats.NewReducer(formats.WithLogger(l.logger), formats.WithIDGenerator(l.ids))
	l.loader = formats.NewLoader(l.fetcher, formats.WithLoaderLogger(l.logger))
	return l
}

// Dispatch applies a story action and notifies listeners.
func (l *Library) Dispatch(action stories.Action) {
	l.dispatchMu.Lock()
	defer l.dispatchMu.Unlock()

	l.mu.Lock()
	prev := l.stories
	next := l.storyReducer.Reduce(prev, action)
	l.stories = next
	listeners := make([]Listener, 0, len(l.listeners))
	for _, id := range sortedKeys(l.listeners) {
		listeners = append(listeners, l.listeners[id])
	}
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.Dispatched(action.Type())
	}
	l.logger.Debug("Dispatched story action", "action", action.Type())

	for _, fn := range listeners {
		fn(prev, next, action)
	}
}

// DispatchFormat applies a format pool action.
func (l *Library) DispatchFormat(action formats.Action) {
	l.dispatchMu.Lock()
	defer l.dispatchMu.Unlock()
	l.dispatchFormatLocked(action)
}

func (l *Library) dispatchFormatLocked(action formats.Action) {
	l.mu.Lock()
	l.formats = l.formatReducer.Reduce(l.formats, action)
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.Dispatched(action.Type())
	}
	l.logger.Debug("Dispatched format action", "action", action.Type())
}

// Subscribe registers fn for every future dispatch, in subscription order.
// The returned function removes it.
func (l *Library) Subscribe(fn Listener) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextSub
	l.nextSub++
	l.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.listeners, id)
		})
	}
}

// Init replaces the stories wholesale, then repairs them against the format pool.
func (l *Library) Init(list []*domain.Story) {
	l.Dispatch(stories.Init{Stories: list})
	l.Repair()
}

// Repair runs the consistency repair pass over every story.
func (l *Library) Repair() {
	l.Dispatch(stories.RepairStories{Formats: l.Formats(), Default: l.defaultFormat})
}

// Stories returns the current stories. The slice is a copy; the stories themselves
// must be treated as read-only.
func (l *Library) Stories() []*domain.Story {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.stories)
}

// Story returns the story with the given id.
func (l *Library) Story(id string) (*domain.Story, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if s := domain.StoryByID(l.stories, id); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrStoryNotFound, id)
}

// StoryByName returns the story with the given name.
func (l *Library) StoryByName(name string) (*domain.Story, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if s := domain.StoryByName(l.stories, name); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("%w: named %q", domain.ErrStoryNotFound, name)
}

// Formats returns the current format pool.
func (l *Library) Formats() []*domain.StoryFormat {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.formats)
}

// DefaultFormat returns the configured default format reference.
func (l *Library) DefaultFormat() domain.FormatRef {
	return l.defaultFormat
}

// AppInfo returns the creator information stamped into published stories.
func (l *Library) AppInfo() domain.AppInfo {
	return l.app
}

// NewStory creates a story bound to the default format with one untitled start passage.
func (l *Library) NewStory(name string) (*domain.Story, error) {
	if _, err := l.StoryByName(name); err == nil {
		return nil, fmt.Errorf("story %q: %w", name, domain.ErrNameTaken)
	}

	start := domain.NewPassage()
	start.ID = l.ids.NewID()
	id := l.ids.NewID()
	l.Dispatch(stories.CreateStory{
		ID: id,
		Props: stories.StoryProps{
			Name:               &name,
			StartPassage:       &start.ID,
			StoryFormat:        &l.defaultFormat.Name,
			StoryFormatVersion: &l.defaultFormat.Version,
		},
		Passages: []*domain.Passage{start},
	})
	return l.Story(id)
}

// CreateUntitledPassage adds a passage with an unused default name near (left, top).
func (l *Library) CreateUntitledPassage(storyID string, left, top float64) (*domain.Passage, error) {
	s, err := l.Story(storyID)
	if err != nil {
		return nil, err
	}
	id := l.ids.NewID()
	l.Dispatch(stories.CreatePassage{StoryID: storyID, ID: id, Props: stories.UntitledPassage(s, left, top)})

	s, err = l.Story(storyID)
	if err != nil {
		return nil, err
	}
	if p := s.PassageByID(id); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrPassageNotFound, id)
}

// RenamePassage renames a passage and rewrites links to it in the rest of the story.
func (l *Library) RenamePassage(storyID, passageID, name string) error {
	s, err := l.Story(storyID)
	if err != nil {
		return err
	}
	p := s.PassageByID(passageID)
	if p == nil {
		return fmt.Errorf("%w: %s", domain.ErrPassageNotFound, passageID)
	}
	if p.Name == name {
		return nil
	}
	if s.PassageByName(name) != nil {
		return fmt.Errorf("passage %q: %w", name, domain.ErrNameTaken)
	}
	for _, action := range stories.RenamePassage(s, passageID, name) {
		l.Dispatch(action)
	}
	return nil
}

// Stats computes counts for a story.
func (l *Library) Stats(storyID string) (links.Stats, error) {
	s, err := l.Story(storyID)
	if err != nil {
		return links.Stats{}, err
	}
	return links.StoryStats(s), nil
}

// Links returns the classified link graph of a story.
func (l *Library) Links(storyID string) (*links.Graph, error) {
	s, err := l.Story(storyID)
	if err != nil {
		return nil, err
	}
	return links.Build(s), nil
}

// LoadFormat makes sure the format with the given id is loaded. Concurrent calls for
// the same URL share one fetch. A failed load is recorded on the format and returned.
// Cancelling ctx only stops this caller from waiting.
// A successful load triggers a repair pass over all stories.
func (l *Library) LoadFormat(ctx context.Context, formatID string) (*domain.StoryFormat, error) {
	f, err := formats.FormatWithID(l.Formats(), formatID)
	if err != nil {
		return nil, err
	}
	if f.LoadState == domain.LoadStateLoaded {
		return f, nil
	}

	l.dispatchMu.Lock()
	if cur, err := formats.FormatWithID(l.formats, formatID); err == nil && cur.LoadState != domain.LoadStateLoading {
		l.dispatchFormatLocked(formats.LoadStart{ID: formatID})
	}
	l.dispatchMu.Unlock()

	props, loadErr := l.loader.Load(ctx, f.URL)
	if loadErr != nil && ctx.Err() != nil {
		// This caller stopped waiting. The shared fetch carries on and its other
		// waiters record the outcome, so the format is left as it is.
		return nil, loadErr
	}
	if l.metrics != nil {
		l.metrics.FormatLoaded(loadErr)
	}

	l.dispatchMu.Lock()
	cur, err := formats.FormatWithID(l.formats, formatID)
	switch {
	case err != nil || cur.LoadState == domain.LoadStateLoaded:
	case loadErr != nil:
		if cur.LoadState == domain.LoadStateLoading {
			l.dispatchFormatLocked(formats.LoadFailure{ID: formatID, Err: loadErr})
		}
	default:
		if cur.LoadState != domain.LoadStateLoading {
			l.dispatchFormatLocked(formats.LoadStart{ID: formatID})
		}
		l.dispatchFormatLocked(formats.LoadSuccess{ID: formatID, Properties: props})
	}
	l.dispatchMu.Unlock()

	if loadErr != nil {
		l.logger.Warn("Failed to load story format", "format", f.Ref().String(), "url", f.URL, "err", loadErr)
		return nil, fmt.Errorf("load format %s: %w", f.Ref(), loadErr)
	}
	l.Repair()
	return formats.FormatWithID(l.Formats(), formatID)
}

// LoadAll loads every unloaded format in the pool, a few at a time.
// It returns the first failure; every failure is also recorded on its format.
func (l *Library) LoadAll(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(4)
	for _, f := range l.Formats() {
		if f.LoadState == domain.LoadStateLoaded {
			continue
		}
		g.Go(func() error {
			_, err := l.LoadFormat(ctx, f.ID)
			return err
		})
	}
	return g.Wait()
}

// Publish renders a story into a playable HTML document using its story format.
func (l *Library) Publish(ctx context.Context, storyID string) (string, error) {
	return l.publish(ctx, "publish", storyID, publish.Options{})
}

// Test publishes a story in debug mode, optionally starting at another passage.
func (l *Library) Test(ctx context.Context, storyID, startPassageID string) (string, error) {
	return l.publish(ctx, "test", storyID, publish.Options{
		FormatOptions:  "debug",
		StartPassageID: startPassageID,
	})
}

// Proof renders a story with the proofing format. A start passage is not required.
func (l *Library) Proof(ctx context.Context, storyID string) (string, error) {
	return l.publish(ctx, "proof", storyID, publish.Options{StartOptional: true})
}

func (l *Library) publish(ctx context.Context, mode, storyID string, opts publish.Options) (string, error) {
	started := time.Now()
	if l.metrics != nil {
		defer l.metrics.ObservePublish(mode, started)
	}

	s, err := l.Story(storyID)
	if err != nil {
		return "", err
	}

	ref, fallback := s.Format(), l.defaultFormat
	if mode == "proof" {
		ref, fallback = l.proofingFormat, l.proofingFormat
	}
	f, err := formats.Resolve(l.Formats(), ref, fallback)
	if err != nil {
		return "", err
	}
	if f, err = l.LoadFormat(ctx, f.ID); err != nil {
		return "", err
	}

	// Loading may have repaired the story.
	if s, err = l.Story(storyID); err != nil {
		return "", err
	}
	opts.Placeholders = maps.Clone(l.placeholders)
	if opts.Placeholders == nil {
		opts.Placeholders = map[string]string{}
	}
	maps.Copy(opts.Placeholders, publish.StoryPlaceholders(s))
	return publish.Story(s, f, l.app, opts)
}

// Archive returns the story data of every story, without any format.
func (l *Library) Archive() string {
	return publish.Archive(l.Stories(), l.app)
}

// ImportOptions controls how imported stories are merged into the library.
type ImportOptions struct {
	// Replace deletes an existing story with the same name before importing.
	// Otherwise the imported story is given an unused name.
	Replace bool
}

// Import merges stories into the library. They are repaired first, so foreign or
// malformed data is safe to pass in. The imported stories are returned.
func (l *Library) Import(list []*domain.Story, opts ImportOptions) []*domain.Story {
	repaired := stories.Repair(list, l.Formats(), l.defaultFormat,
		stories.WithLogger(l.logger), stories.WithIDGenerator(l.ids), stories.WithClock(l.now))

	var out []*domain.Story
	for _, s := range repaired {
		name := s.Name
		if existing, err := l.StoryByName(name); err == nil {
			if opts.Replace {
				l.Dispatch(stories.DeleteStory{StoryID: existing.ID})
			} else {
				name = stories.UnusedName(name, stories.StoryNames(l.Stories()))
			}
		}

		id := s.ID
		if _, err := l.Story(id); err == nil {
			id = l.ids.NewID()
		}
		props := stories.StoryPropsFrom(s)
		props.Name = &name
		l.Dispatch(stories.CreateStory{ID: id, IFID: s.IFID, Props: props, Passages: s.Passages})

		if created, err := l.Story(id); err == nil {
			out = append(out, created)
		}
	}
	l.logger.Info("Imported stories", "count", len(out))
	return out
}

// ImportHTML parses published or archived HTML and imports every story in it.
func (l *Library) ImportHTML(r io.Reader, opts ImportOptions) ([]*domain.Story, error) {
	list, err := publish.Import(r, publish.WithImportIDs(l.ids), publish.WithImportClock(l.now))
	if err != nil {
		return nil, err
	}
	return l.Import(list, opts), nil
}

// ImportFrom loads the stories of a source and imports them.
func (l *Library) ImportFrom(ctx context.Context, src ports.StorySource, opts ImportOptions) ([]*domain.Story, error) {
	list, err := src.LoadStories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stories: %w", err)
	}
	return l.Import(list, opts), nil
}

func sortedKeys(m map[int]Listener) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
