package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/loam"

	"github.com/aretw0/quire/pkg/domain"
)

// Source adapts a Loam repository of Markdown passages to ports.StorySource.
// The whole repository becomes a single story.
type Source struct {
	Repo *loam.TypedRepository[PassageMetadata]
	name string
	ids  domain.IDGenerator
	now  func() time.Time
}

// Option configures a Source.
type Option func(*Source)

// WithStoryName names the story when no passage sets one.
func WithStoryName(name string) Option {
	return func(s *Source) {
		s.name = name
	}
}

// WithIDGenerator overrides the id source for the loaded story and passages.
func WithIDGenerator(ids domain.IDGenerator) Option {
	return func(s *Source) {
		s.ids = ids
	}
}

// WithClock overrides the time stamped as lastUpdate.
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		s.now = now
	}
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[PassageMetadata], opts ...Option) *Source {
	s := &Source{
		Repo: repo,
		name: domain.DefaultStoryName,
		ids:  domain.UUIDGenerator{},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open initializes a read-only Loam repository at dir. The story is named after the
// directory unless an option or the start passage says otherwise.
func Open(dir string, opts ...Option) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across the JSON and YAML adapters.
	// quire never writes to a passage directory, hence read-only.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	opts = append([]Option{WithStoryName(filepath.Base(absPath))}, opts...)
	return New(loam.NewTypedRepository[PassageMetadata](repo), opts...), nil
}

// LoadStories implements ports.StorySource.
func (s *Source) LoadStories(ctx context.Context) ([]*domain.Story, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	story := domain.NewStory()
	story.ID = s.ids.NewID()
	story.Name = s.name
	story.LastUpdate = s.now()

	for _, entry := range docs {
		// List carries metadata only; the passage body needs a full fetch.
		doc, err := s.Repo.Get(ctx, entry.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", entry.ID, err)
		}
		meta := doc.Data

		p := domain.NewPassage()
		p.ID = s.ids.NewID()
		p.Story = story.ID
		p.Name = meta.Name
		if p.Name == "" {
			p.Name = trimExtension(entry.ID)
		}
		p.Text = strings.TrimSpace(doc.Content)
		if meta.Tags != nil {
			p.Tags = meta.Tags
		}
		if l, t, ok := parsePair(meta.Position); ok {
			p.Left, p.Top = l, t
		}
		if w, h, ok := parsePair(meta.Size); ok {
			p.Width, p.Height = w, h
		}
		story.Passages = append(story.Passages, p)

		if meta.Start && story.StartPassage == "" {
			story.StartPassage = p.ID
			applyStoryMetadata(story, meta)
		}
	}
	return []*domain.Story{story}, nil
}

func applyStoryMetadata(s *domain.Story, meta PassageMetadata) {
	if meta.Story != "" {
		s.Name = meta.Story
	}
	s.StoryFormat = meta.Format
	s.StoryFormatVersion = meta.FormatVersion
	s.IFID = meta.IFID
	if meta.StoryTags != nil {
		s.Tags = meta.StoryTags
	}
	s.Stylesheet = meta.Stylesheet
	s.Script = meta.Script
}

// Watch implements ports.Watchable.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// parsePair reads "a,b" strings and two-element lists of numbers.
func parsePair(v any) (float64, float64, bool) {
	switch val := v.(type) {
	case string:
		a, b, ok := strings.Cut(val, ",")
		if !ok {
			return 0, 0, false
		}
		x, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
		y, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
		return x, y, errA == nil && errB == nil
	case []any:
		if len(val) != 2 {
			return 0, 0, false
		}
		x, okA := toFloat(val[0])
		y, okB := toFloat(val[1])
		return x, y, okA && okB
	}
	return 0, 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
