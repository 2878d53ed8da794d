package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/publish"
)

const ext = ".html"

// Store implements ports.StoryStore using the local filesystem.
// Each story is kept as a human-editable archive file named after the story id.
type Store struct {
	BasePath string
	app      domain.AppInfo
}

// Option configures a Store.
type Option func(*Store)

// WithAppInfo sets the creator written into saved files.
func WithAppInfo(app domain.AppInfo) Option {
	return func(s *Store) {
		s.app = app
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".quire/stories".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".quire", "stories")
	}
	s := &Store{BasePath: basePath, app: domain.AppInfo{Name: "quire"}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(id string) string {
	return filepath.Join(s.BasePath, id+ext)
}

// SaveStory writes the story atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) SaveStory(ctx context.Context, story *domain.Story) error {
	if story.ID == "" {
		return fmt.Errorf("story id cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure story directory: %w", err)
	}

	data := publish.Archive([]*domain.Story{story}, s.app)
	destPath := s.path(story.ID)

	// Same directory as the destination: rename is only atomic within a filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+story.ID+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.WriteString(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing story file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to story file: %w", err)
	}
	return nil
}

// LoadStory reads a story file back. The story id comes from the file name and passage
// ids are derived from their position, so they are stable between loads.
func (s *Store) LoadStory(ctx context.Context, id string) (*domain.Story, error) {
	if id == "" {
		return nil, fmt.Errorf("story id cannot be empty")
	}

	f, err := os.Open(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrStoryNotFound
		}
		return nil, fmt.Errorf("failed to open story file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat story file: %w", err)
	}

	stories, err := publish.Import(f, publish.WithImportClock(info.ModTime))
	if err != nil {
		return nil, fmt.Errorf("failed to parse story file %s: %w", id, err)
	}
	if len(stories) == 0 {
		return nil, fmt.Errorf("story file %s holds no story: %w", id, domain.ErrStoryNotFound)
	}

	story := stories[0]
	start := slices.IndexFunc(story.Passages, func(p *domain.Passage) bool { return p.ID == story.StartPassage })
	story.ID = id
	for i, p := range story.Passages {
		p.ID = fmt.Sprintf("%s-p%d", id, i+1)
		p.Story = id
	}
	if start >= 0 {
		story.StartPassage = story.Passages[start].ID
	}
	return story, nil
}

// DeleteStory removes the story file.
func (s *Store) DeleteStory(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("story id cannot be empty")
	}
	err := os.Remove(s.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete story file: %w", err)
	}
	return nil
}

// ListStories loads every story file in the directory.
func (s *Store) ListStories(ctx context.Context) ([]*domain.Story, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*domain.Story{}, nil
		}
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	var stories []*domain.Story
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		story, err := s.LoadStory(ctx, strings.TrimSuffix(name, ext))
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, nil
}
