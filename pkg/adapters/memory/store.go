package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/quire/pkg/domain"
)

// Store implements ports.StoryStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Story
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Story),
	}
}

// SaveStory keeps a private copy of the story.
func (s *Store) SaveStory(ctx context.Context, story *domain.Story) error {
	cp := story.DeepClone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[story.ID] = cp
	return nil
}

// LoadStory returns a copy so callers can't mutate the stored story by pointer.
func (s *Store) LoadStory(ctx context.Context, id string) (*domain.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	story, ok := s.data[id]
	if !ok {
		return nil, domain.ErrStoryNotFound
	}
	return story.DeepClone(), nil
}

// DeleteStory removes the story.
func (s *Store) DeleteStory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// ListStories returns copies of every story, ordered by name.
func (s *Store) ListStories(ctx context.Context) ([]*domain.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stories := make([]*domain.Story, 0, len(s.data))
	for _, story := range s.data {
		stories = append(stories, story.DeepClone())
	}
	sort.Slice(stories, func(i, j int) bool { return stories[i].Name < stories[j].Name })
	return stories, nil
}
