package ports

import (
	"context"

	"github.com/aretw0/quire/pkg/domain"
)

// StoryStore defines the interface for persisting stories.
type StoryStore interface {
	// SaveStory persists a story, replacing any previous copy with the same id.
	SaveStory(ctx context.Context, story *domain.Story) error

	// LoadStory retrieves a story by id.
	// Returns domain.ErrStoryNotFound if the story does not exist.
	LoadStory(ctx context.Context, id string) (*domain.Story, error)

	// DeleteStory removes a story. Deleting a missing story is not an error.
	DeleteStory(ctx context.Context, id string) error

	// ListStories returns every stored story.
	ListStories(ctx context.Context) ([]*domain.Story, error)
}
