package ports

import (
	"context"

	"github.com/aretw0/quire/pkg/domain"
)

// StorySource provides stories that quire reads but never writes back.
// The stories it returns may violate invariants; callers run them through repair.
type StorySource interface {
	LoadStories(ctx context.Context) ([]*domain.Story, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the id of each changed document.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
