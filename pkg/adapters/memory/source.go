package memory

import (
	"context"

	"github.com/aretw0/quire/pkg/domain"
)

// Source implements ports.StorySource over a fixed set of stories.
// It is handy for tests and for seeding a library from code.
type Source struct {
	stories []*domain.Story
}

// NewSource creates a source that hands out copies of stories.
func NewSource(stories ...*domain.Story) *Source {
	return &Source{stories: stories}
}

func (s *Source) LoadStories(ctx context.Context) ([]*domain.Story, error) {
	out := make([]*domain.Story, 0, len(s.stories))
	for _, story := range s.stories {
		out = append(out, story.DeepClone())
	}
	return out, nil
}
