package tests

import (
	"context"
	"testing"

	"github.com/aretw0/quire/pkg/ports"
)

// StorySourceContractTest is a reusable test suite that verifies if an adapter complies with ports.StorySource.
// want maps each expected story name to the passage names it must contain.
func StorySourceContractTest(t *testing.T, source ports.StorySource, want map[string][]string) {
	t.Helper()

	stories, err := source.LoadStories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error loading stories: %v", err)
	}

	t.Run("Stories", func(t *testing.T) {
		if len(stories) != len(want) {
			t.Fatalf("expected %d stories, got %d", len(want), len(stories))
		}
		for _, s := range stories {
			passages, ok := want[s.Name]
			if !ok {
				t.Errorf("unexpected story %q", s.Name)
				continue
			}
			for _, name := range passages {
				if s.PassageByName(name) == nil {
					t.Errorf("story %q is missing passage %q", s.Name, name)
				}
			}
		}
	})

	t.Run("Ownership", func(t *testing.T) {
		for _, s := range stories {
			for _, p := range s.Passages {
				if p.Story != s.ID {
					t.Errorf("passage %q of %q belongs to %q", p.Name, s.Name, p.Story)
				}
			}
		}
	})
}
