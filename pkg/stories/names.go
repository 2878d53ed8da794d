package stories

import (
	"strconv"

	"github.com/aretw0/quire/pkg/domain"
)

// UnusedName returns base if it is not taken, otherwise the first of "base 1",
// "base 2", ... that is free.
func UnusedName(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for i := 1; ; i++ {
		name := base + " " + strconv.Itoa(i)
		if !taken[name] {
			return name
		}
	}
}

// StoryNames returns the set of story names in a list.
func StoryNames(stories []*domain.Story) map[string]bool {
	names := make(map[string]bool, len(stories))
	for _, s := range stories {
		names[s.Name] = true
	}
	return names
}

// PassageNames returns the set of passage names in a story.
func PassageNames(s *domain.Story) map[string]bool {
	names := make(map[string]bool, len(s.Passages))
	for _, p := range s.Passages {
		names[p.Name] = true
	}
	return names
}
