package domain

// StoryDiff lists the stories that differ between two library snapshots.
// Stories are compared by pointer: the reducers return the same pointer for an
// untouched story, so any new pointer is a change worth persisting.
type StoryDiff struct {
	Added   []*Story `json:"added,omitempty"`
	Changed []*Story `json:"changed,omitempty"`
	// Removed holds the ids of stories present in the old snapshot only.
	Removed []string `json:"removed,omitempty"`
}

// Diff calculates the difference between two snapshots.
// If old is nil, every story in next is reported as added (initial load).
func Diff(old, next []*Story) *StoryDiff {
	diff := &StoryDiff{}

	before := make(map[string]*Story, len(old))
	for _, s := range old {
		before[s.ID] = s
	}

	seen := make(map[string]bool, len(next))
	for _, s := range next {
		seen[s.ID] = true
		prev, ok := before[s.ID]
		switch {
		case !ok:
			diff.Added = append(diff.Added, s)
		case prev != s:
			diff.Changed = append(diff.Changed, s)
		}
	}

	for _, s := range old {
		if !seen[s.ID] {
			diff.Removed = append(diff.Removed, s.ID)
		}
	}

	return diff
}

// IsEmpty checks if the diff contains any changes.
func (d *StoryDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}
