package formats

import (
	"fmt"

	"github.com/aretw0/quire/pkg/domain"
)

// Match describes how Resolve chose a format.
type Match string

const (
	MatchExact      Match = "exact"
	MatchCompatible Match = "compatible"
	MatchDefault    Match = "default"
)

// FormatWithNameAndVersion returns the pool entry with exactly this name and version.
func FormatWithNameAndVersion(formats []*domain.StoryFormat, name, version string) (*domain.StoryFormat, error) {
	for _, f := range formats {
		if f.Name == name && f.Version == version {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s", domain.ErrFormatNotFound, name, version)
}

// FormatWithID returns the pool entry with the given id.
func FormatWithID(formats []*domain.StoryFormat, id string) (*domain.StoryFormat, error) {
	for _, f := range formats {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: id %s", domain.ErrFormatNotFound, id)
}

// ResolveRef decides which format reference a story bound to ref should use. It never
// fails: when nothing in the pool matches, the fallback is returned as is.
func ResolveRef(formats []*domain.StoryFormat, ref, fallback domain.FormatRef) (domain.FormatRef, Match) {
	if ref.IsZero() {
		return fallback, MatchDefault
	}
	if f, err := FormatWithNameAndVersion(formats, ref.Name, ref.Version); err == nil {
		return f.Ref(), MatchExact
	}
	for _, f := range formats {
		if f.Name == ref.Name && SatisfiesCaret(f.Version, ref.Version) {
			return f.Ref(), MatchCompatible
		}
	}
	return fallback, MatchDefault
}

// Resolve returns the pool entry a story bound to ref should use: an exact match, else
// the first same-name entry satisfying ^ref.Version, else the fallback format.
// It fails only when the fallback itself is missing from the pool.
func Resolve(formats []*domain.StoryFormat, ref, fallback domain.FormatRef) (*domain.StoryFormat, error) {
	resolved, _ := ResolveRef(formats, ref, fallback)
	f, err := FormatWithNameAndVersion(formats, resolved.Name, resolved.Version)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref, err)
	}
	return f, nil
}

// Newest returns the highest version of each format name, in first-seen name order.
func Newest(formats []*domain.StoryFormat) []*domain.StoryFormat {
	var order []string
	best := make(map[string]*domain.StoryFormat)
	for _, f := range formats {
		cur, ok := best[f.Name]
		if !ok {
			order = append(order, f.Name)
			best[f.Name] = f
			continue
		}
		if CompareVersions(f.Version, cur.Version) > 0 {
			best[f.Name] = f
		}
	}

	out := make([]*domain.StoryFormat, 0, len(order))
	for _, name := range order {
		out = append(out, best[name])
	}
	return out
}
