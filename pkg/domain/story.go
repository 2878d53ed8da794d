package domain

import (
	"slices"
	"sort"
	"time"
)

// Story is a named collection of passages bound to a story format.
type Story struct {
	ID   string `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
	// IFID is the identifier used by interactive-fiction catalogues. It is generated
	// independently from ID and kept across imports.
	IFID string `json:"ifid" mapstructure:"ifid"`

	Passages     []*Passage `json:"passages" mapstructure:"passages"`
	StartPassage string     `json:"startPassage" mapstructure:"startPassage"`

	// StoryFormat and StoryFormatVersion reference a format in the pool by value.
	// They are resolved on demand, never held as a pointer.
	StoryFormat        string `json:"storyFormat" mapstructure:"storyFormat"`
	StoryFormatVersion string `json:"storyFormatVersion" mapstructure:"storyFormatVersion"`

	Stylesheet string           `json:"stylesheet" mapstructure:"stylesheet"`
	Script     string           `json:"script" mapstructure:"script"`
	Zoom       float64          `json:"zoom" mapstructure:"zoom"`
	SnapToGrid bool             `json:"snapToGrid" mapstructure:"snapToGrid"`
	Tags       []string         `json:"tags" mapstructure:"tags"`
	TagColors  map[string]Color `json:"tagColors" mapstructure:"tagColors"`
	LastUpdate time.Time        `json:"lastUpdate" mapstructure:"lastUpdate"`

	// Selected is UI state. It is never persisted and takes no part in invariants.
	Selected bool `json:"-" mapstructure:"-"`
}

// NewStory returns a story populated with schema defaults. The caller assigns ids.
func NewStory() *Story {
	return &Story{
		Name:       DefaultStoryName,
		Passages:   []*Passage{},
		Zoom:       DefaultZoom,
		SnapToGrid: true,
		Tags:       []string{},
		TagColors:  map[string]Color{},
	}
}

// Clone returns a shallow copy of the story with its own passages slice, tag slice and
// tag color map. Passages themselves are shared.
func (s *Story) Clone() *Story {
	cp := *s
	cp.Passages = slices.Clone(s.Passages)
	cp.Tags = slices.Clone(s.Tags)
	if s.TagColors != nil {
		cp.TagColors = make(map[string]Color, len(s.TagColors))
		for k, v := range s.TagColors {
			cp.TagColors[k] = v
		}
	}
	return &cp
}

// PassageByID returns the passage with the given id, or nil.
func (s *Story) PassageByID(id string) *Passage {
	for _, p := range s.Passages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PassageByName returns the passage with the given name, or nil.
func (s *Story) PassageByName(name string) *Passage {
	for _, p := range s.Passages {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Start returns the start passage, or nil when unset or dangling.
func (s *Story) Start() *Passage {
	if s.StartPassage == "" {
		return nil
	}
	return s.PassageByID(s.StartPassage)
}

// AllTags returns every tag referenced by the story or any of its passages, sorted.
func (s *Story) AllTags() []string {
	seen := make(map[string]bool)
	for _, t := range s.Tags {
		seen[t] = true
	}
	for _, p := range s.Passages {
		for _, t := range p.Tags {
			seen[t] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Format returns the story's format binding.
func (s *Story) Format() FormatRef {
	return FormatRef{Name: s.StoryFormat, Version: s.StoryFormatVersion}
}

// StoryByID returns the story with the given id from a list, or nil.
func StoryByID(stories []*Story, id string) *Story {
	for _, s := range stories {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// StoryByName returns the story with the given name from a list, or nil.
func StoryByName(stories []*Story, name string) *Story {
	for _, s := range stories {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// DeepClone returns a copy of the story that shares nothing with the original.
func (s *Story) DeepClone() *Story {
	cp := s.Clone()
	for i, p := range cp.Passages {
		if p != nil {
			cp.Passages[i] = p.Clone()
		}
	}
	return cp
}
