package domain

import "slices"

// Passage is a single named unit of story text placed on the story map.
type Passage struct {
	ID string `json:"id" mapstructure:"id"`
	// Story is the id of the owning story. The story owns the passage; this is a copy.
	Story  string   `json:"story" mapstructure:"story"`
	Name   string   `json:"name" mapstructure:"name"`
	Text   string   `json:"text" mapstructure:"text"`
	Tags   []string `json:"tags" mapstructure:"tags"`
	Left   float64  `json:"left" mapstructure:"left"`
	Top    float64  `json:"top" mapstructure:"top"`
	Width  float64  `json:"width" mapstructure:"width"`
	Height float64  `json:"height" mapstructure:"height"`

	// UI state, never persisted.
	Selected    bool `json:"-" mapstructure:"-"`
	Highlighted bool `json:"-" mapstructure:"-"`
}

// NewPassage returns a passage populated with schema defaults.
func NewPassage() *Passage {
	return &Passage{
		Name:   DefaultPassageName,
		Tags:   []string{},
		Width:  DefaultPassageWidth,
		Height: DefaultPassageHeight,
	}
}

// Clone returns a copy of the passage with its own tag slice.
func (p *Passage) Clone() *Passage {
	cp := *p
	cp.Tags = slices.Clone(p.Tags)
	return &cp
}

// HasTag reports whether the passage carries the tag.
func (p *Passage) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// Overlaps reports whether two passages' rectangles intersect.
func (p *Passage) Overlaps(o *Passage) bool {
	return p.Left < o.Left+o.Width &&
		o.Left < p.Left+p.Width &&
		p.Top < o.Top+o.Height &&
		o.Top < p.Top+p.Height
}
