package stories

import (
	"github.com/aretw0/quire/pkg/domain"
)

// StoryProps is a partial story used by create and update actions.
// Nil pointers, a nil Tags slice and a nil TagColors map leave the field untouched;
// an empty non-nil slice or map clears it.
type StoryProps struct {
	Name               *string                 `json:"name,omitempty"`
	StartPassage       *string                 `json:"startPassage,omitempty"`
	StoryFormat        *string                 `json:"storyFormat,omitempty"`
	StoryFormatVersion *string                 `json:"storyFormatVersion,omitempty"`
	Stylesheet         *string                 `json:"stylesheet,omitempty"`
	Script             *string                 `json:"script,omitempty"`
	Zoom               *float64                `json:"zoom,omitempty"`
	SnapToGrid         *bool                   `json:"snapToGrid,omitempty"`
	Tags               []string                `json:"tags,omitempty"`
	TagColors          map[string]domain.Color `json:"tagColors,omitempty"`
	Selected           *bool                   `json:"selected,omitempty"`
}

// Fields returns the names of the fields the props set.
func (p StoryProps) Fields() []string {
	var f []string
	add := func(set bool, name string) {
		if set {
			f = append(f, name)
		}
	}
	add(p.Name != nil, domain.FieldName)
	add(p.StartPassage != nil, domain.FieldStartPassage)
	add(p.StoryFormat != nil, domain.FieldStoryFormat)
	add(p.StoryFormatVersion != nil, domain.FieldStoryFormatVersion)
	add(p.Stylesheet != nil, domain.FieldStylesheet)
	add(p.Script != nil, domain.FieldScript)
	add(p.Zoom != nil, domain.FieldZoom)
	add(p.SnapToGrid != nil, domain.FieldSnapToGrid)
	add(p.Tags != nil, domain.FieldTags)
	add(p.TagColors != nil, domain.FieldTagColors)
	add(p.Selected != nil, domain.FieldSelected)
	return f
}

func (p StoryProps) apply(s *domain.Story) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.StartPassage != nil {
		s.StartPassage = *p.StartPassage
	}
	if p.StoryFormat != nil {
		s.StoryFormat = *p.StoryFormat
	}
	if p.StoryFormatVersion != nil {
		s.StoryFormatVersion = *p.StoryFormatVersion
	}
	if p.Stylesheet != nil {
		s.Stylesheet = *p.Stylesheet
	}
	if p.Script != nil {
		s.Script = *p.Script
	}
	if p.Zoom != nil {
		s.Zoom = *p.Zoom
	}
	if p.SnapToGrid != nil {
		s.SnapToGrid = *p.SnapToGrid
	}
	if p.Tags != nil {
		s.Tags = append([]string{}, p.Tags...)
	}
	if p.TagColors != nil {
		s.TagColors = make(map[string]domain.Color, len(p.TagColors))
		for k, v := range p.TagColors {
			s.TagColors[k] = v
		}
	}
	if p.Selected != nil {
		s.Selected = *p.Selected
	}
}

// StoryPropsFrom captures every editable field of s.
func StoryPropsFrom(s *domain.Story) StoryProps {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	colors := s.TagColors
	if colors == nil {
		colors = map[string]domain.Color{}
	}
	return StoryProps{
		Name:               &s.Name,
		StartPassage:       &s.StartPassage,
		StoryFormat:        &s.StoryFormat,
		StoryFormatVersion: &s.StoryFormatVersion,
		Stylesheet:         &s.Stylesheet,
		Script:             &s.Script,
		Zoom:               &s.Zoom,
		SnapToGrid:         &s.SnapToGrid,
		Tags:               tags,
		TagColors:          colors,
	}
}

// PassageProps is a partial passage used by create and update actions.
type PassageProps struct {
	Name        *string  `json:"name,omitempty"`
	Text        *string  `json:"text,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Left        *float64 `json:"left,omitempty"`
	Top         *float64 `json:"top,omitempty"`
	Width       *float64 `json:"width,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	Selected    *bool    `json:"selected,omitempty"`
	Highlighted *bool    `json:"highlighted,omitempty"`
}

// Fields returns the names of the fields the props set.
func (p PassageProps) Fields() []string {
	var f []string
	add := func(set bool, name string) {
		if set {
			f = append(f, name)
		}
	}
	add(p.Name != nil, domain.FieldName)
	add(p.Text != nil, domain.FieldText)
	add(p.Tags != nil, domain.FieldTags)
	add(p.Left != nil, domain.FieldLeft)
	add(p.Top != nil, domain.FieldTop)
	add(p.Width != nil, domain.FieldWidth)
	add(p.Height != nil, domain.FieldHeight)
	add(p.Selected != nil, domain.FieldSelected)
	add(p.Highlighted != nil, domain.FieldHighlighted)
	return f
}

func (p PassageProps) apply(ps *domain.Passage) {
	if p.Name != nil {
		ps.Name = *p.Name
	}
	if p.Text != nil {
		ps.Text = *p.Text
	}
	if p.Tags != nil {
		ps.Tags = append([]string{}, p.Tags...)
	}
	if p.Left != nil {
		ps.Left = *p.Left
	}
	if p.Top != nil {
		ps.Top = *p.Top
	}
	if p.Width != nil {
		ps.Width = *p.Width
	}
	if p.Height != nil {
		ps.Height = *p.Height
	}
	if p.Selected != nil {
		ps.Selected = *p.Selected
	}
	if p.Highlighted != nil {
		ps.Highlighted = *p.Highlighted
	}
}

// PassagePropsFrom captures every editable field of p.
func PassagePropsFrom(p *domain.Passage) PassageProps {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PassageProps{
		Name:   &p.Name,
		Text:   &p.Text,
		Tags:   tags,
		Left:   &p.Left,
		Top:    &p.Top,
		Width:  &p.Width,
		Height: &p.Height,
	}
}

// Ptr returns a pointer to v. It keeps prop literals short.
func Ptr[T any](v T) *T {
	return &v
}
