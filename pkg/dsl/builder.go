package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/quire/pkg/adapters/memory"
	"github.com/aretw0/quire/pkg/domain"
)

// gridGap separates passages laid out automatically.
const gridGap = 25

// columns is the width, in passages, of the automatic layout.
const columns = 5

// ErrNoPassages is returned when building a story with no passages.
var ErrNoPassages = errors.New("story has no passages")

// Builder manages the story construction.
type Builder struct {
	story *domain.Story
	order []*PassageBuilder
	byKey map[string]*PassageBuilder
	start string
	ids   domain.IDGenerator
}

// Option configures a Builder.
type Option func(*Builder)

// WithIDGenerator sets how story, passage and IFID identifiers are produced.
func WithIDGenerator(ids domain.IDGenerator) Option {
	return func(b *Builder) {
		b.ids = ids
	}
}

// New creates a new story builder.
func New(name string, opts ...Option) *Builder {
	story := domain.NewStory()
	story.Name = name
	b := &Builder{
		story: story,
		byKey: make(map[string]*PassageBuilder),
		ids:   domain.UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Format binds the story to a story format.
func (b *Builder) Format(name, version string) *Builder {
	b.story.StoryFormat = name
	b.story.StoryFormatVersion = version
	return b
}

// Stylesheet sets the story stylesheet.
func (b *Builder) Stylesheet(css string) *Builder {
	b.story.Stylesheet = css
	return b
}

// Script sets the story JavaScript.
func (b *Builder) Script(js string) *Builder {
	b.story.Script = js
	return b
}

// Tag adds story tags.
func (b *Builder) Tag(tags ...string) *Builder {
	b.story.Tags = append(b.story.Tags, tags...)
	return b
}

// TagColor assigns a color to a passage tag.
func (b *Builder) TagColor(tag string, color domain.Color) *Builder {
	b.story.TagColors[tag] = color
	return b
}

// Add creates a new passage in the story.
// If the passage already exists, it returns the existing builder.
func (b *Builder) Add(name string) *PassageBuilder {
	if pb, ok := b.byKey[name]; ok {
		return pb
	}
	p := domain.NewPassage()
	p.Name = name
	pb := &PassageBuilder{passage: p, builder: b, index: len(b.order)}
	b.byKey[name] = pb
	b.order = append(b.order, pb)
	return pb
}

// Story assembles the story. Passages without a position are laid out on a grid,
// and the first passage added is the start passage unless one was marked.
func (b *Builder) Story() (*domain.Story, error) {
	if len(b.order) == 0 {
		return nil, fmt.Errorf("%s: %w", b.story.Name, ErrNoPassages)
	}

	s := b.story.DeepClone()
	s.ID = b.ids.NewID()
	s.IFID = b.ids.NewIFID()
	s.Passages = make([]*domain.Passage, 0, len(b.order))
	for _, pb := range b.order {
		p := pb.passage.Clone()
		p.ID = b.ids.NewID()
		p.Story = s.ID
		if !pb.placed {
			p.Left = float64(pb.index%columns) * (domain.DefaultPassageWidth + gridGap)
			p.Top = float64(pb.index/columns) * (domain.DefaultPassageHeight + gridGap)
		}
		s.Passages = append(s.Passages, p)
		if pb.passage.Name == b.start || (b.start == "" && s.StartPassage == "") {
			s.StartPassage = p.ID
		}
	}
	return s, nil
}

// Build compiles the story into a memory source.
func (b *Builder) Build() (*memory.Source, error) {
	s, err := b.Story()
	if err != nil {
		return nil, fmt.Errorf("failed to build story: %w", err)
	}
	return memory.NewSource(s), nil
}
