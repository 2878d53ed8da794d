package dsl

import "github.com/aretw0/quire/pkg/domain"

// PassageBuilder provides a fluent API for configuring a passage.
type PassageBuilder struct {
	passage *domain.Passage
	builder *Builder
	index   int
	placed  bool
}

// Text appends a paragraph to the passage text.
func (p *PassageBuilder) Text(content string) *PassageBuilder {
	if p.passage.Text != "" {
		p.passage.Text += "\n\n"
	}
	p.passage.Text += content
	return p
}

// Go appends a simple link to the target passage.
func (p *PassageBuilder) Go(target string) *PassageBuilder {
	return p.Text("[[" + target + "]]")
}

// Link appends a link whose visible label differs from the target passage.
func (p *PassageBuilder) Link(label, target string) *PassageBuilder {
	if label == target {
		return p.Go(target)
	}
	return p.Text("[[" + label + "->" + target + "]]")
}

// Tags adds passage tags.
func (p *PassageBuilder) Tags(tags ...string) *PassageBuilder {
	for _, t := range tags {
		if !p.passage.HasTag(t) {
			p.passage.Tags = append(p.passage.Tags, t)
		}
	}
	return p
}

// At places the passage on the story map.
func (p *PassageBuilder) At(left, top float64) *PassageBuilder {
	p.passage.Left = left
	p.passage.Top = top
	p.placed = true
	return p
}

// Size overrides the default passage size.
func (p *PassageBuilder) Size(width, height float64) *PassageBuilder {
	p.passage.Width = width
	p.passage.Height = height
	return p
}

// Start marks the passage as the start passage.
func (p *PassageBuilder) Start() *PassageBuilder {
	p.builder.start = p.passage.Name
	return p
}

// Add continues with another passage of the same story.
func (p *PassageBuilder) Add(name string) *PassageBuilder {
	return p.builder.Add(name)
}
