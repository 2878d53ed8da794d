package links

import (
	"github.com/aretw0/quire/pkg/domain"
	"golang.org/x/text/unicode/norm"
)

// Kind classifies a link relative to its source passage.
type Kind string

const (
	// KindOrdinary links resolve to a different, existing passage.
	KindOrdinary Kind = "ordinary"
	// KindSelf links point back at their own passage.
	KindSelf Kind = "self"
	// KindBroken links name a passage that does not exist.
	KindBroken Kind = "broken"
)

// Link is one edge of a story's link graph.
type Link struct {
	From *domain.Passage
	// To is nil for broken links.
	To     *domain.Passage
	Target string
	Kind   Kind
}

// Graph holds every internal link of a story, in passage order then text order.
type Graph struct {
	Links []Link
}

// Build extracts and classifies the internal links of every passage in the story.
// Names are compared after NFC normalization.
func Build(story *domain.Story) *Graph {
	byName := make(map[string]*domain.Passage, len(story.Passages))
	for _, p := range story.Passages {
		key := norm.NFC.String(p.Name)
		if _, exists := byName[key]; !exists {
			byName[key] = p
		}
	}

	g := &Graph{}
	for _, from := range story.Passages {
		for _, target := range ParseInternal(from.Text) {
			link := Link{From: from, Target: target}
			to, ok := byName[norm.NFC.String(target)]
			switch {
			case !ok:
				link.Kind = KindBroken
			case to == from:
				link.To = to
				link.Kind = KindSelf
			default:
				link.To = to
				link.Kind = KindOrdinary
			}
			g.Links = append(g.Links, link)
		}
	}
	return g
}

// From returns the links whose source is the passage with the given id.
func (g *Graph) From(passageID string) []Link {
	var out []Link
	for _, l := range g.Links {
		if l.From.ID == passageID {
			out = append(out, l)
		}
	}
	return out
}

// To returns the links that resolve to the passage with the given id.
func (g *Graph) To(passageID string) []Link {
	var out []Link
	for _, l := range g.Links {
		if l.To != nil && l.To.ID == passageID {
			out = append(out, l)
		}
	}
	return out
}

// OfKind returns the links of one kind.
func (g *Graph) OfKind(kind Kind) []Link {
	var out []Link
	for _, l := range g.Links {
		if l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}

// Unreachable returns the passages that cannot be reached from the story's start
// passage by following ordinary links. It returns nil when the story has no start.
func (g *Graph) Unreachable(story *domain.Story) []*domain.Passage {
	start := story.Start()
	if start == nil {
		return nil
	}

	visited := map[string]bool{start.ID: true}
	queue := []*domain.Passage{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, l := range g.From(current.ID) {
			if l.Kind != KindOrdinary || visited[l.To.ID] {
				continue
			}
			visited[l.To.ID] = true
			queue = append(queue, l.To)
		}
	}

	var out []*domain.Passage
	for _, p := range story.Passages {
		if !visited[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
