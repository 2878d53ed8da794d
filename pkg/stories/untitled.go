package stories

import (
	"math"

	"github.com/aretw0/quire/pkg/domain"
)

const gridSize = 25.0

// UntitledPassage returns props for a new passage with an unused default name, placed
// as close to (left, top) as possible without overlapping existing passages.
func UntitledPassage(s *domain.Story, left, top float64) PassageProps {
	name := UnusedName(domain.DefaultPassageName, PassageNames(s))

	p := domain.NewPassage()
	p.Left, p.Top = math.Max(left, 0), math.Max(top, 0)
	if s.SnapToGrid {
		snap(p)
	}
	for range 1000 {
		blocker := overlapping(s, p)
		if blocker == nil {
			break
		}
		p.Left = blocker.Left + blocker.Width + gridSize
		if s.SnapToGrid {
			snap(p)
		}
	}

	return PassageProps{
		Name:   &name,
		Text:   Ptr(""),
		Left:   &p.Left,
		Top:    &p.Top,
		Width:  &p.Width,
		Height: &p.Height,
	}
}

func snap(p *domain.Passage) {
	p.Left = math.Round(p.Left/gridSize) * gridSize
	p.Top = math.Round(p.Top/gridSize) * gridSize
}

func overlapping(s *domain.Story, p *domain.Passage) *domain.Passage {
	for _, o := range s.Passages {
		if o.Overlaps(p) {
			return o
		}
	}
	return nil
}
