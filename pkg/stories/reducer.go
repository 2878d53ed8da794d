package stories

import (
	"math"
	"slices"

	"github.com/aretw0/quire/pkg/domain"
)

// Reducer applies story actions to a list of stories.
type Reducer struct {
	config
}

// NewReducer creates a story reducer.
func NewReducer(opts ...Option) *Reducer {
	return &Reducer{config: newConfig(opts)}
}

// Reduce returns the state after applying action. The input is never mutated.
func (r *Reducer) Reduce(state []*domain.Story, action Action) []*domain.Story {
	switch a := action.(type) {
	case Init:
		return slices.Clone(a.Stories)
	case CreateStory:
		return r.createStory(state, a)
	case UpdateStory:
		return r.updateStory(state, a)
	case DeleteStory:
		return r.deleteStory(state, a)
	case CreatePassage:
		return r.createPassage(state, a)
	case CreatePassages:
		for _, props := range a.Props {
			state = r.createPassage(state, CreatePassage{StoryID: a.StoryID, Props: props})
		}
		return state
	case UpdatePassage:
		return r.updatePassage(state, a)
	case UpdatePassages:
		for _, u := range a.Updates {
			state = r.updatePassage(state, UpdatePassage{StoryID: a.StoryID, PassageID: u.PassageID, Props: u.Props})
		}
		return state
	case DeletePassage:
		return r.deletePassage(state, a)
	case DeletePassages:
		for _, id := range a.PassageIDs {
			state = r.deletePassage(state, DeletePassage{StoryID: a.StoryID, PassageID: id})
		}
		return state
	case RepairStories:
		return repair(r.config, state, a.Formats, a.Default)
	}
	r.logger.Warn("Ignored unknown story action", "action", action.Type())
	return state
}

func (r *Reducer) reject(action Action, reason string, args ...any) {
	r.logger.Warn("Rejected story action: "+reason, append([]any{"action", action.Type()}, args...)...)
	r.observer.Rejected(action.Type(), reason)
}

func (r *Reducer) createStory(state []*domain.Story, a CreateStory) []*domain.Story {
	s := domain.NewStory()
	s.ID = a.ID
	if s.ID == "" {
		s.ID = r.ids.NewID()
	} else if domain.StoryByID(state, s.ID) != nil {
		r.reject(a, "duplicate story id", "story_id", s.ID)
		return state
	}
	s.IFID = a.IFID
	if s.IFID == "" {
		s.IFID = r.ids.NewIFID()
	}
	a.Props.apply(s)
	if domain.StoryByName(state, s.Name) != nil {
		r.reject(a, "duplicate story name", "story_name", s.Name)
		return state
	}

	ids := make(map[string]bool, len(a.Passages))
	names := make(map[string]bool, len(a.Passages))
	for _, src := range a.Passages {
		if src == nil {
			r.reject(a, "nil passage in new story")
			return state
		}
		p := src.Clone()
		if p.ID == "" {
			p.ID = r.ids.NewID()
		}
		if ids[p.ID] || names[p.Name] {
			r.reject(a, "duplicate passage in new story", "passage_id", p.ID, "passage_name", p.Name)
			return state
		}
		ids[p.ID], names[p.Name] = true, true
		p.Story = s.ID
		normalizeGeometry(p)
		s.Passages = append(s.Passages, p)
	}
	s.LastUpdate = r.now()
	return append(slices.Clone(state), s)
}

func (r *Reducer) updateStory(state []*domain.Story, a UpdateStory) []*domain.Story {
	i := indexOfStory(state, a.StoryID)
	if i < 0 {
		r.reject(a, "story does not exist", "story_id", a.StoryID)
		return state
	}
	fields := a.Props.Fields()
	if len(fields) == 0 {
		return state
	}
	old := state[i]
	if a.Props.Name != nil && *a.Props.Name != old.Name {
		if domain.StoryByName(state, *a.Props.Name) != nil {
			r.reject(a, "duplicate story name", "story_id", a.StoryID, "story_name", *a.Props.Name)
			return state
		}
	}
	s := old.Clone()
	a.Props.apply(s)
	if IsPersistableStoryChange(fields) {
		s.LastUpdate = r.now()
	}
	next := slices.Clone(state)
	next[i] = s
	return next
}

func (r *Reducer) deleteStory(state []*domain.Story, a DeleteStory) []*domain.Story {
	i := indexOfStory(state, a.StoryID)
	if i < 0 {
		r.reject(a, "story does not exist", "story_id", a.StoryID)
		return state
	}
	return slices.Delete(slices.Clone(state), i, i+1)
}

func (r *Reducer) createPassage(state []*domain.Story, a CreatePassage) []*domain.Story {
	i := indexOfStory(state, a.StoryID)
	if i < 0 {
		r.reject(a, "story does not exist", "story_id", a.StoryID)
		return state
	}
	old := state[i]
	p := domain.NewPassage()
	a.Props.apply(p)
	p.ID = a.ID
	if p.ID == "" {
		p.ID = r.ids.NewID()
	} else if old.PassageByID(p.ID) != nil {
		r.reject(a, "duplicate passage id", "story_id", old.ID, "passage_id", p.ID)
		return state
	}
	if old.PassageByName(p.Name) != nil {
		r.reject(a, "duplicate passage name", "story_id", old.ID, "passage_name", p.Name)
		return state
	}
	p.Story = old.ID
	normalizeGeometry(p)

	s := old.Clone()
	s.Passages = append(s.Passages, p)
	s.LastUpdate = r.now()
	next := slices.Clone(state)
	next[i] = s
	return next
}

func (r *Reducer) updatePassage(state []*domain.Story, a UpdatePassage) []*domain.Story {
	i := indexOfStory(state, a.StoryID)
	if i < 0 {
		r.reject(a, "story does not exist", "story_id", a.StoryID)
		return state
	}
	old := state[i]
	j := indexOfPassage(old, a.PassageID)
	if j < 0 {
		r.reject(a, "passage does not exist", "story_id", old.ID, "passage_id", a.PassageID)
		return state
	}
	fields := a.Props.Fields()
	if len(fields) == 0 {
		return state
	}
	if a.Props.Name != nil && *a.Props.Name != old.Passages[j].Name {
		if old.PassageByName(*a.Props.Name) != nil {
			r.reject(a, "duplicate passage name", "story_id", old.ID, "passage_name", *a.Props.Name)
			return state
		}
	}
	p := old.Passages[j].Clone()
	a.Props.apply(p)
	normalizeGeometry(p)

	s := old.Clone()
	s.Passages[j] = p
	if IsPersistablePassageChange(fields) {
		s.LastUpdate = r.now()
	}
	next := slices.Clone(state)
	next[i] = s
	return next
}

func (r *Reducer) deletePassage(state []*domain.Story, a DeletePassage) []*domain.Story {
	i := indexOfStory(state, a.StoryID)
	if i < 0 {
		r.reject(a, "story does not exist", "story_id", a.StoryID)
		return state
	}
	old := state[i]
	j := indexOfPassage(old, a.PassageID)
	if j < 0 {
		r.reject(a, "passage does not exist", "story_id", old.ID, "passage_id", a.PassageID)
		return state
	}
	s := old.Clone()
	s.Passages = slices.Delete(s.Passages, j, j+1)
	if s.StartPassage == a.PassageID {
		r.logger.Info("Cleared start passage of story", "story_id", s.ID, "passage_id", a.PassageID)
		s.StartPassage = ""
	}
	s.LastUpdate = r.now()
	next := slices.Clone(state)
	next[i] = s
	return next
}

func indexOfStory(state []*domain.Story, id string) int {
	return slices.IndexFunc(state, func(s *domain.Story) bool { return s.ID == id })
}

func indexOfPassage(s *domain.Story, id string) int {
	return slices.IndexFunc(s.Passages, func(p *domain.Passage) bool { return p.ID == id })
}

// normalizeGeometry enforces non-negative position and the minimum size in place.
// It reports whether anything changed.
func normalizeGeometry(p *domain.Passage) bool {
	changed := false
	fix := func(v *float64, lo, def float64) {
		n := *v
		if math.IsNaN(n) || math.IsInf(n, 0) {
			n = def
		}
		n = math.Max(n, lo)
		if n != *v {
			*v = n
			changed = true
		}
	}
	fix(&p.Left, 0, 0)
	fix(&p.Top, 0, 0)
	fix(&p.Width, domain.MinPassageSize, domain.DefaultPassageWidth)
	fix(&p.Height, domain.MinPassageSize, domain.DefaultPassageHeight)
	return changed
}
