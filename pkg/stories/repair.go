package stories

import (
	"math"
	"slices"

	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/formats"
)

// Correction describes a single field healed by Repair.
type Correction struct {
	StoryID   string
	PassageID string
	Field     string
	Old       any
	New       any
}

// Repair restores the data model invariants over a list of stories that may come from
// foreign or outdated sources. Story format references are resolved against pool, falling
// back to def. Valid stories and passages are returned as the same pointer, and when
// nothing needed fixing the input slice itself is returned.
func Repair(stories []*domain.Story, pool []*domain.StoryFormat, def domain.FormatRef, opts ...Option) []*domain.Story {
	return repair(newConfig(opts), stories, pool, def)
}

func repair(c config, stories []*domain.Story, pool []*domain.StoryFormat, def domain.FormatRef) []*domain.Story {
	r := &repairer{config: c, pool: pool, def: def}

	names := make(map[string]bool, len(stories))
	for _, s := range stories {
		if s != nil {
			names[s.Name] = true
		}
	}
	seenIDs := make(map[string]bool, len(stories))
	seenNames := make(map[string]bool, len(stories))

	var out []*domain.Story
	for i, s := range stories {
		fixed := r.story(s, seenIDs, seenNames, names)
		if fixed != s && out == nil {
			out = slices.Clone(stories)
		}
		if out != nil {
			out[i] = fixed
		}
	}
	if out == nil {
		return stories
	}
	return out
}

type repairer struct {
	config
	pool []*domain.StoryFormat
	def  domain.FormatRef
}

func (r *repairer) record(c Correction) {
	r.logger.Info("Repaired field",
		"story_id", c.StoryID, "passage_id", c.PassageID,
		"field", c.Field, "old", c.Old, "new", c.New)
	r.observer.Corrected(c)
}

// story repairs one story. allNames holds every story name in the list so that
// renamed duplicates never take a name a later story already uses.
func (r *repairer) story(orig *domain.Story, seenIDs, seenNames, allNames map[string]bool) *domain.Story {
	var s *domain.Story
	if orig == nil {
		s = domain.NewStory()
		r.record(Correction{Field: "story", Old: nil, New: "new story"})
	}
	edit := func() *domain.Story {
		if s == nil {
			s = orig.Clone()
		}
		return s
	}
	cur := func() *domain.Story {
		if s != nil {
			return s
		}
		return orig
	}
	fix := func(field string, old, next any, apply func(*domain.Story)) {
		apply(edit())
		r.record(Correction{StoryID: cur().ID, Field: field, Old: old, New: next})
	}

	if cur().ID == "" {
		id := r.ids.NewID()
		fix(domain.FieldID, "", id, func(s *domain.Story) { s.ID = id })
	}
	if cur().IFID == "" {
		ifid := r.ids.NewIFID()
		fix(domain.FieldIFID, "", ifid, func(s *domain.Story) { s.IFID = ifid })
	}

	if cur().Name == "" {
		name := UnusedName(domain.DefaultStoryName, allNames)
		allNames[name] = true
		fix(domain.FieldName, "", name, func(s *domain.Story) { s.Name = name })
	}
	if cur().Passages == nil {
		fix(domain.FieldPassages, nil, "[]", func(s *domain.Story) { s.Passages = []*domain.Passage{} })
	}
	if cur().Tags == nil {
		fix(domain.FieldTags, nil, "[]", func(s *domain.Story) { s.Tags = []string{} })
	} else if d := dedupe(cur().Tags); len(d) != len(cur().Tags) {
		fix(domain.FieldTags, cur().Tags, d, func(s *domain.Story) { s.Tags = d })
	}
	if cur().TagColors == nil {
		fix(domain.FieldTagColors, nil, "{}", func(s *domain.Story) { s.TagColors = map[string]domain.Color{} })
	} else {
		for tag, color := range cur().TagColors {
			if !color.Valid() {
				fix(domain.FieldTagColors, string(color), nil, func(s *domain.Story) { delete(s.TagColors, tag) })
			}
		}
	}
	if z := cur().Zoom; math.IsNaN(z) || math.IsInf(z, 0) || z <= 0 {
		fix(domain.FieldZoom, z, domain.DefaultZoom, func(s *domain.Story) { s.Zoom = domain.DefaultZoom })
	}

	want := r.def
	if ref := cur().Format(); ref.Name != "" && ref.Version != "" {
		want, _ = formats.ResolveRef(r.pool, ref, r.def)
	}
	if cur().StoryFormat != want.Name {
		fix(domain.FieldStoryFormat, cur().StoryFormat, want.Name, func(s *domain.Story) { s.StoryFormat = want.Name })
	}
	if cur().StoryFormatVersion != want.Version {
		fix(domain.FieldStoryFormatVersion, cur().StoryFormatVersion, want.Version,
			func(s *domain.Story) { s.StoryFormatVersion = want.Version })
	}

	if seenIDs[cur().ID] {
		id := r.ids.NewID()
		fix(domain.FieldID, cur().ID, id, func(s *domain.Story) { s.ID = id })
	}
	seenIDs[cur().ID] = true
	if seenNames[cur().Name] {
		name := UnusedName(cur().Name, allNames)
		allNames[name] = true
		fix(domain.FieldName, cur().Name, name, func(s *domain.Story) { s.Name = name })
	}
	seenNames[cur().Name] = true
	allNames[cur().Name] = true

	passageNames := make(map[string]bool, len(cur().Passages))
	for _, p := range cur().Passages {
		if p != nil {
			passageNames[p.Name] = true
		}
	}
	seenPassageIDs := make(map[string]bool, len(cur().Passages))
	seenPassageNames := make(map[string]bool, len(cur().Passages))
	for i, p := range cur().Passages {
		fixed := r.passage(cur().ID, p, seenPassageIDs, seenPassageNames, passageNames)
		if fixed != p {
			edit().Passages[i] = fixed
		}
	}

	if s == nil {
		return orig
	}
	return s
}

func (r *repairer) passage(storyID string, orig *domain.Passage, seenIDs, seenNames, allNames map[string]bool) *domain.Passage {
	var p *domain.Passage
	if orig == nil {
		p = domain.NewPassage()
		r.record(Correction{StoryID: storyID, Field: "passage", Old: nil, New: "new passage"})
	}
	edit := func() *domain.Passage {
		if p == nil {
			p = orig.Clone()
		}
		return p
	}
	cur := func() *domain.Passage {
		if p != nil {
			return p
		}
		return orig
	}
	fix := func(field string, old, next any, apply func(*domain.Passage)) {
		apply(edit())
		r.record(Correction{StoryID: storyID, PassageID: cur().ID, Field: field, Old: old, New: next})
	}

	if cur().ID == "" {
		id := r.ids.NewID()
		fix(domain.FieldID, "", id, func(p *domain.Passage) { p.ID = id })
	}

	if cur().Tags == nil {
		fix(domain.FieldTags, nil, "[]", func(p *domain.Passage) { p.Tags = []string{} })
	} else if d := dedupe(cur().Tags); len(d) != len(cur().Tags) {
		fix(domain.FieldTags, cur().Tags, d, func(p *domain.Passage) { p.Tags = d })
	}
	if cur().Name == "" {
		name := UnusedName(domain.DefaultPassageName, allNames)
		allNames[name] = true
		fix(domain.FieldName, "", name, func(p *domain.Passage) { p.Name = name })
	}

	geometry := []struct {
		field string
		get   func(*domain.Passage) *float64
		lo    float64
		def   float64
	}{
		{domain.FieldLeft, func(p *domain.Passage) *float64 { return &p.Left }, 0, 0},
		{domain.FieldTop, func(p *domain.Passage) *float64 { return &p.Top }, 0, 0},
		{domain.FieldWidth, func(p *domain.Passage) *float64 { return &p.Width }, domain.MinPassageSize, domain.DefaultPassageWidth},
		{domain.FieldHeight, func(p *domain.Passage) *float64 { return &p.Height }, domain.MinPassageSize, domain.DefaultPassageHeight},
	}
	// Non-finite values get their default first, then everything is clamped.
	for _, g := range geometry {
		if v := *g.get(cur()); math.IsNaN(v) || math.IsInf(v, 0) {
			fix(g.field, v, g.def, func(p *domain.Passage) { *g.get(p) = g.def })
		}
	}
	for _, g := range geometry {
		if v := *g.get(cur()); v < g.lo {
			fix(g.field, v, g.lo, func(p *domain.Passage) { *g.get(p) = g.lo })
		}
	}

	if cur().Story != storyID {
		fix(domain.FieldStory, cur().Story, storyID, func(p *domain.Passage) { p.Story = storyID })
	}

	if seenIDs[cur().ID] {
		id := r.ids.NewID()
		fix(domain.FieldID, cur().ID, id, func(p *domain.Passage) { p.ID = id })
	}
	seenIDs[cur().ID] = true
	if seenNames[cur().Name] {
		name := UnusedName(cur().Name, allNames)
		allNames[name] = true
		fix(domain.FieldName, cur().Name, name, func(p *domain.Passage) { p.Name = name })
	}
	seenNames[cur().Name] = true
	allNames[cur().Name] = true

	if p == nil {
		return orig
	}
	return p
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
