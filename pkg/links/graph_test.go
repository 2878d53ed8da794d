package links_test

import (
	"testing"

	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/links"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func story(passages ...*domain.Passage) *domain.Story {
	s := domain.NewStory()
	s.ID = "s1"
	s.Passages = passages
	if len(passages) > 0 {
		s.StartPassage = passages[0].ID
	}
	return s
}

func TestBuild_Classification(t *testing.T) {
	start := &domain.Passage{ID: "1", Name: "Start", Text: "[[Start]] [[Cellar]] [[Nowhere]]"}
	cellar := &domain.Passage{ID: "2", Name: "Cellar", Text: "Dark."}

	g := links.Build(story(start, cellar))
	require.Len(t, g.Links, 3)

	assert.Equal(t, links.KindSelf, g.Links[0].Kind)
	assert.Same(t, start, g.Links[0].To)

	assert.Equal(t, links.KindOrdinary, g.Links[1].Kind)
	assert.Same(t, cellar, g.Links[1].To)

	assert.Equal(t, links.KindBroken, g.Links[2].Kind)
	assert.Nil(t, g.Links[2].To)
	assert.Equal(t, "Nowhere", g.Links[2].Target)

	assert.Len(t, g.To("2"), 1)
	assert.Len(t, g.From("2"), 0)
}

func TestBuild_NormalizedNames(t *testing.T) {
	from := &domain.Passage{ID: "1", Name: "Start", Text: "[[Cafe\u0301]]"}
	to := &domain.Passage{ID: "2", Name: "Caf\u00e9"}

	g := links.Build(story(from, to))
	require.Len(t, g.Links, 1)
	assert.Equal(t, links.KindOrdinary, g.Links[0].Kind)
}

func TestStoryStats_BrokenLink(t *testing.T) {
	s := story(&domain.Passage{ID: "1", Name: "Start", Text: "[[Nowhere]]"})

	g := links.Build(s)
	assert.Len(t, g.OfKind(links.KindBroken), 1)

	stats := links.StoryStats(s)
	assert.Equal(t, 1, stats.BrokenLinks)
	assert.Equal(t, 1, stats.Links)
	assert.Equal(t, 1, stats.Passages)
	assert.Equal(t, 1, stats.Words)
	assert.Equal(t, 11, stats.Characters)
}

func TestStoryStats_Counts(t *testing.T) {
	s := story(
		&domain.Passage{ID: "1", Name: "Start", Text: "Go [[North]] or [[South]]."},
		&domain.Passage{ID: "2", Name: "North", Text: "Cold. [[Start]] [[South]]"},
	)

	stats := links.StoryStats(s)
	assert.Equal(t, 2, stats.Passages)
	assert.Equal(t, 3, stats.Links)
	assert.Equal(t, 1, stats.BrokenLinks)
	assert.Equal(t, 7, stats.Words)
}

func TestGraph_Unreachable(t *testing.T) {
	start := &domain.Passage{ID: "1", Name: "Start", Text: "[[A]]"}
	a := &domain.Passage{ID: "2", Name: "A", Text: "[[Start]]"}
	orphan := &domain.Passage{ID: "3", Name: "Orphan", Text: "[[A]]"}
	s := story(start, a, orphan)

	got := links.Build(s).Unreachable(s)
	require.Len(t, got, 1)
	assert.Same(t, orphan, got[0])
}
