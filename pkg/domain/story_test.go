package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStory_AllTags(t *testing.T) {
	s := NewStory()
	s.Tags = []string{"draft"}
	s.Passages = []*Passage{
		{ID: "1", Tags: []string{"scene", "draft"}},
		{ID: "2", Tags: []string{"act-one"}},
	}

	assert.Equal(t, []string{"act-one", "draft", "scene"}, s.AllTags())
}

func TestStory_Clone(t *testing.T) {
	s := NewStory()
	s.TagColors["x"] = ColorRed
	p := NewPassage()
	s.Passages = append(s.Passages, p)

	cp := s.Clone()
	cp.TagColors["x"] = ColorBlue
	cp.Passages = append(cp.Passages, NewPassage())

	assert.Equal(t, ColorRed, s.TagColors["x"])
	assert.Len(t, s.Passages, 1)
	assert.Same(t, p, cp.Passages[0])
}

func TestStory_Start(t *testing.T) {
	s := NewStory()
	s.Passages = []*Passage{{ID: "p1", Name: "Start"}}

	assert.Nil(t, s.Start())
	s.StartPassage = "p1"
	assert.Equal(t, "Start", s.Start().Name)
	s.StartPassage = "gone"
	assert.Nil(t, s.Start())
}

func TestPassage_Overlaps(t *testing.T) {
	a := &Passage{Left: 0, Top: 0, Width: 100, Height: 100}
	b := &Passage{Left: 50, Top: 50, Width: 100, Height: 100}
	c := &Passage{Left: 100, Top: 0, Width: 100, Height: 100}

	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))
}

func TestColor_Valid(t *testing.T) {
	for _, c := range Colors {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Color("magenta").Valid())
}
