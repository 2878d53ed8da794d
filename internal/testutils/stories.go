package testutils

import (
	"strconv"

	"github.com/aretw0/quire/pkg/domain"
)

// NewStory builds a valid story with one passage per name. The first passage is the
// start passage. Passages are laid out left to right without overlapping.
func NewStory(id, name string, passages ...string) *domain.Story {
	s := domain.NewStory()
	s.ID = id
	s.Name = name
	s.IFID = "IFID-" + id
	s.StoryFormat = "Harlowe"
	s.StoryFormatVersion = "3.3.8"
	for i, pname := range passages {
		p := domain.NewPassage()
		p.ID = id + "-p" + strconv.Itoa(i+1)
		p.Story = id
		p.Name = pname
		p.Left = float64(i) * 150
		s.Passages = append(s.Passages, p)
	}
	if len(s.Passages) > 0 {
		s.StartPassage = s.Passages[0].ID
	}
	return s
}

// Formats returns a small pool of unloaded formats.
func Formats() []*domain.StoryFormat {
	return []*domain.StoryFormat{
		{ID: "f-harlowe", Name: "Harlowe", Version: "3.3.8", URL: "harlowe-3/format.js"},
		{ID: "f-sugarcube", Name: "SugarCube", Version: "2.37.3", URL: "sugarcube-2/format.js"},
		{ID: "f-paperthin", Name: "Paperthin", Version: "1.0.0", URL: "paperthin-1/format.js"},
	}
}
