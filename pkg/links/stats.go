package links

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aretw0/quire/pkg/domain"
	"golang.org/x/text/unicode/norm"
)

// Stats summarizes a story.
type Stats struct {
	Characters int `json:"characters"`
	Words      int `json:"words"`
	Passages   int `json:"passages"`
	// Links counts distinct internal link targets across the story.
	Links int `json:"links"`
	// BrokenLinks counts distinct targets that do not name a passage.
	BrokenLinks int       `json:"brokenLinks"`
	LastUpdate  time.Time `json:"lastUpdate"`
}

// StoryStats computes counts for a story.
func StoryStats(story *domain.Story) Stats {
	stats := Stats{
		Passages:   len(story.Passages),
		LastUpdate: story.LastUpdate,
	}

	names := make(map[string]bool, len(story.Passages))
	for _, p := range story.Passages {
		names[norm.NFC.String(p.Name)] = true
	}

	targets := make(map[string]bool)
	broken := make(map[string]bool)
	for _, p := range story.Passages {
		stats.Characters += utf8.RuneCountInString(p.Text)
		stats.Words += len(strings.Fields(p.Text))
		for _, target := range ParseInternal(p.Text) {
			key := norm.NFC.String(target)
			targets[key] = true
			if !names[key] {
				broken[key] = true
			}
		}
	}
	stats.Links = len(targets)
	stats.BrokenLinks = len(broken)
	return stats
}
