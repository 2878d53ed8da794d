package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/quire/internal/presentation/graph"
	"github.com/aretw0/quire/internal/testutils"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	s := testutils.NewStory("s", "Cave", "Start", "Tunnel", `Say "hi"`)
	s.Passages[0].Text = "[[Tunnel]] [[Lake]] [[Start]] [[Lake]]"
	s.Passages[1].Tags = []string{"dark"}
	s.Passages[2].Highlighted = true

	got := graph.GenerateMermaid(s)

	tests := []struct {
		name     string
		contains []string
	}{
		{"Start Passage Shape", []string{`p_s_p1(("Start"))`}},
		{"Tagged Passage Shape", []string{`p_s_p2[/"Tunnel"/]`}},
		{"Label Escaping", []string{`p_s_p3["Say #quot;hi#quot;"]`}},
		{"Links", []string{"p_s_p1 --> p_s_p2", "p_s_p1 --> p_s_p1"}},
		{"Broken Link Ghost", []string{"p_s_p1 -.-> missing_1", `missing_1["Lake"]`, "class missing_1 broken;"}},
		{"Highlight", []string{"class p_s_p3 highlighted;"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}

	assert.Equal(t, 1, strings.Count(got, `missing_1["Lake"]`), "one ghost per missing target")
	assert.NotContains(t, got, "missing_2")
}

func TestGenerateMermaid_NoOverlay(t *testing.T) {
	got := graph.GenerateMermaid(testutils.NewStory("s", "Plain", "Only"))
	assert.Equal(t, "graph TD\n    p_s_p1((\"Only\"))\n", got)
}
