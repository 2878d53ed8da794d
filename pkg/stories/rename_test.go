package stories_test

import (
	"testing"

	"github.com/aretw0/quire/internal/testutils"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/stories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceLinkTarget(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"simple", "Go [[Cave]].", "Go [[Grotto]]."},
		{"simple with setter", "[[Cave][$x to 1]]", "[[Grotto][$x to 1]]"},
		{"pipe", "[[enter|Cave]]", "[[enter|Grotto]]"},
		{"arrow", "[[enter->Cave]]", "[[enter->Grotto]]"},
		{"reverse", "[[enter<-Cave]]", "[[enter<-Grotto]]"},
		{"display text untouched", "[[Cave|Elsewhere]]", "[[Cave|Elsewhere]]"},
		{"prefix untouched", "[[Caves]]", "[[Caves]]"},
		{"several", "[[Cave]] or [[run->Cave]]", "[[Grotto]] or [[run->Grotto]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stories.ReplaceLinkTarget(tt.text, "Cave", "Grotto"))
		})
	}
}

func TestReplaceLinkTarget_SpecialCharacters(t *testing.T) {
	assert.Equal(t, "[[$1 (new)]]", stories.ReplaceLinkTarget("[[a.b*]]", "a.b*", "$1 (new)"))
	assert.Equal(t, "[[axb*]]", stories.ReplaceLinkTarget("[[axb*]]", "a.b*", "z"))
}

func TestRenamePassage(t *testing.T) {
	s := testutils.NewStory("s1", "Tale", "Start", "Cave", "Other")
	s.Passages[0].Text = "[[Cave]] [[hide->Cave]]"
	s.Passages[2].Text = "nothing here"
	state := []*domain.Story{s}

	actions := stories.RenamePassage(s, "s1-p2", "Grotto")
	require.Len(t, actions, 2)

	r := newReducer(nil)
	for _, a := range actions {
		state = r.Reduce(state, a)
	}

	got := state[0]
	assert.Equal(t, "Grotto", got.Passages[1].Name)
	assert.Equal(t, "[[Grotto]] [[hide->Grotto]]", got.Passages[0].Text)
	assert.Same(t, s.Passages[2], got.Passages[2])
}

func TestRenamePassage_Rejected(t *testing.T) {
	s := testutils.NewStory("s1", "Tale", "Start", "Cave")

	assert.Nil(t, stories.RenamePassage(s, "missing", "x"))
	assert.Nil(t, stories.RenamePassage(s, "s1-p2", "Cave"))
	assert.Nil(t, stories.RenamePassage(s, "s1-p2", "Start"))
}

func TestUnusedName(t *testing.T) {
	taken := map[string]bool{"Untitled": true, "Untitled 1": true}
	assert.Equal(t, "Fresh", stories.UnusedName("Fresh", taken))
	assert.Equal(t, "Untitled 2", stories.UnusedName("Untitled", taken))
}

func TestUntitledPassage(t *testing.T) {
	s := testutils.NewStory("s1", "Tale", domain.DefaultPassageName)

	props := stories.UntitledPassage(s, 10, 10)

	require.NotNil(t, props.Name)
	assert.Equal(t, domain.DefaultPassageName+" 1", *props.Name)

	p := domain.NewPassage()
	p.Left, p.Top, p.Width, p.Height = *props.Left, *props.Top, *props.Width, *props.Height
	for _, o := range s.Passages {
		assert.False(t, o.Overlaps(p), "new passage overlaps %s", o.Name)
	}
	assert.Zero(t, int(*props.Left)%25, "snapped to grid")
}
