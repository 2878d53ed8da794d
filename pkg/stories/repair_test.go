package stories_test

import (
	"math"
	"testing"

	"github.com/aretw0/quire/internal/testutils"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/stories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultFormat = domain.FormatRef{Name: "Harlowe", Version: "3.3.8"}

func repair(list []*domain.Story, opts ...stories.Option) []*domain.Story {
	opts = append([]stories.Option{stories.WithIDGenerator(&testutils.SequenceIDs{})}, opts...)
	return stories.Repair(list, testutils.Formats(), defaultFormat, opts...)
}

func broken() []*domain.Story {
	bad := &domain.Story{
		Name:        "Broken",
		StoryFormat: "SugarCube",
		Zoom:        math.NaN(),
		TagColors:   map[string]domain.Color{"ok": domain.ColorRed, "odd": "magenta"},
		Tags:        []string{"x", "x"},
		Passages: []*domain.Passage{
			{ID: "p1", Name: "Start", Left: -10, Top: math.Inf(1), Width: 1, Height: 200, Story: "wrong"},
			{ID: "p1", Name: "Start", Width: 100, Height: 100},
			nil,
		},
	}
	twin := testutils.NewStory("dup", "Twin", "A")
	twin2 := testutils.NewStory("dup", "Twin", "B")
	return []*domain.Story{bad, twin, twin2}
}

func TestRepair_ValidInputKeepsIdentity(t *testing.T) {
	list := []*domain.Story{testutils.NewStory("s1", "A", "x", "y"), testutils.NewStory("s2", "B", "z")}

	out := repair(list)

	require.Len(t, out, 2)
	assert.Same(t, &list[0], &out[0], "the list itself comes back untouched")
	for i := range list {
		assert.Same(t, list[i], out[i])
	}
}

func TestRepair_Idempotent(t *testing.T) {
	once := repair(broken())
	twice := repair(once)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.Same(t, once[i], twice[i])
		for j := range once[i].Passages {
			assert.Same(t, once[i].Passages[j], twice[i].Passages[j])
		}
	}
}

func TestRepair_UnnamedStoriesGetDistinctNames(t *testing.T) {
	once := repair([]*domain.Story{{ID: "a"}, {ID: "b"}, nil, nil})

	names := map[string]bool{}
	for _, s := range once {
		assert.False(t, names[s.Name], "duplicate story name %q", s.Name)
		names[s.Name] = true
	}
	assert.True(t, names[domain.DefaultStoryName])

	twice := repair(once)
	for i := range once {
		assert.Same(t, once[i], twice[i])
	}
}

func TestRepair_RestoresInvariants(t *testing.T) {
	out := repair(broken())

	storyIDs := map[string]bool{}
	storyNames := map[string]bool{}
	for _, s := range out {
		require.NotNil(t, s)
		assert.NotEmpty(t, s.ID)
		assert.NotEmpty(t, s.IFID)
		assert.False(t, storyIDs[s.ID], "duplicate story id %s", s.ID)
		assert.False(t, storyNames[s.Name], "duplicate story name %s", s.Name)
		storyIDs[s.ID], storyNames[s.Name] = true, true
		assert.Greater(t, s.Zoom, 0.0)
		for _, c := range s.TagColors {
			assert.True(t, c.Valid())
		}

		ids := map[string]bool{}
		names := map[string]bool{}
		for _, p := range s.Passages {
			require.NotNil(t, p)
			assert.False(t, ids[p.ID], "duplicate passage id %s", p.ID)
			assert.False(t, names[p.Name], "duplicate passage name %s", p.Name)
			ids[p.ID], names[p.Name] = true, true
			assert.Equal(t, s.ID, p.Story)
			assert.GreaterOrEqual(t, p.Left, 0.0)
			assert.GreaterOrEqual(t, p.Top, 0.0)
			assert.GreaterOrEqual(t, p.Width, domain.MinPassageSize)
			assert.GreaterOrEqual(t, p.Height, domain.MinPassageSize)
			assert.NotNil(t, p.Tags)
		}
	}
}

func TestRepair_Details(t *testing.T) {
	in := broken()
	out := repair(in)

	bad := out[0]
	assert.Equal(t, "Harlowe", bad.StoryFormat, "a reference without a version gets the default")
	assert.Equal(t, "3.3.8", bad.StoryFormatVersion)
	assert.Equal(t, domain.DefaultZoom, bad.Zoom)
	assert.Equal(t, map[string]domain.Color{"ok": domain.ColorRed}, bad.TagColors)
	assert.Equal(t, []string{"x"}, bad.Tags)

	first := bad.Passages[0]
	assert.Equal(t, 0.0, first.Left)
	assert.Equal(t, 0.0, first.Top)
	assert.Equal(t, domain.MinPassageSize, first.Width)
	assert.Equal(t, 200.0, first.Height)
	assert.Equal(t, "p1", first.ID, "first seen wins")
	assert.NotEqual(t, "p1", bad.Passages[1].ID)
	assert.Equal(t, "Start 1", bad.Passages[1].Name)
	assert.Equal(t, domain.DefaultPassageName, bad.Passages[2].Name)

	assert.Equal(t, "dup", out[1].ID)
	assert.NotEqual(t, "dup", out[2].ID)
	assert.Equal(t, "Twin 1", out[2].Name)
	for _, p := range out[2].Passages {
		assert.Equal(t, out[2].ID, p.Story, "passages follow a repaired story id")
	}

	assert.Equal(t, "wrong", in[0].Passages[0].Story, "input must not be mutated")
	assert.Equal(t, "dup", in[2].ID)
}

func TestRepair_FormatResolution(t *testing.T) {
	pool := []*domain.StoryFormat{
		{ID: "a", Name: "Alpha", Version: "3.2.0"},
		{ID: "b", Name: "Beta", Version: "1.0.0"},
	}
	tests := []struct {
		name, format, version string
		wantFormat, wantVer   string
	}{
		{"exact", "Beta", "1.0.0", "Beta", "1.0.0"},
		{"caret compatible", "Alpha", "3.1.0", "Alpha", "3.2.0"},
		{"major mismatch", "Alpha", "2.0.0", "Beta", "1.0.0"},
		{"unknown", "Gamma", "1.0.0", "Beta", "1.0.0"},
		{"unset", "", "", "Beta", "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutils.NewStory("s1", "Tale")
			s.StoryFormat, s.StoryFormatVersion = tt.format, tt.version

			out := stories.Repair([]*domain.Story{s}, pool, domain.FormatRef{Name: "Beta", Version: "1.0.0"})

			assert.Equal(t, tt.wantFormat, out[0].StoryFormat)
			assert.Equal(t, tt.wantVer, out[0].StoryFormatVersion)
		})
	}
}

func TestRepair_ReportsCorrections(t *testing.T) {
	obs := &recordingObserver{}
	s := testutils.NewStory("s1", "Tale", "Start")
	s.Passages[0].Width = 2

	repair([]*domain.Story{s}, stories.WithObserver(obs))

	require.Len(t, obs.corrections, 1)
	c := obs.corrections[0]
	assert.Equal(t, "s1", c.StoryID)
	assert.Equal(t, "s1-p1", c.PassageID)
	assert.Equal(t, domain.FieldWidth, c.Field)
	assert.Equal(t, 2.0, c.Old)
	assert.Equal(t, domain.MinPassageSize, c.New)
}

func TestReduce_RepairAction(t *testing.T) {
	s := testutils.NewStory("s1", "Tale", "Start")
	s.StoryFormatVersion = "3.0.0"

	next := newReducer(nil).Reduce([]*domain.Story{s}, stories.RepairStories{Formats: testutils.Formats(), Default: defaultFormat})

	assert.Equal(t, "3.3.8", next[0].StoryFormatVersion)
	assert.Same(t, s.Passages[0], next[0].Passages[0])
}
