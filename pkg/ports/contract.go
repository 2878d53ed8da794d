package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/quire/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractStory(id, name string) *domain.Story {
	s := domain.NewStory()
	s.ID = id
	s.Name = name
	s.IFID = "IFID-" + id
	s.StoryFormat = "Harlowe"
	s.StoryFormatVersion = "3.3.8"
	s.Stylesheet = "tw-story { color: red; }"
	s.Script = "window.x = 1 < 2;"
	s.Zoom = 0.6
	s.Tags = []string{"draft"}
	s.TagColors = map[string]domain.Color{"ending": domain.ColorGreen}
	s.LastUpdate = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	start := domain.NewPassage()
	start.ID = id + "-start"
	start.Story = id
	start.Name = "Start"
	start.Text = "Go [[North]] & <look>"
	start.Tags = []string{"ending"}
	start.Left, start.Top = 100, 150.5

	north := domain.NewPassage()
	north.ID = id + "-north"
	north.Story = id
	north.Name = "North"
	north.Text = "Cold."
	north.Left = 250
	north.Width = 200

	s.Passages = []*domain.Passage{start, north}
	s.StartPassage = start.ID
	return s
}

// RunStoryStoreContract runs a suite of tests to verify that a StoryStore implementation
// adheres to the defined interface contract.
func RunStoryStoreContract(t *testing.T, store StoryStore) {
	ctx := context.Background()
	storyID := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		story := contractStory(storyID, "Contract Story")

		err := store.SaveStory(ctx, story)
		require.NoError(t, err, "SaveStory should not return error")

		loaded, err := store.LoadStory(ctx, storyID)
		require.NoError(t, err, "LoadStory should not return error")
		assert.Equal(t, story.ID, loaded.ID)
		assert.Equal(t, story.Name, loaded.Name)
		assert.Equal(t, story.IFID, loaded.IFID)
		assert.Equal(t, story.StoryFormat, loaded.StoryFormat)
		assert.Equal(t, story.StoryFormatVersion, loaded.StoryFormatVersion)
		assert.Equal(t, story.Stylesheet, loaded.Stylesheet)
		assert.Equal(t, story.Script, loaded.Script)
		assert.Equal(t, story.Zoom, loaded.Zoom)
		assert.Equal(t, story.Tags, loaded.Tags)
		assert.Equal(t, story.TagColors, loaded.TagColors)

		require.Len(t, loaded.Passages, len(story.Passages))
		for i, want := range story.Passages {
			got := loaded.Passages[i]
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, loaded.ID, got.Story)
			assert.Equal(t, want.Name, got.Name)
			assert.Equal(t, want.Text, got.Text)
			assert.Equal(t, want.Tags, got.Tags)
			assert.Equal(t, want.Left, got.Left)
			assert.Equal(t, want.Top, got.Top)
			assert.Equal(t, want.Width, got.Width)
			assert.Equal(t, want.Height, got.Height)
		}
		require.NotNil(t, loaded.Start())
		assert.Equal(t, "Start", loaded.Start().Name)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.LoadStory(ctx, storyID)
		require.NoError(t, err)
		loaded.Name = "Mutated"
		loaded.Passages[0].Text = "Mutated"

		again, err := store.LoadStory(ctx, storyID)
		require.NoError(t, err)
		assert.Equal(t, "Contract Story", again.Name)
		assert.NotEqual(t, "Mutated", again.Passages[0].Text)
	})

	t.Run("Save replaces", func(t *testing.T) {
		story := contractStory(storyID, "Renamed Story")
		story.Passages = story.Passages[:1]
		require.NoError(t, store.SaveStory(ctx, story))

		loaded, err := store.LoadStory(ctx, storyID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed Story", loaded.Name)
		assert.Len(t, loaded.Passages, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.LoadStory(ctx, "non-existent-"+storyID)
		assert.ErrorIs(t, err, domain.ErrStoryNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.SaveStory(ctx, contractStory(storyID, "Contract Story")))

		err := store.DeleteStory(ctx, storyID)
		require.NoError(t, err, "DeleteStory should not return error")

		_, err = store.LoadStory(ctx, storyID)
		assert.ErrorIs(t, err, domain.ErrStoryNotFound, "LoadStory after DeleteStory should return ErrStoryNotFound")

		assert.NoError(t, store.DeleteStory(ctx, storyID), "deleting twice is fine")
	})

	t.Run("List", func(t *testing.T) {
		id1 := storyID + "-1"
		id2 := storyID + "-2"
		require.NoError(t, store.SaveStory(ctx, contractStory(id1, "One")))
		require.NoError(t, store.SaveStory(ctx, contractStory(id2, "Two")))

		defer func() {
			_ = store.DeleteStory(ctx, id1)
			_ = store.DeleteStory(ctx, id2)
		}()

		stories, err := store.ListStories(ctx)
		require.NoError(t, err)
		names := make(map[string]string)
		for _, s := range stories {
			names[s.ID] = s.Name
		}
		assert.Equal(t, "One", names[id1])
		assert.Equal(t, "Two", names[id2])
	})
}
