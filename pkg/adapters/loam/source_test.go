package loam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"

	"github.com/aretw0/quire/internal/testutils"
	quireloam "github.com/aretw0/quire/pkg/adapters/loam"
	"github.com/aretw0/quire/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cave = map[string]string{
	"start.md": `---
name: Entrance
start: true
story: The Cave
format: Harlowe
format_version: 3.3.8
tags: [dark]
position: "100,50"
---
You stand before a cave. [[Go in->Tunnel]]`,
	"tunnel.md": `---
position: [300, 50]
size: [200, 100]
---
It is cold. [[Entrance]]`,
}

func TestSource_Contract(t *testing.T) {
	dir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, dir, cave)

	source := quireloam.New(loam.NewTypedRepository[quireloam.PassageMetadata](repo),
		quireloam.WithIDGenerator(&testutils.SequenceIDs{}))

	tests.StorySourceContractTest(t, source, map[string][]string{
		"The Cave": {"Entrance", "tunnel"},
	})
}

func TestSource_LoadStories(t *testing.T) {
	dir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, dir, cave)

	source := quireloam.New(loam.NewTypedRepository[quireloam.PassageMetadata](repo),
		quireloam.WithIDGenerator(&testutils.SequenceIDs{}),
		quireloam.WithClock(testutils.FixedClock))

	stories, err := source.LoadStories(context.Background())
	require.NoError(t, err)
	require.Len(t, stories, 1)

	s := stories[0]
	assert.Equal(t, "The Cave", s.Name)
	assert.Equal(t, "Harlowe", s.StoryFormat)
	assert.Equal(t, "3.3.8", s.StoryFormatVersion)
	assert.Equal(t, testutils.FixedTime, s.LastUpdate)

	start := s.Start()
	require.NotNil(t, start)
	assert.Equal(t, "Entrance", start.Name)
	assert.Equal(t, []string{"dark"}, start.Tags)
	assert.Equal(t, 100.0, start.Left)
	assert.Equal(t, 50.0, start.Top)
	assert.Contains(t, start.Text, "[[Go in->Tunnel]]")

	tunnel := s.PassageByName("tunnel")
	require.NotNil(t, tunnel)
	assert.Equal(t, 300.0, tunnel.Left)
	assert.Equal(t, 200.0, tunnel.Width)
	assert.Equal(t, "It is cold. [[Entrance]]", tunnel.Text)
}

func TestOpen_NamesStoryAfterDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-story")
	require.NoError(t, os.MkdirAll(dir, 0755))
	testutils.WriteFiles(t, dir, map[string]string{"a.md": "---\nname: A\n---\nHello"})

	source, err := quireloam.Open(dir)
	require.NoError(t, err)

	stories, err := source.LoadStories(context.Background())
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "my-story", stories[0].Name)
	assert.Empty(t, stories[0].StartPassage)
}
