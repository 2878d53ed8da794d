package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/internal/testutils"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/formats"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	fetcher := formats.FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		return []byte(`window.storyFormat({"name": "Fake", "version": "1.0.0", "source": "<html>{{STORY_DATA}}</html>"})`), nil
	})
	lib := quire.New(
		quire.WithFormats(testutils.Formats()),
		quire.WithDefaultFormat(domain.FormatRef{Name: "Harlowe", Version: "3.3.8"}),
		quire.WithProofingFormat(domain.FormatRef{Name: "Paperthin", Version: "1.0.0"}),
		quire.WithFetcher(fetcher),
	)
	s := testutils.NewStory("a", "Cave", "Start", "End")
	s.Passages[0].Text = "[[End]] [[Lake]]"
	lib.Init([]*domain.Story{s})
	return NewServer(lib, "test", nil)
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestListStories(t *testing.T) {
	s := newTestServer(t)
	list, err := s.handleListStories(context.Background(), mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []StorySummary{{ID: "a", Name: "Cave", Format: "Harlowe 3.3.8", Passages: 2}}, list.Stories)
}

func TestStoryStats(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	stats, err := s.handleStats(ctx, mcp.CallToolRequest{}, StoryRef{StoryName: "Cave"})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Passages)
	assert.Equal(t, 1, stats.BrokenLinks)

	_, err = s.handleStats(ctx, mcp.CallToolRequest{}, StoryRef{})
	assert.Error(t, err)
	_, err = s.handleStats(ctx, mcp.CallToolRequest{}, StoryRef{StoryID: "zzz"})
	assert.ErrorIs(t, err, domain.ErrStoryNotFound)
}

func TestStoryLinks(t *testing.T) {
	s := newTestServer(t)
	out, err := s.handleLinks(context.Background(), mcp.CallToolRequest{}, StoryRef{StoryID: "a"})
	require.NoError(t, err)
	assert.Equal(t, []LinkView{
		{From: "Start", Target: "End", Kind: "ordinary"},
		{From: "Start", Target: "Lake", Kind: "broken"},
	}, out.Links)
}

func TestStoryGraph(t *testing.T) {
	s := newTestServer(t)
	res, err := s.handleGraph(context.Background(), mcp.CallToolRequest{}, StoryRef{StoryID: "a"})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "graph TD")
}

func TestPublishStory(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handlePublish(ctx, mcp.CallToolRequest{}, PublishArgs{StoryRef: StoryRef{StoryID: "a"}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `<tw-storydata name="Cave"`)

	res, err = s.handlePublish(ctx, mcp.CallToolRequest{}, PublishArgs{StoryRef: StoryRef{StoryID: "a"}, Mode: "test", Start: "a-p2"})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `options="debug"`)

	res, err = s.handlePublish(ctx, mcp.CallToolRequest{}, PublishArgs{StoryRef: StoryRef{StoryID: "a"}, Mode: "shout"})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handlePublish(ctx, mcp.CallToolRequest{}, PublishArgs{StoryRef: StoryRef{StoryID: "a"}, Mode: "test", Start: "nope"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
