package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/quire/internal/testutils"
	"github.com/aretw0/quire/pkg/adapters/file"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunStoryStoreContract(t, store)
}

func TestFileStore_WritesArchiveMarkup(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir, file.WithAppInfo(domain.AppInfo{Name: "Quire", Version: "9.9.9"}))

	require.NoError(t, store.SaveStory(context.Background(), testutils.NewStory("s1", "Tale", "Start")))

	raw, err := os.ReadFile(filepath.Join(dir, "s1.html"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `<tw-storydata name="Tale"`)
	assert.Contains(t, string(raw), `creator="Quire" creator-version="9.9.9"`)

	leftovers, err := filepath.Glob(filepath.Join(dir, "tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStore_StableIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()
	require.NoError(t, store.SaveStory(ctx, testutils.NewStory("s1", "Tale", "Start", "Next")))

	a, err := store.LoadStory(ctx, "s1")
	require.NoError(t, err)
	b, err := store.LoadStory(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, "s1", a.ID)
	assert.Equal(t, a.Passages[1].ID, b.Passages[1].ID)
	assert.Equal(t, a.StartPassage, b.StartPassage)
	assert.False(t, a.LastUpdate.IsZero())
}

func TestFileStore_ListEmpty(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	stories, err := store.ListStories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stories)
}
