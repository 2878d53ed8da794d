package quire_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/formats"
	"github.com/aretw0/quire/pkg/stories"
)

// ExampleNew shows a library whose single format is served from memory.
func ExampleNew() {
	pool := []*domain.StoryFormat{
		{ID: "paperthin", Name: "Paperthin", Version: "1.0.0", URL: "paperthin/format.js"},
	}
	fetcher := formats.FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		return []byte(`window.storyFormat({"name": "Paperthin", "version": "1.0.0", "source": "{{STORY_DATA}}"})`), nil
	})

	lib := quire.New(
		quire.WithFormats(pool),
		quire.WithDefaultFormat(domain.FormatRef{Name: "Paperthin", Version: "1.0.0"}),
		quire.WithFetcher(fetcher),
	)

	story, err := lib.NewStory("The Cave")
	if err != nil {
		log.Fatal(err)
	}
	lib.Dispatch(stories.UpdatePassage{
		StoryID:   story.ID,
		PassageID: story.StartPassage,
		Props:     stories.PassageProps{Text: stories.Ptr("It is dark. [[Light a match]] or [[wait->Darkness]].")},
	})

	stats, err := lib.Stats(story.ID)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("passages:", stats.Passages)
	fmt.Println("links:", stats.Links)
	fmt.Println("broken:", stats.BrokenLinks)

	if _, err := lib.Publish(context.Background(), story.ID); err != nil {
		log.Fatal(err)
	}
	fmt.Println("published")

	// Output:
	// passages: 1
	// links: 2
	// broken: 2
	// published
}
