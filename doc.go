/*
Package quire builds hypertext stories out of named, linked passages and publishes them
to the HTML story format read by story format runtimes such as Harlowe or SugarCube.

# Concept

A Library holds a list of stories and a pool of story formats. Every change goes
through Dispatch as a typed action (see package stories) and is applied by a pure
reducer, so the state a caller reads is never mutated behind its back. Subscribers are
told about each change and decide for themselves whether to persist it; package
persistence ships a Saver that does exactly that.

Format definitions are fetched lazily. When one finishes loading, the library runs the
repair pass so every story ends up bound to a format that exists.

# Usage

	lib := quire.New(
		quire.WithFormats(pool),
		quire.WithDefaultFormat(domain.FormatRef{Name: "Harlowe", Version: "3.3.8"}),
	)

	story, err := lib.NewStory("The Cave")
	if err != nil {
		log.Fatal(err)
	}

	html, err := lib.Publish(ctx, story.ID)
	if err != nil {
		log.Fatal(err)
	}
	os.WriteFile("cave.html", []byte(html), 0644)
*/
package quire
