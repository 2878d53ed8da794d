/*
Package dsl provides a Go DSL for building stories in code.

It lets developers write a story with a fluent builder instead of an HTML
archive or a directory of Markdown files. This is handy for generated content,
unit tests and seeding a library.

Example usage:

	b := dsl.New("The Cave")

	b.Add("Entrance").
		Text("You stand before a cave.").
		Link("Go in", "Tunnel").
		Start()

	b.Add("Tunnel").
		Text("It is cold.").
		Go("Entrance").
		Tags("dark")

	// The result is a ports.StorySource.
	src, err := b.Build()
	// ... lib.ImportFrom(ctx, src, quire.ImportOptions{})
*/
package dsl
