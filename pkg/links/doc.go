/*
Package links extracts passage links from story text and classifies them.

Four bracket forms are recognized, each optionally followed by a setter clause:

	[[target]]
	[[display|target]]
	[[display->target]]
	[[target<-display]]
	[[display|target][$setter = 1]]

Parse returns targets in order of first appearance without duplicates. Build turns a
story into a Graph of self, broken and ordinary links, and StoryStats aggregates it.
*/
package links
