/*
Package ports defines the driven ports (interfaces) for the quire library.

These interfaces decouple the core from storage and other I/O, so the same library can
persist stories to memory, HTML files on disk or Redis, and read them from directories
of Markdown passages.

# Key Interfaces

  - StoryStore: persists whole stories and lists them back.
  - StorySource: read-only provider of stories (e.g. a Loam directory).
  - Watchable: sources that can signal backend changes.
  - DistributedLocker: serializes writes to the same story across processes.
*/
package ports
