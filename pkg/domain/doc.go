/*
Package domain contains the core data model of quire.

It defines the plain records that make up a story library: Stories, the Passages they
own, and the Story Formats that turn a story into a playable document. The package is
kept free of I/O and of mutating behaviour; every state transition lives in the
stories and formats reducers.

# Key Entities

  - Story: a named, uniquely identified collection of passages plus its stylesheet,
    script, tags and the reference to the story format it is bound to.
  - Passage: a named unit of text positioned on the story map. Its Story field is a
    copy of the owning story's id, never a pointer.
  - StoryFormat: a format definition known to the library, with its load state.
  - FormatRef: a (name, version) pair used for preferences and story bindings.

# Invariants

  - No two stories share an id; story names are unique.
  - Within a story, passage ids and names are unique.
  - Every passage's Story equals its owner's ID.
  - Passage Left/Top are >= 0 and Width/Height are >= MinPassageSize.
*/
package domain
