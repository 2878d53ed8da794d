package domain

import "errors"

// ErrStoryNotFound is returned when a story id cannot be found in a store or library.
var ErrStoryNotFound = errors.New("story not found")

// ErrPassageNotFound is returned when a passage id cannot be found in its story.
var ErrPassageNotFound = errors.New("passage not found")

// ErrFormatNotFound is returned when no story format matches a requested name and version.
var ErrFormatNotFound = errors.New("story format not found")

// ErrFormatNotLoaded is returned when a format's properties are needed before it has loaded.
var ErrFormatNotLoaded = errors.New("story format not loaded")

// ErrNoStartPassage is returned when publishing a story without a start passage.
var ErrNoStartPassage = errors.New("story has no start passage")

// ErrStartPassageNotFound is returned when the start passage id does not match any passage.
var ErrStartPassageNotFound = errors.New("start passage does not exist in story")

// ErrFormatHasNoSource is returned when a format without a source template is used to publish.
var ErrFormatHasNoSource = errors.New("story format has no source template")

// ErrNameTaken is returned when a story or passage name is already used by a sibling.
var ErrNameTaken = errors.New("name already in use")
