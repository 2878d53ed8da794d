package stories

import "github.com/aretw0/quire/pkg/domain"

// Action is a state transition for the story list.
type Action interface {
	Type() string
}

// Init replaces the whole state, typically at load time.
type Init struct {
	Stories []*domain.Story
}

// CreateStory adds a story. ID and IFID are generated when empty. Passages, if any,
// are copied into the new story and re-parented to it.
type CreateStory struct {
	ID       string
	IFID     string
	Props    StoryProps
	Passages []*domain.Passage
}

// UpdateStory shallow-merges Props into a story.
type UpdateStory struct {
	StoryID string
	Props   StoryProps
}

// DeleteStory removes a story and all its passages.
type DeleteStory struct {
	StoryID string
}

// CreatePassage adds a passage to a story. ID is generated when empty.
type CreatePassage struct {
	StoryID string
	ID      string
	Props   PassageProps
}

// CreatePassages adds several passages, in order.
type CreatePassages struct {
	StoryID string
	Props   []PassageProps
}

// UpdatePassage shallow-merges Props into a passage.
type UpdatePassage struct {
	StoryID   string
	PassageID string
	Props     PassageProps
}

// PassageUpdate is one element of an UpdatePassages batch.
type PassageUpdate struct {
	PassageID string
	Props     PassageProps
}

// UpdatePassages applies several passage updates, in order.
type UpdatePassages struct {
	StoryID string
	Updates []PassageUpdate
}

// DeletePassage removes a passage from a story.
type DeletePassage struct {
	StoryID   string
	PassageID string
}

// DeletePassages removes several passages, in order.
type DeletePassages struct {
	StoryID    string
	PassageIDs []string
}

// RepairStories runs the consistency repair pass over the whole state.
type RepairStories struct {
	Formats []*domain.StoryFormat
	Default domain.FormatRef
}

func (Init) Type() string           { return "init" }
func (CreateStory) Type() string    { return "createStory" }
func (UpdateStory) Type() string    { return "updateStory" }
func (DeleteStory) Type() string    { return "deleteStory" }
func (CreatePassage) Type() string  { return "createPassage" }
func (CreatePassages) Type() string { return "createPassages" }
func (UpdatePassage) Type() string  { return "updatePassage" }
func (UpdatePassages) Type() string { return "updatePassages" }
func (DeletePassage) Type() string  { return "deletePassage" }
func (DeletePassages) Type() string { return "deletePassages" }
func (RepairStories) Type() string  { return "repair" }
