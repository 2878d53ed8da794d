package formats

import "github.com/aretw0/quire/pkg/domain"

// Action is a state transition for the format pool.
type Action interface {
	Type() string
}

// Init replaces the pool wholesale.
type Init struct {
	Formats []*domain.StoryFormat
}

// Create adds a format. ID is assigned when empty; LoadState starts unloaded.
type Create struct {
	Format domain.StoryFormat
}

// Update changes a format's reference data. Nil fields are left untouched.
type Update struct {
	ID      string
	Name    *string
	Version *string
	URL     *string
}

// Delete removes a format from the pool.
type Delete struct {
	ID string
}

// LoadStart marks a format as being fetched.
type LoadStart struct {
	ID string
}

// LoadSuccess stores a fetched definition.
type LoadSuccess struct {
	ID         string
	Properties *domain.FormatProperties
}

// LoadFailure records why a fetch failed.
type LoadFailure struct {
	ID  string
	Err error
}

func (Init) Type() string        { return "initFormats" }
func (Create) Type() string      { return "createFormat" }
func (Update) Type() string      { return "updateFormat" }
func (Delete) Type() string      { return "deleteFormat" }
func (LoadStart) Type() string   { return "loadFormatStart" }
func (LoadSuccess) Type() string { return "loadFormatSuccess" }
func (LoadFailure) Type() string { return "loadFormatFailure" }
