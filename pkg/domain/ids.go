package domain

import (
	"strings"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for new entities.
type IDGenerator interface {
	// NewID returns an id for a story, passage or format.
	NewID() string
	// NewIFID returns an interactive-fiction id for a story.
	NewIFID() string
}

// UUIDGenerator generates random UUID v4 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// NewIFID returns an uppercase UUID, the form IF catalogues expect.
func (UUIDGenerator) NewIFID() string {
	return strings.ToUpper(uuid.NewString())
}
