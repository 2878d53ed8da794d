package domain

// Schema defaults shared by the reducers, the repair pass and the importer.
const (
	// DefaultStoryName is used when a story is created without a name.
	DefaultStoryName = "Untitled Story"
	// DefaultPassageName is the base name for passages created without one.
	DefaultPassageName = "Untitled Passage"

	DefaultPassageWidth  = 100.0
	DefaultPassageHeight = 100.0
	DefaultZoom          = 1.0

	// MinPassageSize is the smallest width or height a passage may have.
	MinPassageSize = 5.0
)

// Field names as they appear in persisted and published data. These are the keys used
// by the persistable allow-lists and by repair diagnostics.
const (
	FieldID                 = "id"
	FieldIFID               = "ifid"
	FieldName               = "name"
	FieldPassages           = "passages"
	FieldStartPassage       = "startPassage"
	FieldStoryFormat        = "storyFormat"
	FieldStoryFormatVersion = "storyFormatVersion"
	FieldStylesheet         = "stylesheet"
	FieldScript             = "script"
	FieldZoom               = "zoom"
	FieldSnapToGrid         = "snapToGrid"
	FieldTags               = "tags"
	FieldTagColors          = "tagColors"
	FieldLastUpdate         = "lastUpdate"
	FieldSelected           = "selected"

	FieldStory       = "story"
	FieldText        = "text"
	FieldLeft        = "left"
	FieldTop         = "top"
	FieldWidth       = "width"
	FieldHeight      = "height"
	FieldHighlighted = "highlighted"
)
