package loam

// PassageMetadata is the front matter of a passage document.
// It uses "mapstructure" tags to match the YAML keys.
type PassageMetadata struct {
	// Name defaults to the file name without its extension.
	Name string   `json:"name" mapstructure:"name"`
	Tags []string `json:"tags" mapstructure:"tags"`

	// Position and Size accept either "x,y" strings or two-element lists.
	Position any `json:"position" mapstructure:"position"`
	Size     any `json:"size" mapstructure:"size"`

	// Start marks the start passage. The first passage wins if several claim it.
	Start bool `json:"start" mapstructure:"start"`

	// Story-level settings, read from the start passage only.
	Story         string   `json:"story" mapstructure:"story"`
	Format        string   `json:"format" mapstructure:"format"`
	FormatVersion string   `json:"format_version" mapstructure:"format_version"`
	IFID          string   `json:"ifid" mapstructure:"ifid"`
	StoryTags     []string `json:"story_tags" mapstructure:"story_tags"`
	Stylesheet    string   `json:"stylesheet" mapstructure:"stylesheet"`
	Script        string   `json:"script" mapstructure:"script"`
}
