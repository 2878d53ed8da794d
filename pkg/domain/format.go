package domain

// LoadState tracks the lifecycle of a story format definition.
type LoadState string

const (
	LoadStateUnloaded LoadState = "unloaded"
	LoadStateLoading  LoadState = "loading"
	LoadStateLoaded   LoadState = "loaded"
	LoadStateError    LoadState = "error"
)

// FormatRef names a story format by name and version.
type FormatRef struct {
	Name    string `json:"name" yaml:"name" mapstructure:"name"`
	Version string `json:"version" yaml:"version" mapstructure:"version"`
}

// IsZero reports whether either half of the reference is missing.
func (r FormatRef) IsZero() bool {
	return r.Name == "" || r.Version == ""
}

func (r FormatRef) String() string {
	return r.Name + " " + r.Version
}

// StoryFormat is a format known to the library.
type StoryFormat struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	URL       string    `json:"url"`
	UserAdded bool      `json:"userAdded"`
	LoadState LoadState `json:"loadState"`

	// LoadError is set when LoadState is LoadStateError.
	LoadError error `json:"-"`

	// Properties is populated once LoadState is LoadStateLoaded.
	Properties *FormatProperties `json:"properties,omitempty"`
}

// Ref returns the format's name and version.
func (f *StoryFormat) Ref() FormatRef {
	return FormatRef{Name: f.Name, Version: f.Version}
}

// FormatProperties is the definition published by a format's loader file.
type FormatProperties struct {
	Name        string `json:"name" mapstructure:"name"`
	Version     string `json:"version" mapstructure:"version"`
	Author      string `json:"author,omitempty" mapstructure:"author"`
	Description string `json:"description,omitempty" mapstructure:"description"`
	Image       string `json:"image,omitempty" mapstructure:"image"`
	License     string `json:"license,omitempty" mapstructure:"license"`
	URL         string `json:"url,omitempty" mapstructure:"url"`
	Proofing    bool   `json:"proofing,omitempty" mapstructure:"proofing"`

	// Source is the HTML template containing the {{STORY_NAME}} and {{STORY_DATA}} tokens.
	Source string `json:"source,omitempty" mapstructure:"source"`
}

// AppInfo identifies the program that publishes a story.
type AppInfo struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}
