package publish

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/quire/pkg/domain"
)

// Options tunes how a story is published.
type Options struct {
	// StartOptional allows publishing without a valid start passage. The startnode
	// attribute is then left blank.
	StartOptional bool
	// StartPassageID overrides the story's start passage, e.g. to test from a passage.
	StartPassageID string
	// FormatOptions is passed to the format runtime through the options attribute.
	// "debug" turns on test mode in most formats.
	FormatOptions string
	// Placeholders are extra {{KEY}} substitutions applied to the format template.
	// STORY_NAME and STORY_DATA always win over an entry of the same key.
	Placeholders map[string]string
}

// StoryData returns the <tw-storydata> element for a story.
func StoryData(s *domain.Story, app domain.AppInfo, opts Options) (string, error) {
	startID := s.StartPassage
	if opts.StartPassageID != "" {
		startID = opts.StartPassageID
	}

	startNode := ""
	switch idx := slices.IndexFunc(s.Passages, func(p *domain.Passage) bool { return p.ID == startID }); {
	case idx >= 0:
		startNode = strconv.Itoa(idx + 1)
	case opts.StartOptional:
	case startID == "":
		return "", fmt.Errorf("publish %q: %w", s.Name, domain.ErrNoStartPassage)
	default:
		return "", fmt.Errorf("publish %q: passage %s: %w", s.Name, startID, domain.ErrStartPassageNotFound)
	}

	var b strings.Builder
	fmt.Fprintf(&b,
		`<tw-storydata name="%s" startnode="%s" creator="%s" creator-version="%s" format="%s" format-version="%s" ifid="%s" options="%s" tags="%s" zoom="%s" hidden>`,
		Escape(s.Name), startNode, Escape(app.Name), Escape(app.Version),
		Escape(s.StoryFormat), Escape(s.StoryFormatVersion), Escape(s.IFID),
		Escape(opts.FormatOptions), Escape(strings.Join(s.Tags, " ")), number(s.Zoom))

	// User code is emitted raw: formats read it back verbatim.
	b.WriteString(`<style role="stylesheet" id="twine-user-stylesheet" type="text/twine-css">`)
	b.WriteString(s.Stylesheet)
	b.WriteString(`</style>`)
	b.WriteString(`<script role="script" id="twine-user-script" type="text/twine-javascript">`)
	b.WriteString(s.Script)
	b.WriteString(`</script>`)

	for _, tag := range tagNames(s) {
		if color, ok := s.TagColors[tag]; ok && color != domain.ColorNone {
			fmt.Fprintf(&b, `<tw-tag name="%s" color="%s"></tw-tag>`, Escape(tag), Escape(string(color)))
		} else {
			fmt.Fprintf(&b, `<tw-tag name="%s"></tw-tag>`, Escape(tag))
		}
	}

	for i, p := range s.Passages {
		writePassage(&b, p, i+1)
	}
	b.WriteString(`</tw-storydata>`)
	return b.String(), nil
}

func writePassage(b *strings.Builder, p *domain.Passage, pid int) {
	fmt.Fprintf(b,
		`<tw-passagedata pid="%d" name="%s" tags="%s" position="%s,%s" size="%s,%s">%s</tw-passagedata>`,
		pid, Escape(p.Name), Escape(strings.Join(p.Tags, " ")),
		number(p.Left), number(p.Top), number(p.Width), number(p.Height),
		Escape(p.Text))
}

// Story binds a story into a format's template, producing a complete HTML page.
func Story(s *domain.Story, format *domain.StoryFormat, app domain.AppInfo, opts Options) (string, error) {
	if format == nil || format.Properties == nil {
		return "", domain.ErrFormatNotLoaded
	}
	if format.Properties.Source == "" {
		return "", fmt.Errorf("%s: %w", format.Ref(), domain.ErrFormatHasNoSource)
	}

	data, err := StoryData(s, app, opts)
	if err != nil {
		return "", err
	}

	values := make(map[string]string, len(opts.Placeholders)+2)
	for k, v := range opts.Placeholders {
		values[k] = v
	}
	values[PlaceholderStoryName] = Escape(s.Name)
	values[PlaceholderStoryData] = data
	return Substitute(format.Properties.Source, values), nil
}

// StoryPlaceholders returns a {{key}} substitution for each story property, keyed by the
// property's serialized name. Values are escaped.
func StoryPlaceholders(s *domain.Story) map[string]string {
	values := map[string]string{
		"id":                 s.ID,
		"name":               s.Name,
		"ifid":               s.IFID,
		"storyFormat":        s.StoryFormat,
		"storyFormatVersion": s.StoryFormatVersion,
		"tags":               strings.Join(s.Tags, " "),
		"zoom":               number(s.Zoom),
		"snapToGrid":         strconv.FormatBool(s.SnapToGrid),
		"lastUpdate":         s.LastUpdate.UTC().Format(time.RFC3339),
	}
	for k, v := range values {
		values[k] = Escape(v)
	}
	return values
}

// Archive concatenates the story data of every story, separated by blank lines.
// Stories without a usable start passage are still archived.
func Archive(stories []*domain.Story, app domain.AppInfo) string {
	parts := make([]string, 0, len(stories))
	for _, s := range stories {
		// StartOptional makes StoryData infallible.
		data, _ := StoryData(s, app, Options{StartOptional: true})
		parts = append(parts, data)
	}
	return strings.Join(parts, "\n\n")
}

// tagNames lists every tag used by the story or given a color, sorted.
func tagNames(s *domain.Story) []string {
	tags := s.AllTags()
	for tag := range s.TagColors {
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return tags
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
