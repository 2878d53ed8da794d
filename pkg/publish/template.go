package publish

import "strings"

const (
	PlaceholderStoryName = "STORY_NAME"
	PlaceholderStoryData = "STORY_DATA"
)

// Substitute replaces every {{KEY}} in tmpl whose KEY is present in values.
// The template is scanned once from left to right and replacement values are spliced in
// verbatim, so a value that itself contains {{KEY}} or regexp syntax is never expanded.
// Unknown placeholders are left as they are.
func Substitute(tmpl string, values map[string]string) string {
	var b strings.Builder
	b.Grow(len(tmpl))

	rest := tmpl
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			b.WriteString(rest)
			return b.String()
		}
		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			b.WriteString(rest)
			return b.String()
		}
		key := rest[start+2 : start+2+end]
		value, ok := values[key]
		if !ok {
			// Not ours: keep one brace and rescan, so "{{{KEY}}" still finds {{KEY}}.
			b.WriteString(rest[:start+1])
			rest = rest[start+1:]
			continue
		}
		b.WriteString(rest[:start])
		b.WriteString(value)
		rest = rest[start+2+end+2:]
	}
}
