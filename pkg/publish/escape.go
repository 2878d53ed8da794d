package publish

import "strings"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape makes s safe for HTML text and quoted attribute values.
func Escape(s string) string {
	return escaper.Replace(s)
}
