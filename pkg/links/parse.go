package links

import (
	"regexp"
	"strings"
)

var (
	linkTag = regexp.MustCompile(`\[\[.*?\]\]`)
	// external matches targets with a URL scheme, which never name a passage.
	external = regexp.MustCompile(`(?i)^\w+:\/\/\/?\w`)
)

// Parse returns the distinct link targets found in text, in order of first appearance.
func Parse(text string) []string {
	tags := linkTag.FindAllString(text, -1)
	if len(tags) == 0 {
		return nil
	}

	var result []string
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		target := extractTarget(removeSetter(tag[2 : len(tag)-2]))
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		result = append(result, target)
	}
	return result
}

// ParseInternal is Parse without links to external URLs.
func ParseInternal(text string) []string {
	all := Parse(text)
	result := all[:0:0]
	for _, target := range all {
		if !IsExternal(target) {
			result = append(result, target)
		}
	}
	return result
}

// IsExternal reports whether a link target is a URL rather than a passage name.
func IsExternal(target string) bool {
	return external.MatchString(target)
}

// removeSetter drops a trailing "][setter" clause.
func removeSetter(body string) string {
	if i := strings.Index(body, "]["); i >= 0 {
		return body[:i]
	}
	return body
}

// extractTarget applies the divider rules: text after the rightmost "->", else text
// after the leftmost "<-", else text after the first "|", else the whole body.
func extractTarget(body string) string {
	if i := strings.LastIndex(body, "->"); i >= 0 {
		return body[i+2:]
	}
	if i := strings.Index(body, "<-"); i >= 0 {
		return body[i+2:]
	}
	if i := strings.Index(body, "|"); i >= 0 {
		return body[i+1:]
	}
	return body
}
