package formats

import (
	"strings"

	"golang.org/x/mod/semver"
)

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// ValidVersion reports whether v is a semantic version, with or without a leading "v".
func ValidVersion(v string) bool {
	return semver.IsValid(canonical(v))
}

// CompareVersions returns -1, 0 or +1 comparing a and b. Invalid versions sort first.
func CompareVersions(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

// SatisfiesCaret reports whether version is in the range ^base: not older than base and
// sharing its major version. As with npm ranges, a 0.x base also pins the minor
// version and a 0.0.x base pins the patch.
func SatisfiesCaret(version, base string) bool {
	v, b := canonical(version), canonical(base)
	if !semver.IsValid(v) || !semver.IsValid(b) {
		return false
	}
	if semver.Compare(v, b) < 0 {
		return false
	}
	if semver.Prerelease(v) != "" && semver.Prerelease(b) == "" {
		return false
	}

	switch {
	case semver.Major(b) != "v0":
		return semver.Major(v) == semver.Major(b)
	case semver.MajorMinor(b) != "v0.0":
		return semver.MajorMinor(v) == semver.MajorMinor(b)
	default:
		return semver.Compare(semver.Canonical(v), semver.Canonical(b)) == 0
	}
}
