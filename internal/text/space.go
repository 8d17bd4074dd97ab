package text

import "strings"

// CollapseSpaces replaces each run of ASCII spaces with a single space.
// Tabs, newlines and other whitespace are left as they are.
func CollapseSpaces(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	lastSpace := false
	for _, r := range s {
		if r == ' ' {
			if !lastSpace {
				sb.WriteRune(r)
			}
			lastSpace = true
			continue
		}
		sb.WriteRune(r)
		lastSpace = false
	}
	return sb.String()
}

// Clean strips citations and then collapses spaces.
func Clean(s string) string {
	return CollapseSpaces(StripCitations(s))
}

// Normalize runs the full corpus pipeline: Clean, Segment, Clean.
func Normalize(s string) string {
	return Clean(Segment(Clean(s)))
}
