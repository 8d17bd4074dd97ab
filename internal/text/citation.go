package text

import "strings"

// StripCitations removes every bracketed run such as "[1]" or "[citation needed]".
//
// A run starts at '[' and ends at the next ']' inclusive. A '[' inside a run
// is treated as ordinary content, so "[a[b]c" leaves "c". A '[' that is never
// closed removes everything after it. A ']' outside a run is kept.
func StripCitations(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	inCitation := false
	for _, r := range s {
		switch {
		case r == '[':
			inCitation = true
		case inCitation && r == ']':
			inCitation = false
		case inCitation:
			// dropped
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
