package crawler

import "strings"

// LinkRules turns raw href values into absolute, filtered link URLs.
//
// The checks are plain substring tests, applied in this order:
//  1. an href containing "#" is dropped
//  2. an href not containing "http" gets Prefix prepended
//  3. the result is kept only if it contains Filter
type LinkRules struct {
	// Prefix is prepended to hrefs without "http", e.g. "https://en.wikipedia.org".
	Prefix string

	// Filter must appear in the final URL, e.g. "en.". Empty keeps everything.
	Filter string
}

// DefaultLinkRules returns the rules for English Wikipedia.
func DefaultLinkRules() LinkRules {
	return LinkRules{
		Prefix: "https://en.wikipedia.org",
		Filter: "en.",
	}
}

// Normalize applies the rules to href. It returns the link and true if the
// link should be kept.
func (r LinkRules) Normalize(href string) (string, bool) {
	if strings.Contains(href, "#") {
		return "", false
	}
	if !strings.Contains(href, "http") {
		href = r.Prefix + href
	}
	if !strings.Contains(href, r.Filter) {
		return "", false
	}
	return href, true
}
