package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/nao1215/wikicorpus/internal/text"
)

// Stage records which transform produced a Page's current text.
type Stage int

const (
	// StageRaw is text exactly as extracted from the document, or as set by WithText.
	StageRaw Stage = iota

	// StageCleaned is text after citation stripping and space collapsing.
	StageCleaned

	// StageFormatted is text after sentence segmentation and caption filtering.
	// Formatted text is not considered cleaned until Clean runs again.
	StageFormatted
)

// String returns a human-readable name for the stage.
func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageCleaned:
		return "cleaned"
	case StageFormatted:
		return "formatted"
	default:
		return "unknown"
	}
}

// Page represents one crawled article.
//
// The zero value is an empty raw page. Links are fixed at construction;
// Links returns a copy so callers cannot modify them.
type Page struct {
	url   string
	title string
	links []string
	text  string
	stage Stage
}

// NewPage creates a raw page with no text.
// The links slice is copied.
func NewPage(pageURL, title string, links []string) Page {
	var copied []string
	if len(links) > 0 {
		copied = make([]string, len(links))
		copy(copied, links)
	}
	return Page{
		url:   pageURL,
		title: title,
		links: copied,
		stage: StageRaw,
	}
}

// RestorePage rebuilds a page from stored corpus text. The text is taken to
// be fully processed, so the page is in StageCleaned.
func RestorePage(pageURL, title, corpusText string) Page {
	return Page{
		url:   pageURL,
		title: title,
		text:  corpusText,
		stage: StageCleaned,
	}
}

// URL returns the address the page was fetched from.
func (p Page) URL() string { return p.url }

// Title returns the page heading, or the URL when the document had none.
func (p Page) Title() string { return p.title }

// Text returns the current text.
func (p Page) Text() string { return p.text }

// Stage returns the transform that produced the current text.
func (p Page) Stage() Stage { return p.stage }

// Cleaned reports whether the current text is the output of Clean.
func (p Page) Cleaned() bool { return p.stage == StageCleaned }

// Links returns a copy of the outbound links in document order.
func (p Page) Links() []string {
	if len(p.links) == 0 {
		return nil
	}
	links := make([]string, len(p.links))
	copy(links, p.links)
	return links
}

// LinkCount returns the number of outbound links.
func (p Page) LinkCount() int { return len(p.links) }

// WithText returns a copy of the page whose text is replaced entirely.
// The result is always StageRaw.
func (p Page) WithText(s string) Page {
	p.text = s
	p.stage = StageRaw
	return p
}

// Clean returns a copy with citations stripped and spaces collapsed.
func (p Page) Clean() Page {
	p.text = text.Clean(p.text)
	p.stage = StageCleaned
	return p
}

// Format returns a copy with the text split into one sentence per line and
// captions removed.
func (p Page) Format() Page {
	p.text = text.Segment(p.text)
	p.stage = StageFormatted
	return p
}

// Process applies Clean, Format and Clean in that order.
func (p Page) Process() Page {
	return p.Clean().Format().Clean()
}

// SentenceCount returns the number of lines in formatted or cleaned text.
func (p Page) SentenceCount() int {
	return strings.Count(p.text, "\n")
}

// Hash returns the hex SHA-256 of the current text, or "" for empty text.
// It is stored with each checkpointed page to detect content drift between runs.
func (p Page) Hash() string {
	if p.text == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(p.text))
	return hex.EncodeToString(sum[:])
}
