package model

import (
	"strings"
	"time"
)

// CrawlResult holds everything produced by a single crawl run.
// It is filled by the crawl step and read by the output and training steps.
type CrawlResult struct {
	// RunID is the database id of the run, or 0 when the run is not persisted.
	RunID int64 `json:"run_id,omitempty"`

	// SeedURL is the article the crawl started from.
	SeedURL string `json:"seed_url"`

	// Pages are the accepted pages in crawl order. The seed is first.
	Pages []Page `json:"-"`

	// Visited lists every URL that was fetched, in visit order. The seed is first.
	Visited []string `json:"visited"`

	// Count is the number of pages accepted after the seed.
	Count int `json:"count"`

	// Stats counts links that were dequeued but not turned into pages.
	Stats CrawlStats `json:"stats"`

	// Failures holds fetch failures that were skipped instead of ending the run.
	Failures []FetchFailure `json:"failures,omitempty"`

	// CorpusPath is where the corpus file was written.
	CorpusPath string `json:"corpus_path,omitempty"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last step completed.
	FinishedAt time.Time `json:"finished_at"`

	// PerformedSteps lists pipeline steps that finished, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the error that stopped the run, if any.
	Error error `json:"-"`

	// ErrorMessage is Error as a string for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// CrawlStats counts dequeued links that did not produce a page.
type CrawlStats struct {
	// SkippedMedia counts links to media or file description pages.
	SkippedMedia int `json:"skipped_media"`

	// SkippedDuplicates counts links that were already visited.
	SkippedDuplicates int `json:"skipped_duplicates"`

	// SkippedMeta counts fetched pages dropped because of their title.
	SkippedMeta int `json:"skipped_meta"`

	// Remaining is the queue length when the crawl stopped.
	Remaining int `json:"remaining"`
}

// FetchFailure records a page that could not be fetched.
type FetchFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// NewCrawlResult creates an empty result for the given seed.
func NewCrawlResult(seedURL string) *CrawlResult {
	return &CrawlResult{
		SeedURL:   seedURL,
		Pages:     make([]Page, 0),
		Visited:   make([]string, 0),
		StartedAt: time.Now(),
	}
}

// Corpus returns the text of every page concatenated in crawl order with no
// separator between pages.
func (r *CrawlResult) Corpus() string {
	var sb strings.Builder
	for _, p := range r.Pages {
		sb.WriteString(p.Text())
	}
	return sb.String()
}

// SentenceCount returns the total number of corpus lines.
func (r *CrawlResult) SentenceCount() int {
	total := 0
	for _, p := range r.Pages {
		total += p.SentenceCount()
	}
	return total
}

// Duration returns how long the run took, or zero if it has not finished.
func (r *CrawlResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
