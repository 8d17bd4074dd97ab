package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/wikicorpus/internal/model"
)

const (
	// DefaultVisitCap is the page count after which the crawl stops.
	DefaultVisitCap = 100

	// DefaultMediaMarker marks links to file description pages.
	DefaultMediaMarker = "File:"

	// DefaultMetaMarker marks titles of help and meta pages.
	DefaultMetaMarker = "Help"
)

// PageFetcher retrieves a single processed page.
// *Fetcher implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string, withLinks bool) (model.Page, error)
}

// Recorder persists crawl progress as it happens.
// A recorder error ends the crawl.
type Recorder interface {
	// RecordVisit is called when a URL is marked visited, before it is fetched.
	RecordVisit(ctx context.Context, pageURL string) error

	// RecordPage is called when a page is accepted. seq is its position in
	// the corpus, starting at 0 for the seed.
	RecordPage(ctx context.Context, seq int, page model.Page) error
}

// Spider crawls articles breadth-first from a seed.
//
// A Spider is not safe for concurrent use. Each Crawl call starts with an
// empty queue and visited set.
type Spider struct {
	// fetcher retrieves pages.
	fetcher PageFetcher

	// visitCap stops the crawl once more than visitCap pages follow the seed.
	visitCap int

	// mediaMarker skips links containing it. Empty disables the check.
	mediaMarker string

	// metaMarker drops pages whose title contains it. Empty disables the check.
	metaMarker string

	// followLinks extracts links from non-seed pages as well.
	followLinks bool

	// skipFailures records failed fetches and continues instead of stopping.
	skipFailures bool

	// recorder receives progress. Nil means progress is not persisted.
	recorder Recorder

	// logger receives progress messages.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithVisitCap sets the page count after which the crawl stops.
// The crawl ends after cap+1 pages have been added after the seed.
func WithVisitCap(n int) SpiderOption {
	return func(s *Spider) {
		s.visitCap = n
	}
}

// WithMediaMarker sets the substring that marks links to skip.
func WithMediaMarker(marker string) SpiderOption {
	return func(s *Spider) {
		s.mediaMarker = marker
	}
}

// WithMetaMarker sets the title substring that marks pages to drop.
func WithMetaMarker(marker string) SpiderOption {
	return func(s *Spider) {
		s.metaMarker = marker
	}
}

// WithFollowLinks enables link extraction on every page, not only the seed.
func WithFollowLinks(follow bool) SpiderOption {
	return func(s *Spider) {
		s.followLinks = follow
	}
}

// WithSkipFailures makes non-seed fetch failures non-fatal.
func WithSkipFailures(skip bool) SpiderOption {
	return func(s *Spider) {
		s.skipFailures = skip
	}
}

// WithRecorder sets where crawl progress is persisted.
func WithRecorder(r Recorder) SpiderOption {
	return func(s *Spider) {
		s.recorder = r
	}
}

// WithLogger sets the logger for progress messages.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider that uses fetcher to retrieve pages.
func NewSpider(fetcher PageFetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:     fetcher,
		visitCap:    DefaultVisitCap,
		mediaMarker: DefaultMediaMarker,
		metaMarker:  DefaultMetaMarker,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// crawlState is the mutable state of one Crawl call.
type crawlState struct {
	result  *model.CrawlResult
	visited map[string]struct{}
	queue   []string
}

// Crawl fetches the seed and then the queued links until the queue is empty
// or the visit cap is exceeded.
//
// The returned result is never nil. On error it holds the pages accepted
// before the failure, so callers can still inspect or save partial work.
func (s *Spider) Crawl(ctx context.Context, seedURL string) (*model.CrawlResult, error) {
	st := &crawlState{
		result:  model.NewCrawlResult(seedURL),
		visited: make(map[string]struct{}),
	}
	defer func() {
		st.result.Stats.Remaining = len(st.queue)
	}()

	if err := s.visit(ctx, st, seedURL); err != nil {
		return st.result, err
	}

	seed, err := s.fetcher.Fetch(ctx, seedURL, true)
	if err != nil {
		return st.result, fmt.Errorf("fetch seed: %w", err)
	}
	if err := s.accept(ctx, st, seed); err != nil {
		return st.result, err
	}

	s.logger.Info("seed fetched",
		"title", seed.Title(),
		"links", seed.LinkCount(),
	)

	for len(st.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return st.result, err
		}

		link := st.queue[0]
		st.queue = st.queue[1:]

		if s.mediaMarker != "" && strings.Contains(link, s.mediaMarker) {
			st.result.Stats.SkippedMedia++
			continue
		}

		if _, seen := st.visited[link]; seen {
			st.result.Stats.SkippedDuplicates++
			continue
		}

		if err := s.visit(ctx, st, link); err != nil {
			return st.result, err
		}

		page, err := s.fetcher.Fetch(ctx, link, s.followLinks)
		if err != nil {
			if !s.skipFailures || ctx.Err() != nil {
				return st.result, err
			}
			s.logger.Warn("skipping page", "url", link, "error", err)
			st.result.Failures = append(st.result.Failures, model.FetchFailure{
				URL:   link,
				Error: err.Error(),
			})
			continue
		}

		if s.metaMarker != "" && strings.Contains(page.Title(), s.metaMarker) {
			st.result.Stats.SkippedMeta++
			continue
		}

		if err := s.accept(ctx, st, page); err != nil {
			return st.result, err
		}
		st.result.Count++

		s.logger.Info("page added",
			"title", page.Title(),
			"count", st.result.Count,
			"queued", len(st.queue),
		)

		if st.result.Count > s.visitCap {
			break
		}
	}

	s.logger.Info("crawl finished",
		"pages", len(st.result.Pages),
		"visited", len(st.result.Visited),
		"elapsed", time.Since(st.result.StartedAt).Round(time.Millisecond),
	)

	return st.result, nil
}

// visit marks pageURL visited and records it.
func (s *Spider) visit(ctx context.Context, st *crawlState, pageURL string) error {
	st.visited[pageURL] = struct{}{}
	st.result.Visited = append(st.result.Visited, pageURL)
	if s.recorder == nil {
		return nil
	}
	if err := s.recorder.RecordVisit(ctx, pageURL); err != nil {
		return fmt.Errorf("record visit %s: %w", pageURL, err)
	}
	return nil
}

// accept appends page to the corpus, queues its links and records it.
func (s *Spider) accept(ctx context.Context, st *crawlState, page model.Page) error {
	seq := len(st.result.Pages)
	st.result.Pages = append(st.result.Pages, page)
	st.queue = append(st.queue, page.Links()...)
	if s.recorder == nil {
		return nil
	}
	if err := s.recorder.RecordPage(ctx, seq, page); err != nil {
		return fmt.Errorf("record page %s: %w", page.URL(), err)
	}
	return nil
}
