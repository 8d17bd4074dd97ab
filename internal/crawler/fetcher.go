package crawler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/nao1215/wikicorpus/internal/model"
)

const (
	// defaultUserAgent identifies the crawler to the server.
	defaultUserAgent = "wikicorpus/1.0 (+https://github.com/nao1215/wikicorpus)"

	// defaultMaxBodySize limits how much of a response body is read.
	defaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// defaultRetryInterval is the first wait between attempts.
	defaultRetryInterval = 500 * time.Millisecond

	// sniffLen is how many bytes are inspected to detect the body charset.
	sniffLen = 1024
)

// Fetcher retrieves one article and converts it into a processed model.Page.
//
// A Fetcher performs exactly one successful GET per call. With retries
// configured, transient failures (transport errors, 429 and 5xx) are retried
// with exponential backoff. Any other non-200 status fails immediately.
type Fetcher struct {
	// client performs the requests.
	client *http.Client

	// parser extracts title, body and links.
	parser *Parser

	// userAgent is sent with every request.
	userAgent string

	// headers are extra request headers.
	headers map[string]string

	// maxBodySize limits the number of body bytes read.
	maxBodySize int64

	// limiter spaces requests apart. Nil means no delay.
	limiter *rate.Limiter

	// retries is the number of extra attempts after a transient failure.
	retries int

	// retryInterval is the initial backoff interval.
	retryInterval time.Duration

	// logger receives retry notices.
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders sets extra request headers.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per page.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithDelay spaces requests at least d apart. Zero disables the delay.
func WithDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithRetries sets how many times a transient failure is retried.
func WithRetries(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.retries = n
		}
	}
}

// WithRetryInterval sets the initial wait between retries.
func WithRetryInterval(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.retryInterval = d
		}
	}
}

// WithLinkRules sets the rules used to filter extracted links.
func WithLinkRules(rules LinkRules) FetcherOption {
	return func(f *Fetcher) {
		f.parser.rules = rules
	}
}

// WithTitleElementID sets the id of the heading element.
func WithTitleElementID(id string) FetcherOption {
	return func(f *Fetcher) {
		if id != "" {
			f.parser.titleElementID = id
		}
	}
}

// WithFetcherLogger sets the logger for retry notices.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher creates a Fetcher that uses client for requests.
// A nil client means http.DefaultClient.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{
		client:        client,
		parser:        NewParser(DefaultLinkRules(), DefaultTitleElementID),
		userAgent:     defaultUserAgent,
		maxBodySize:   defaultMaxBodySize,
		retryInterval: defaultRetryInterval,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves pageURL and returns the processed page.
//
// When withLinks is false the page has no links. The title falls back to
// pageURL when the document has no heading element. The text is the
// paragraph text after Clean, Format and Clean.
//
// Errors are returned as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string, withLinks bool) (model.Page, error) {
	operation := func() (model.Page, error) {
		page, err := f.fetchOnce(ctx, pageURL, withLinks)
		if err != nil {
			var fe *FetchError
			if errors.As(err, &fe) && fe.Temporary() {
				return model.Page{}, err
			}
			return model.Page{}, backoff.Permanent(err)
		}
		return page, nil
	}

	notify := func(err error, wait time.Duration) {
		f.logger.Warn("retrying fetch",
			"url", pageURL,
			"error", err,
			"wait", wait,
		)
	}

	return backoff.RetryNotifyWithData(operation, f.newBackOff(ctx), notify)
}

// newBackOff builds the retry policy for one Fetch call.
func (f *Fetcher) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.retryInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.retries)), ctx) //nolint:gosec // retries is never negative
}

// fetchOnce performs a single attempt.
func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string, withLinks bool) (model.Page, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return model.Page{}, &FetchError{URL: pageURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return model.Page{}, &FetchError{URL: pageURL, Err: fmt.Errorf("build request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return model.Page{}, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, sniffLen))
		return model.Page{}, &FetchError{URL: pageURL, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatus}
	}

	body := decodeBody(io.LimitReader(resp.Body, f.maxBodySize), resp.Header.Get("Content-Type"))

	result, err := f.parser.Parse(body, withLinks)
	if err != nil {
		return model.Page{}, &FetchError{URL: pageURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("parse: %w", err)}
	}

	title := result.Title
	if !result.HasTitle {
		title = pageURL
	}

	return model.NewPage(pageURL, title, result.Links).WithText(result.Body).Process(), nil
}

// decodeBody converts the body to UTF-8 based on the Content-Type header,
// a byte order mark or a <meta> charset declaration.
func decodeBody(r io.Reader, contentType string) io.Reader {
	br := bufio.NewReaderSize(r, sniffLen)
	// Peek returns what is available when the body is shorter than sniffLen.
	peek, _ := br.Peek(sniffLen)
	enc, name, _ := charset.DetermineEncoding(peek, contentType)
	if name == "utf-8" {
		return br
	}
	return transform.NewReader(br, enc.NewDecoder())
}
