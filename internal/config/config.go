package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The crawl defaults give a 101-page crawl from a single fixed seed.
const (
	// DefaultSeedURL is the article the crawl starts from.
	DefaultSeedURL = "https://en.wikipedia.org/wiki/Pablo_Picasso"

	// DefaultVisitCap stops the crawl once more than this many pages have
	// been added after the seed, so at most DefaultVisitCap+1 are added.
	DefaultVisitCap = 100

	// DefaultLinkPrefix is prepended to hrefs that do not contain "http".
	DefaultLinkPrefix = "https://en.wikipedia.org"

	// DefaultLinkFilter must appear in a link for it to be queued.
	// It selects the English-language subdomain.
	DefaultLinkFilter = "en."

	// DefaultMediaMarker marks links to media description pages, which are skipped.
	DefaultMediaMarker = "File:"

	// DefaultMetaMarker marks help/meta pages by title; such pages are dropped.
	DefaultMetaMarker = "Help"

	// DefaultTitleElementID is the id of the element holding the article heading.
	DefaultTitleElementID = "firstHeading"

	// DefaultOutputPath is the corpus file name.
	DefaultOutputPath = "training_text.txt"

	// DefaultTimeout of zero leaves the HTTP client without an overall timeout,
	// leaving request timeouts to the transport.
	DefaultTimeout = time.Duration(0)

	// DefaultCrawlDelay of zero disables the rate limiter.
	DefaultCrawlDelay = time.Duration(0)

	// DefaultRetries of zero makes every fetch a single attempt.
	DefaultRetries = 0

	// DefaultUserAgent identifies wikicorpus in HTTP requests.
	DefaultUserAgent = "wikicorpus/1.0 (+https://github.com/nao1215/wikicorpus)"

	// DefaultMaxBodySize limits the response body size read per page.
	// Long encyclopedia articles stay well below it.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "wikicorpus"
)

// Config holds all configuration options for a crawl run.
// It is built once at startup (defaults, then config file, then flags) and
// passed explicitly to the components that need it.
type Config struct {
	// SeedURL is the article the crawl starts from.
	SeedURL string

	// VisitCap bounds the number of pages added after the seed.
	// The crawl stops as soon as the count exceeds VisitCap.
	VisitCap int

	// LinkPrefix makes relative hrefs absolute.
	LinkPrefix string

	// LinkFilter is the substring a link must contain to be queued.
	LinkFilter string

	// MediaMarker is the substring that marks links to skip without fetching.
	MediaMarker string

	// MetaMarker is the title substring that marks pages to drop after fetching.
	MetaMarker string

	// TitleElementID is the id attribute of the heading element.
	TitleElementID string

	// OutputPath is the corpus file. It is overwritten on each run.
	OutputPath string

	// FollowLinks extracts links from every fetched page, not just the seed.
	// By default only the seed's links are queued.
	FollowLinks bool

	// SkipFailures records fetch failures and keeps crawling instead of
	// ending the run on the first one.
	SkipFailures bool

	// Timeout is the overall HTTP client timeout per request. Zero means none.
	Timeout time.Duration

	// CrawlDelay is the minimum interval between requests. Zero disables it.
	CrawlDelay time.Duration

	// Retries is the number of extra attempts for a failed fetch.
	Retries int

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .wikicorpus is searched in the current directory, the XDG
	// config directory and the home directory.
	ConfigFilePath string

	// ReportFile is an optional Markdown crawl report path.
	ReportFile string

	// ManifestFile is an optional JSON manifest path.
	ManifestFile string

	// SaveToDB enables checkpointing of runs to the SQLite database.
	SaveToDB bool

	// DBDir is the directory holding the database file.
	// Defaults to the XDG data directory (~/.local/share/wikicorpus on Linux).
	DBDir string

	// TrainCommand is run after the corpus is written, with the corpus path
	// appended as the last argument. Empty disables the training hook.
	TrainCommand []string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		SeedURL:        DefaultSeedURL,
		VisitCap:       DefaultVisitCap,
		LinkPrefix:     DefaultLinkPrefix,
		LinkFilter:     DefaultLinkFilter,
		MediaMarker:    DefaultMediaMarker,
		MetaMarker:     DefaultMetaMarker,
		TitleElementID: DefaultTitleElementID,
		OutputPath:     DefaultOutputPath,
		Timeout:        DefaultTimeout,
		CrawlDelay:     DefaultCrawlDelay,
		Retries:        DefaultRetries,
		UserAgent:      DefaultUserAgent,
		Headers:        make(map[string]string),
		MaxBodySize:    DefaultMaxBodySize,
		SaveToDB:       true,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for wikicorpus.
// On Linux: ~/.local/share/wikicorpus
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wikicorpus.
// On Linux: ~/.config/wikicorpus
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Apply overlays the non-zero values of a configuration file onto c.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.SeedURL != "" {
		c.SeedURL = f.SeedURL
	}
	if f.VisitCap != nil {
		c.VisitCap = *f.VisitCap
	}
	if f.LinkPrefix != "" {
		c.LinkPrefix = f.LinkPrefix
	}
	if f.LinkFilter != "" {
		c.LinkFilter = f.LinkFilter
	}
	if f.MediaMarker != "" {
		c.MediaMarker = f.MediaMarker
	}
	if f.MetaMarker != "" {
		c.MetaMarker = f.MetaMarker
	}
	if f.TitleElementID != "" {
		c.TitleElementID = f.TitleElementID
	}
	if f.Output != "" {
		c.OutputPath = f.Output
	}
	if f.FollowLinks {
		c.FollowLinks = true
	}
	if f.SkipFailures {
		c.SkipFailures = true
	}
	if f.HTTP.Timeout != 0 {
		c.Timeout = f.HTTP.Timeout
	}
	if f.HTTP.Delay != 0 {
		c.CrawlDelay = f.HTTP.Delay
	}
	if f.HTTP.Retries != 0 {
		c.Retries = f.HTTP.Retries
	}
	if f.HTTP.UserAgent != "" {
		c.UserAgent = f.HTTP.UserAgent
	}
	if f.HTTP.MaxBodySize != 0 {
		c.MaxBodySize = f.HTTP.MaxBodySize
	}
	if len(f.HTTP.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range f.HTTP.Headers {
			c.Headers[k] = v
		}
	}
	if f.Report != "" {
		c.ReportFile = f.Report
	}
	if f.Manifest != "" {
		c.ManifestFile = f.Manifest
	}
	if f.Database.Disabled {
		c.SaveToDB = false
	}
	if f.Database.Dir != "" {
		c.DBDir = f.Database.Dir
	}
	if len(f.Train.Command) > 0 {
		c.TrainCommand = append([]string(nil), f.Train.Command...)
	}
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors in errors.go.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeedURL
	}
	if !isHTTPURL(c.SeedURL) {
		return ErrInvalidSeedURL
	}

	if c.VisitCap < 0 {
		return ErrInvalidVisitCap
	}

	if c.OutputPath == "" {
		return ErrNoOutputPath
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.Retries < 0 {
		return ErrInvalidRetries
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
