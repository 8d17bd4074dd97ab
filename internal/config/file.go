package config

import "time"

// File represents the structure of the .wikicorpus configuration file.
// Zero values mean "keep the default".
type File struct {
	// SeedURL overrides the seed article.
	SeedURL string `yaml:"seed,omitempty"`

	// VisitCap overrides the visit cap. A pointer so that 0 can be set explicitly.
	VisitCap *int `yaml:"visitCap,omitempty"`

	// LinkPrefix overrides the prefix for relative links.
	LinkPrefix string `yaml:"linkPrefix,omitempty"`

	// LinkFilter overrides the substring required in queued links.
	LinkFilter string `yaml:"linkFilter,omitempty"`

	// MediaMarker overrides the substring of links skipped without fetching.
	MediaMarker string `yaml:"mediaMarker,omitempty"`

	// MetaMarker overrides the title substring of dropped pages.
	MetaMarker string `yaml:"metaMarker,omitempty"`

	// TitleElementID overrides the heading element id.
	TitleElementID string `yaml:"titleElementId,omitempty"`

	// Output overrides the corpus file path.
	Output string `yaml:"output,omitempty"`

	// FollowLinks enables link extraction on every page.
	FollowLinks bool `yaml:"followLinks,omitempty"`

	// SkipFailures keeps crawling past fetch failures.
	SkipFailures bool `yaml:"skipFailures,omitempty"`

	// Report is an optional Markdown report path.
	Report string `yaml:"report,omitempty"`

	// Manifest is an optional JSON manifest path.
	Manifest string `yaml:"manifest,omitempty"`

	// HTTP holds transport settings.
	HTTP HTTPFile `yaml:"http,omitempty"`

	// Database holds checkpoint settings.
	Database DatabaseFile `yaml:"database,omitempty"`

	// Train holds the training hook.
	Train TrainFile `yaml:"train,omitempty"`
}

// HTTPFile holds transport settings of the configuration file.
type HTTPFile struct {
	// Timeout is the client timeout, e.g. "30s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Delay is the minimum interval between requests, e.g. "500ms".
	Delay time.Duration `yaml:"delay,omitempty"`

	// Retries is the number of extra attempts per fetch.
	Retries int `yaml:"retries,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxBodySize overrides the body size limit in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// DatabaseFile holds checkpoint settings of the configuration file.
type DatabaseFile struct {
	// Disabled turns off the crawl database.
	Disabled bool `yaml:"disabled,omitempty"`

	// Dir overrides the database directory.
	Dir string `yaml:"dir,omitempty"`
}

// TrainFile holds the training hook of the configuration file.
type TrainFile struct {
	// Command is the program and arguments to run after the corpus is written.
	Command []string `yaml:"command,omitempty"`
}
