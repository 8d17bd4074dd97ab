package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/wikicorpus/internal/model"
)

// JSONWriter outputs a run manifest in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is recorded in the manifest when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the program version in the manifest.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Manifest describes a crawl run without the corpus text.
type Manifest struct {
	// Version is the wikicorpus version that produced the run.
	Version string `json:"version,omitempty"`

	*model.CrawlResult

	// Sentences is the number of corpus lines.
	Sentences int `json:"sentences"`

	// Error is the error that stopped the run, if any.
	Error string `json:"error,omitempty"`

	// Pages lists every accepted page in corpus order.
	Pages []ManifestPage `json:"pages"`
}

// ManifestPage describes one accepted page.
type ManifestPage struct {
	Seq       int      `json:"seq"`
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Links     []string `json:"links,omitempty"`
	LinkCount int      `json:"link_count"`
	Sentences int      `json:"sentences"`
	Hash      string   `json:"sha256,omitempty"`
}

// NewManifest builds the manifest of result.
func NewManifest(result *model.CrawlResult, version string) *Manifest {
	pages := make([]ManifestPage, len(result.Pages))
	for i, p := range result.Pages {
		pages[i] = ManifestPage{
			Seq:       i,
			URL:       p.URL(),
			Title:     p.Title(),
			Links:     p.Links(),
			LinkCount: p.LinkCount(),
			Sentences: p.SentenceCount(),
			Hash:      p.Hash(),
		}
	}

	return &Manifest{
		Version:     version,
		CrawlResult: result,
		Sentences:   result.SentenceCount(),
		Error:       errorMessage(result),
		Pages:       pages,
	}
}

// Write outputs the manifest of result in JSON format.
func (w *JSONWriter) Write(result *model.CrawlResult) (int, error) {
	return w.writeJSON(NewManifest(result, w.version))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}
