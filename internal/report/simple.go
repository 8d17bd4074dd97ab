package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/wikicorpus/internal/model"
)

// SimpleWriter outputs a human-readable run summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose lists every page and failure.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables listing of every page and failure.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeStatistics(&sb, result)
	if w.verbose {
		w.writePages(&sb, result)
		w.writeFailures(&sb, result)
	}
	w.writeFooter(&sb, result)

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the summary header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        WIKICORPUS CRAWL\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if result.RunID != 0 {
		fmt.Fprintf(sb, "Run:        %d\n", result.RunID)
	}
	fmt.Fprintf(sb, "Seed:       %s\n", result.SeedURL)
	fmt.Fprintf(sb, "Started:    %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:   %s\n", result.Duration().Round(time.Millisecond))
	fmt.Fprintf(sb, "Pages:      %d\n", len(result.Pages))
	fmt.Fprintf(sb, "Sentences:  %d\n", result.SentenceCount())

	if msg := errorMessage(result); msg != "" {
		fmt.Fprintf(sb, "Status:     ERROR - %s\n", msg)
	} else {
		sb.WriteString("Status:     Complete\n")
	}

	sb.WriteString("\n")
}

// writeStatistics writes how each dequeued link was handled.
func (w *SimpleWriter) writeStatistics(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("LINKS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "  ADDED:      %d\n", result.Count)
	fmt.Fprintf(sb, "  MEDIA:      %d\n", result.Stats.SkippedMedia)
	fmt.Fprintf(sb, "  DUPLICATE:  %d\n", result.Stats.SkippedDuplicates)
	fmt.Fprintf(sb, "  META:       %d\n", result.Stats.SkippedMeta)
	fmt.Fprintf(sb, "  FAILED:     %d\n", len(result.Failures))
	fmt.Fprintf(sb, "  REMAINING:  %d\n", result.Stats.Remaining)
	sb.WriteString("\n")
}

// writePages lists accepted pages in corpus order.
func (w *SimpleWriter) writePages(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(result.Pages) == 0 {
		sb.WriteString("  No pages added\n\n")
		return
	}

	for i, p := range result.Pages {
		fmt.Fprintf(sb, "  [%3d] %s (%d sentences)\n", i, p.Title(), p.SentenceCount())
		fmt.Fprintf(sb, "        %s\n", p.URL())
	}
	sb.WriteString("\n")
}

// writeFailures lists pages that could not be fetched.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, result *model.CrawlResult) {
	if len(result.Failures) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILURES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, f := range result.Failures {
		fmt.Fprintf(sb, "  [!] %s\n", f.URL)
		fmt.Fprintf(sb, "      %s\n", f.Error)
	}
	sb.WriteString("\n")
}

// writeFooter writes the summary footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	if result.CorpusPath != "" {
		fmt.Fprintf(sb, "Corpus written to %s\n", result.CorpusPath)
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
