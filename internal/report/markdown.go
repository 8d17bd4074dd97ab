package report

import (
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/wikicorpus/internal/model"
)

// previewSentences is how many corpus lines of each page the report shows.
const previewSentences = 3

// MarkdownWriter outputs a crawl summary in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl summary in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeStatistics(md, result)
	w.writePages(md, result)
	w.writeFailures(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Wikipedia Corpus Report")
	md.PlainText("")

	rows := [][]string{
		{"Seed", "`" + result.SeedURL + "`"},
		{"Started", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", result.Duration().Round(time.Millisecond).String()},
		{"Pages", strconv.Itoa(len(result.Pages))},
		{"Sentences", strconv.Itoa(result.SentenceCount())},
		{"Visited URLs", strconv.Itoa(len(result.Visited))},
		{"Status", w.getStatusText(result)},
	}
	if result.RunID != 0 {
		rows = append([][]string{{"Run", strconv.FormatInt(result.RunID, 10)}}, rows...)
	}
	if result.CorpusPath != "" {
		rows = append(rows, []string{"Corpus", "`" + result.CorpusPath + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on run state.
func (w *MarkdownWriter) getStatusText(result *model.CrawlResult) string {
	if msg := errorMessage(result); msg != "" {
		return "❌ Error - " + msg
	}
	if len(result.Failures) > 0 {
		return "⚠️ Complete with " + strconv.Itoa(len(result.Failures)) + " failed page(s)"
	}
	return "✅ Complete"
}

// writeStatistics writes how each dequeued link was handled.
func (w *MarkdownWriter) writeStatistics(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Crawl Statistics")
	md.PlainText("")

	stats := result.Stats
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Added after seed", strconv.Itoa(result.Count)},
			{"Media links skipped", strconv.Itoa(stats.SkippedMedia)},
			{"Duplicates skipped", strconv.Itoa(stats.SkippedDuplicates)},
			{"Meta pages dropped", strconv.Itoa(stats.SkippedMeta)},
			{"Failed fetches", strconv.Itoa(len(result.Failures))},
			{"Left in queue", strconv.Itoa(stats.Remaining)},
		},
	})
	md.PlainText("")

	if result.Count+stats.SkippedMedia+stats.SkippedDuplicates+stats.SkippedMeta+len(result.Failures) > 0 {
		w.writePieChart(md, result)
	}

	w.writeAlert(md, result)
}

// writePieChart writes a mermaid pie chart of link outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, result *model.CrawlResult) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Dequeued Links"),
		piechart.WithShowData(true),
	)

	outcomes := []struct {
		label string
		count int
	}{
		{"Added", result.Count},
		{"Media", result.Stats.SkippedMedia},
		{"Duplicate", result.Stats.SkippedDuplicates},
		{"Meta", result.Stats.SkippedMeta},
		{"Failed", len(result.Failures)},
	}
	for _, o := range outcomes {
		if o.count > 0 {
			chart.LabelAndIntValue(o.label, uint64(o.count)) //nolint:gosec // count is positive
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing how the run ended.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.CrawlResult) {
	switch {
	case errorMessage(result) != "":
		md.Cautionf("The crawl stopped early. The corpus holds the %d page(s) fetched before the error.", len(result.Pages))
	case len(result.Failures) > 0:
		md.Warningf("%d page(s) could not be fetched and are missing from the corpus.", len(result.Failures))
	case result.Stats.Remaining > 0:
		md.Note("The visit cap was reached before the queue was exhausted.")
	default:
		md.Tip("Every queued link was processed.")
	}
	md.PlainText("")
}

// writePages writes the table of accepted pages with a short text preview.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Pages")
	md.PlainText("")

	if len(result.Pages) == 0 {
		md.PlainText("No pages were added.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(result.Pages))
	for i, p := range result.Pages {
		rows[i] = []string{
			strconv.Itoa(i),
			escapeCell(truncateString(p.Title(), 60)),
			escapeCell(truncateString(p.URL(), 80)),
			strconv.Itoa(p.SentenceCount()),
			strconv.Itoa(p.LinkCount()),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Title", "URL", "Sentences", "Links"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, p := range result.Pages {
		if preview := textPreview(p.Text(), previewSentences); preview != "" {
			md.Details(p.Title(), preview)
		}
	}
	md.PlainText("")
}

// writeFailures writes the list of pages that could not be fetched.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Failures) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	items := make([]string, len(result.Failures))
	for i, f := range result.Failures {
		items[i] = f.URL + ": " + f.Error
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wikicorpus](https://github.com/nao1215/wikicorpus)*")
}

// errorMessage returns the run error as text, or "".
func errorMessage(result *model.CrawlResult) string {
	if result.Error != nil {
		return result.Error.Error()
	}
	return result.ErrorMessage
}

// textPreview returns the first n lines of corpus text.
func textPreview(text string, n int) string {
	lines := strings.SplitAfterN(text, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.TrimSpace(strings.Join(lines, ""))
}

// escapeCell keeps pipes in titles from breaking the table.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
