package report

import (
	"io"

	"github.com/nao1215/wikicorpus/internal/model"
)

// CorpusWriter writes the training corpus: the text of every page in crawl
// order, with nothing between pages and nothing else in the output.
type CorpusWriter struct {
	baseWriter
}

// NewCorpusWriter creates a CorpusWriter that outputs to the given writer.
func NewCorpusWriter(output io.Writer) *CorpusWriter {
	return &CorpusWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the corpus. The bytes written equal result.Corpus().
func (w *CorpusWriter) Write(result *model.CrawlResult) (int, error) {
	var total int
	for _, page := range result.Pages {
		n, err := io.WriteString(w.output, page.Text())
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
