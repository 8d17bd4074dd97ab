// Package report writes the outputs of a crawl run.
//
// This package contains writers for different output formats:
//   - CorpusWriter: the training corpus, page texts concatenated in crawl order
//   - JSONWriter: a machine-readable manifest of the run
//   - MarkdownWriter: a crawl summary for sharing
//   - SimpleWriter: human-readable text output for terminal display
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
