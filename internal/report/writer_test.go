package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/wikicorpus/internal/model"
)

// createTestResult creates a crawl result with sample data for testing.
func createTestResult() *model.CrawlResult {
	result := model.NewCrawlResult("https://en.wikipedia.org/wiki/Pablo_Picasso")
	result.RunID = 7
	result.Pages = []model.Page{
		model.NewPage(
			"https://en.wikipedia.org/wiki/Pablo_Picasso",
			"Pablo Picasso",
			[]string{"https://en.wikipedia.org/wiki/Cubism", "https://en.wikipedia.org/wiki/File:Guernica.jpg"},
		).WithText("Pablo Picasso was a Spanish painter.[1] He co-founded the Cubist movement.").Process(),
		model.NewPage(
			"https://en.wikipedia.org/wiki/Cubism",
			"Cubism",
			nil,
		).WithText("Cubism is an early-20th-century avant-garde art movement.").Process(),
	}
	result.Visited = []string{
		"https://en.wikipedia.org/wiki/Pablo_Picasso",
		"https://en.wikipedia.org/wiki/Cubism",
	}
	result.Count = 1
	result.Stats.SkippedMedia = 1
	result.CorpusPath = "training_text.txt"
	result.FinishedAt = result.StartedAt.Add(1500 * time.Millisecond)
	return result
}

// TestCorpusWriter tests the corpus output.
func TestCorpusWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes page texts without separator", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := createTestResult()

		n, err := NewCorpusWriter(&buf).Write(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "Pablo Picasso was a Spanish painter.\n He co-founded the Cubist movement.\n" +
			"Cubism is an early-20th-century avant-garde art movement.\n"
		if buf.String() != want {
			t.Errorf("expected corpus %q, got %q", want, buf.String())
		}
		if buf.String() != result.Corpus() {
			t.Error("expected output to equal result.Corpus()")
		}
		if n != len(want) {
			t.Errorf("expected %d bytes, got %d", len(want), n)
		}
	})

	t.Run("empty result writes nothing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewCorpusWriter(&buf).Write(model.NewCrawlResult("seed"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 || buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON manifest writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid manifest", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint(), WithVersion("v1.2.3"))

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var manifest struct {
			Version   string   `json:"version"`
			RunID     int64    `json:"run_id"`
			SeedURL   string   `json:"seed_url"`
			Count     int      `json:"count"`
			Visited   []string `json:"visited"`
			Sentences int      `json:"sentences"`
			Stats     struct {
				SkippedMedia int `json:"skipped_media"`
			} `json:"stats"`
			Pages []struct {
				Seq       int      `json:"seq"`
				URL       string   `json:"url"`
				Title     string   `json:"title"`
				Links     []string `json:"links"`
				Sentences int      `json:"sentences"`
				Hash      string   `json:"sha256"`
			} `json:"pages"`
		}
		if err := json.Unmarshal(buf.Bytes(), &manifest); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if manifest.Version != "v1.2.3" {
			t.Errorf("expected version v1.2.3, got %q", manifest.Version)
		}
		if manifest.RunID != 7 {
			t.Errorf("expected run id 7, got %d", manifest.RunID)
		}
		if manifest.Count != 1 || len(manifest.Visited) != 2 {
			t.Errorf("unexpected count %d or visited %v", manifest.Count, manifest.Visited)
		}
		if manifest.Sentences != 3 {
			t.Errorf("expected 3 sentences, got %d", manifest.Sentences)
		}
		if manifest.Stats.SkippedMedia != 1 {
			t.Errorf("expected 1 skipped media link, got %d", manifest.Stats.SkippedMedia)
		}
		if len(manifest.Pages) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(manifest.Pages))
		}
		if manifest.Pages[0].Title != "Pablo Picasso" || len(manifest.Pages[0].Links) != 2 {
			t.Errorf("unexpected first page %+v", manifest.Pages[0])
		}
		if manifest.Pages[1].Seq != 1 || manifest.Pages[1].Sentences != 1 || manifest.Pages[1].Hash == "" {
			t.Errorf("unexpected second page %+v", manifest.Pages[1])
		}
	})

	t.Run("omits corpus text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "Spanish painter") {
			t.Error("manifest should not contain page text")
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("compact output should be a single line")
		}
	})

	t.Run("includes error message", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := createTestResult()
		result.Error = errors.New("fetch failed")

		if _, err := NewJSONWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"error":"fetch failed"`) {
			t.Errorf("expected error in manifest, got %s", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes summary and every page", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := createTestResult()

		n, err := NewMarkdownWriter(&buf).Write(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected non-zero byte count")
		}

		output := buf.String()
		for _, want := range []string{
			"# Wikipedia Corpus Report",
			"## Crawl Statistics",
			"## Pages",
			"https://en.wikipedia.org/wiki/Pablo_Picasso",
			"https://en.wikipedia.org/wiki/Cubism",
			"Pablo Picasso",
			"mermaid",
			"Complete",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "## Failures") {
			t.Error("failures section should be omitted when there are none")
		}
	})

	t.Run("reports errors and failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := createTestResult()
		result.Failures = []model.FetchFailure{
			{URL: "https://en.wikipedia.org/wiki/Gone", Error: "404 Not Found"},
		}
		result.Error = errors.New("context canceled")

		if _, err := NewMarkdownWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Failures") {
			t.Error("expected failures section")
		}
		if !strings.Contains(output, "https://en.wikipedia.org/wiki/Gone") {
			t.Error("expected failed URL in output")
		}
		if !strings.Contains(output, "context canceled") {
			t.Error("expected error message in output")
		}
	})

	t.Run("empty result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(model.NewCrawlResult("seed")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No pages were added.") {
			t.Error("expected empty pages message")
		}
	})
}

// TestSimpleWriter tests the terminal summary writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and statistics", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"WIKICORPUS CRAWL",
			"https://en.wikipedia.org/wiki/Pablo_Picasso",
			"Pages:      2",
			"Sentences:  3",
			"MEDIA:      1",
			"Corpus written to training_text.txt",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "PAGES\n") {
			t.Error("page list should only be shown in verbose mode")
		}
	})

	t.Run("verbose lists pages and failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := createTestResult()
		result.Failures = []model.FetchFailure{{URL: "https://en.wikipedia.org/wiki/Gone", Error: "boom"}}

		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Cubism (1 sentences)") {
			t.Errorf("expected page list, got:\n%s", output)
		}
		if !strings.Contains(output, "FAILURES") || !strings.Contains(output, "boom") {
			t.Error("expected failures section")
		}
	})
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var corpus, summary bytes.Buffer
	result := createTestResult()

	n, err := NewMultiWriter(NewCorpusWriter(&corpus), NewSimpleWriter(&summary)).Write(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if corpus.String() != result.Corpus() {
		t.Error("expected corpus output")
	}
	if summary.Len() == 0 {
		t.Error("expected summary output")
	}
	if n != corpus.Len()+summary.Len() {
		t.Errorf("expected %d total bytes, got %d", corpus.Len()+summary.Len(), n)
	}
}

// TestWriteFile tests writing to a file.
func TestWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out", "nested", "training_text.txt")
		result := createTestResult()

		newCorpus := func(w io.Writer) Writer { return NewCorpusWriter(w) }
		if _, err := WriteFile(path, newCorpus, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if string(data) != result.Corpus() {
			t.Errorf("expected %q, got %q", result.Corpus(), string(data))
		}
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "training_text.txt")
		if err := os.WriteFile(path, []byte(strings.Repeat("old content\n", 100)), 0600); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		result := createTestResult()
		newCorpus := func(w io.Writer) Writer { return NewCorpusWriter(w) }
		if _, err := WriteFile(path, newCorpus, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if string(data) != result.Corpus() {
			t.Errorf("expected file to be truncated and rewritten, got %q", string(data))
		}
	})

	t.Run("fails when parent is a file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		if err := os.WriteFile(blocker, nil, 0600); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		newCorpus := func(w io.Writer) Writer { return NewCorpusWriter(w) }
		if _, err := WriteFile(filepath.Join(blocker, "out.txt"), newCorpus, createTestResult()); err == nil {
			t.Error("expected error")
		}
	})
}
