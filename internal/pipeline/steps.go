package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/wikicorpus/internal/config"
	"github.com/nao1215/wikicorpus/internal/crawler"
	"github.com/nao1215/wikicorpus/internal/model"
	"github.com/nao1215/wikicorpus/internal/report"
)

// ErrNoCorpusPath is returned by TrainStep when no corpus has been written.
var ErrNoCorpusPath = errors.New("no corpus path to train on")

// Crawler runs a breadth-first crawl from a seed URL.
// crawler.Spider implements it.
type Crawler interface {
	Crawl(ctx context.Context, seedURL string) (*model.CrawlResult, error)
}

var _ Crawler = (*crawler.Spider)(nil)

// CrawlStep crawls from the seed and copies the pages into the result.
type CrawlStep struct {
	crawler Crawler
	logger  *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets the logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a crawl step backed by c.
func NewCrawlStep(c Crawler, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		crawler: c,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do crawls from result.SeedURL. A failed crawl still copies whatever it
// collected so the caller can report on it.
func (s *CrawlStep) Do(ctx context.Context, result *model.CrawlResult) error {
	crawled, err := s.crawler.Crawl(ctx, result.SeedURL)
	if crawled != nil {
		result.Pages = crawled.Pages
		result.Visited = crawled.Visited
		result.Count = crawled.Count
		result.Stats = crawled.Stats
		result.Failures = crawled.Failures
	}
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	s.logger.Info("crawl complete",
		"pages", len(result.Pages),
		"visited", len(result.Visited),
		"sentences", result.SentenceCount(),
	)
	return nil
}

// OutputStep writes the corpus file and the optional Markdown report and
// JSON manifest. The files are independent and are written concurrently.
type OutputStep struct {
	corpusPath   string
	reportPath   string
	manifestPath string
	version      string
	logger       *slog.Logger
}

// OutputStepOption configures an OutputStep.
type OutputStepOption func(*OutputStep)

// WithReportPath enables the Markdown crawl report.
func WithReportPath(path string) OutputStepOption {
	return func(s *OutputStep) {
		s.reportPath = path
	}
}

// WithManifestPath enables the JSON manifest.
func WithManifestPath(path string) OutputStepOption {
	return func(s *OutputStep) {
		s.manifestPath = path
	}
}

// WithManifestVersion sets the tool version recorded in the manifest.
func WithManifestVersion(version string) OutputStepOption {
	return func(s *OutputStep) {
		s.version = version
	}
}

// WithOutputLogger sets the logger for the output step.
func WithOutputLogger(logger *slog.Logger) OutputStepOption {
	return func(s *OutputStep) {
		s.logger = logger
	}
}

// NewOutputStep creates an output step writing the corpus to corpusPath.
func NewOutputStep(corpusPath string, opts ...OutputStepOption) *OutputStep {
	s := &OutputStep{
		corpusPath: corpusPath,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *OutputStep) Name() string {
	return "output"
}

// Do writes all configured files. The corpus file is truncated first if it
// already exists.
func (s *OutputStep) Do(ctx context.Context, result *model.CrawlResult) error {
	result.CorpusPath = s.corpusPath
	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now()
	}

	g, gctx := errgroup.WithContext(ctx)

	s.write(gctx, g, s.corpusPath, func(w io.Writer) report.Writer {
		return report.NewCorpusWriter(w)
	}, result)

	if s.reportPath != "" {
		s.write(gctx, g, s.reportPath, func(w io.Writer) report.Writer {
			return report.NewMarkdownWriter(w)
		}, result)
	}

	if s.manifestPath != "" {
		s.write(gctx, g, s.manifestPath, func(w io.Writer) report.Writer {
			return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(s.version))
		}, result)
	}

	return g.Wait()
}

func (s *OutputStep) write(ctx context.Context, g *errgroup.Group, path string, newWriter func(io.Writer) report.Writer, result *model.CrawlResult) {
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := report.WriteFile(path, newWriter, result)
		if err != nil {
			return err
		}
		s.logger.Info("file written", "path", path, "bytes", n)
		return nil
	})
}

// TrainStep runs an external training command on the corpus.
// The corpus path is appended as the last argument.
type TrainStep struct {
	command []string
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
}

// TrainStepOption configures a TrainStep.
type TrainStepOption func(*TrainStep)

// WithTrainOutput sets where the command's stdout and stderr go.
// Defaults to the process's own streams.
func WithTrainOutput(stdout, stderr io.Writer) TrainStepOption {
	return func(s *TrainStep) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// WithTrainLogger sets the logger for the train step.
func WithTrainLogger(logger *slog.Logger) TrainStepOption {
	return func(s *TrainStep) {
		s.logger = logger
	}
}

// NewTrainStep creates a train step. An empty command makes the step a no-op.
func NewTrainStep(command []string, opts ...TrainStepOption) *TrainStep {
	s := &TrainStep{
		command: command,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *TrainStep) Name() string {
	return "train"
}

// Do runs the command and waits for it. Cancelling ctx kills the process.
func (s *TrainStep) Do(ctx context.Context, result *model.CrawlResult) error {
	if len(s.command) == 0 {
		s.logger.Debug("no training command configured")
		return nil
	}
	if result.CorpusPath == "" {
		return ErrNoCorpusPath
	}

	args := append(append([]string{}, s.command[1:]...), result.CorpusPath)
	cmd := exec.CommandContext(ctx, s.command[0], args...) //nolint:gosec // command comes from the user's own configuration
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr

	s.logger.Info("running training command", "command", s.command[0], "corpus", result.CorpusPath)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("training command %q: %w", s.command[0], err)
	}
	return nil
}

// Default builds the standard crawl, output and train pipeline from cfg.
// recorder may be nil when runs are not checkpointed.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
func Default(cfg *config.Config, recorder crawler.Recorder, version string, pipelineOpts ...Option) *Pipeline {
	p := New(pipelineOpts...)

	client := &http.Client{Timeout: cfg.Timeout}

	fetcher := crawler.NewFetcher(client,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithHeaders(cfg.Headers),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithRetries(cfg.Retries),
		crawler.WithLinkRules(crawler.LinkRules{Prefix: cfg.LinkPrefix, Filter: cfg.LinkFilter}),
		crawler.WithTitleElementID(cfg.TitleElementID),
		crawler.WithFetcherLogger(p.logger),
	)

	spiderOpts := []crawler.SpiderOption{
		crawler.WithVisitCap(cfg.VisitCap),
		crawler.WithMediaMarker(cfg.MediaMarker),
		crawler.WithMetaMarker(cfg.MetaMarker),
		crawler.WithFollowLinks(cfg.FollowLinks),
		crawler.WithSkipFailures(cfg.SkipFailures),
		crawler.WithLogger(p.logger),
	}
	if recorder != nil {
		spiderOpts = append(spiderOpts, crawler.WithRecorder(recorder))
	}

	p.AddSteps(
		NewCrawlStep(crawler.NewSpider(fetcher, spiderOpts...), WithCrawlLogger(p.logger)),
		NewOutputStep(cfg.OutputPath,
			WithReportPath(cfg.ReportFile),
			WithManifestPath(cfg.ManifestFile),
			WithManifestVersion(version),
			WithOutputLogger(p.logger),
		),
		NewTrainStep(cfg.TrainCommand, WithTrainLogger(p.logger)),
	)

	return p
}
