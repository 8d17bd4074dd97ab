package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/wikicorpus/internal/config"
	"github.com/nao1215/wikicorpus/internal/crawler"
	"github.com/nao1215/wikicorpus/internal/database"
	"github.com/nao1215/wikicorpus/internal/model"
	"github.com/nao1215/wikicorpus/internal/pipeline"
	"github.com/nao1215/wikicorpus/internal/report"
)

var _ crawler.Recorder = (*database.RunRecorder)(nil)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl Wikipedia and write a training corpus",
		Long: `Crawl fetches the seed article, queues its English Wikipedia links and
visits them breadth-first. File pages are skipped, help pages are dropped and
every other page's paragraph text is cleaned and appended to the corpus.

The crawl stops once more than --cap pages have been added after the seed.
The corpus file is overwritten on every run.

Examples:
  # Crawl from the default seed (Pablo Picasso) into training_text.txt
  wikicorpus crawl

  # Crawl 20 pages from another seed into a custom file
  wikicorpus crawl --seed https://en.wikipedia.org/wiki/Cubism --cap 20 -o cubism.txt

  # Be polite: wait 500ms between requests and retry transient failures
  wikicorpus crawl --delay 500ms --retries 3

  # Write a Markdown report and JSON manifest next to the corpus
  wikicorpus crawl --report crawl.md --manifest crawl.json

  # Train a model on the corpus once it is written
  wikicorpus crawl --train "python train.py --epochs 3"

Configuration file (.wikicorpus) example:
  seed: https://en.wikipedia.org/wiki/Pablo_Picasso
  visitCap: 100
  http:
    delay: 500ms
    retries: 2`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().String("seed", config.DefaultSeedURL,
		"Article URL to start crawling from")
	cmd.Flags().Int("cap", config.DefaultVisitCap,
		"Stop once more than this many pages have been added after the seed")
	cmd.Flags().StringP("output", "o", config.DefaultOutputPath,
		"Corpus file path (overwritten)")
	cmd.Flags().Bool("follow-links", false,
		"Queue links from every fetched page, not only the seed")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Minimum interval between requests")
	cmd.Flags().Int("retries", config.DefaultRetries,
		"Extra attempts for a transient fetch failure")
	cmd.Flags().Bool("skip-failures", false,
		"Record failed fetches and keep crawling")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP client timeout per request (0 for none)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikicorpus in current or home directory)")
	cmd.Flags().String("report", "",
		"Write a Markdown crawl report to this path")
	cmd.Flags().String("manifest", "",
		"Write a JSON manifest to this path")
	cmd.Flags().Bool("no-db", false,
		"Do not checkpoint the run to the crawl database")
	cmd.Flags().String("db-dir", "",
		"Crawl database directory (default: XDG data directory)")
	cmd.Flags().String("train", "",
		"Command to run on the corpus after it is written; the corpus path is appended")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cmd.OutOrStdout(), cfg, logger)
}

// buildConfig layers defaults, the configuration file and explicitly set flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit --config must exist; a missing default file is fine.
	if found := config.FindConfigFile(configPath); found != "" {
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		cfg.Apply(file)
		cfg.ConfigFilePath = found
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	cfg.Verbose = getBoolFlag(cmd, "verbose")

	var flagErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if flagErr == nil {
			flagErr = applyFlag(cmd.Flags(), f.Name, cfg)
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}

	return cfg, nil
}

// applyFlag copies one explicitly set flag into cfg.
func applyFlag(flags *pflag.FlagSet, name string, cfg *config.Config) error {
	var err error
	switch name {
	case "seed":
		cfg.SeedURL, err = flags.GetString(name)
	case "cap":
		cfg.VisitCap, err = flags.GetInt(name)
	case "output":
		cfg.OutputPath, err = flags.GetString(name)
	case "follow-links":
		cfg.FollowLinks, err = flags.GetBool(name)
	case "delay":
		cfg.CrawlDelay, err = flags.GetDuration(name)
	case "retries":
		cfg.Retries, err = flags.GetInt(name)
	case "skip-failures":
		cfg.SkipFailures, err = flags.GetBool(name)
	case "timeout":
		cfg.Timeout, err = flags.GetDuration(name)
	case "user-agent":
		cfg.UserAgent, err = flags.GetString(name)
	case "report":
		cfg.ReportFile, err = flags.GetString(name)
	case "manifest":
		cfg.ManifestFile, err = flags.GetString(name)
	case "db-dir":
		cfg.DBDir, err = flags.GetString(name)
	case "no-db":
		var noDB bool
		noDB, err = flags.GetBool(name)
		cfg.SaveToDB = !noDB
	case "train":
		var command string
		command, err = flags.GetString(name)
		cfg.TrainCommand = strings.Fields(command)
	}
	if err != nil {
		return fmt.Errorf("invalid --%s: %w", name, err)
	}
	return nil
}

// runCrawl executes the crawl pipeline and prints a summary to out.
// The run is recorded in the database even when the pipeline fails.
func runCrawl(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seed", cfg.SeedURL,
		"cap", cfg.VisitCap,
		"output", cfg.OutputPath,
		"saveToDB", cfg.SaveToDB,
	)

	result := model.NewCrawlResult(cfg.SeedURL)

	var recorder crawler.Recorder
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		result.RunID, err = db.CreateRun(ctx, cfg.SeedURL)
		if err != nil {
			return fmt.Errorf("failed to create run: %w", err)
		}
		recorder = db.Recorder(result.RunID)
		logger.Info("run created", "run", result.RunID, "db", db.Path())
	}

	p := pipeline.Default(cfg, recorder, getVersion(), pipeline.WithLogger(logger))

	fmt.Fprintf(out, "Crawling from %s...\n\n", cfg.SeedURL)
	execErr := p.Execute(ctx, result)

	if db != nil {
		// The run context may already be cancelled; the status must still be saved.
		if err := db.FinishRun(context.WithoutCancel(ctx), result.RunID, result); err != nil {
			logger.Error("failed to finish run", "run", result.RunID, "error", err)
		}
	}

	if _, err := report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose)).Write(result); err != nil {
		logger.Error("failed to write summary", "error", err)
	}

	return execErr
}
