package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/wikicorpus/internal/config"
	"github.com/nao1215/wikicorpus/internal/database"
	"github.com/nao1215/wikicorpus/internal/report"
)

// ErrNoRuns is returned by export when the database holds no runs.
var ErrNoRuns = errors.New("no crawl runs in the database (run 'wikicorpus crawl' first)")

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Rewrite a corpus from a stored run",
		Long: `Export writes the corpus of a stored crawl run without fetching anything.

Pages are written in crawl order exactly as they were cleaned during the run,
so exporting a completed run reproduces its corpus file byte for byte. An
interrupted run exports every page stored before it stopped.

Without a run id the most recent run is exported.

Examples:
  # Export the latest run to training_text.txt
  wikicorpus export

  # Export run 3 to a custom path with a manifest
  wikicorpus export 3 -o run3.txt --manifest run3.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultOutputPath,
		"Corpus file path (overwritten)")
	cmd.Flags().String("manifest", "",
		"Also write a JSON manifest to this path")
	cmd.Flags().String("db-dir", "",
		"Crawl database directory (default: XDG data directory)")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	var runID int64
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid run id %q: must be a positive integer", args[0])
		}
		runID = id
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	manifest, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return err
	}

	db, err := openExistingDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return exportRun(cmd.Context(), cmd.OutOrStdout(), db, runID, output, manifest)
}

// exportRun writes the corpus of runID, or of the latest run when runID is 0.
func exportRun(ctx context.Context, out io.Writer, db *database.CrawlDB, runID int64, output, manifest string) error {
	if runID == 0 {
		latest, err := db.GetLatestRun(ctx)
		if err != nil {
			return fmt.Errorf("failed to get latest run: %w", err)
		}
		if latest == nil {
			return ErrNoRuns
		}
		runID = latest.ID
	}

	result, err := db.LoadResult(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	if result == nil {
		return fmt.Errorf("run %d not found (use 'wikicorpus runs' to list runs)", runID)
	}
	result.CorpusPath = output

	n, err := report.WriteFile(output, func(w io.Writer) report.Writer {
		return report.NewCorpusWriter(w)
	}, result)
	if err != nil {
		return err
	}

	if manifest != "" {
		if _, err := report.WriteFile(manifest, func(w io.Writer) report.Writer {
			return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
		}, result); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Exported run %d (%d pages, %d sentences, %d bytes) to %s\n",
		runID, len(result.Pages), result.SentenceCount(), n, output)
	return nil
}
