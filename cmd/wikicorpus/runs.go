package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/wikicorpus/internal/config"
	"github.com/nao1215/wikicorpus/internal/database"
)

const timeLayout = "2006-01-02 15:04:05"

// NewRunsCmd creates the runs command.
// It lists the crawl runs stored in the database.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored crawl runs",
		Long: `Runs lists every crawl run recorded in the crawl database, newest first.

Interrupted runs stay in the "running" state. Their pages are still stored and
can be turned into a corpus with 'wikicorpus export <run-id>'.

Examples:
  # List runs
  wikicorpus runs

  # Output runs as JSON
  wikicorpus runs --json`,
		Args: cobra.NoArgs,
		RunE: runRunsCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output runs in JSON format (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output runs in Markdown format (mutually exclusive with --json)")
	cmd.Flags().String("db-dir", "",
		"Crawl database directory (default: XDG data directory)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, _ []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	db, err := openExistingDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return listRuns(cmd.Context(), cmd.OutOrStdout(), db, jsonOutput, markdownOutput)
}

// openExistingDB opens the crawl database named by --db-dir without creating it.
func openExistingDB(cmd *cobra.Command) (*database.CrawlDB, error) {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// listRuns prints the stored runs in the requested format.
func listRuns(ctx context.Context, out io.Writer, db *database.CrawlDB, jsonOutput, markdownOutput bool) error {
	runs, err := db.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	switch {
	case jsonOutput:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	case markdownOutput:
		return writeRunsMarkdown(out, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No crawl runs found in the database.")
		fmt.Fprintln(out, "\nUse 'wikicorpus crawl' to start one.")
		return nil
	}

	fmt.Fprintf(out, "Crawl runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-10s  %6s  %7s  %s\n", "ID", "Started", "Status", "Pages", "Visited", "Seed")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))
	for _, run := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-10s  %6d  %7d  %s\n",
			run.ID,
			run.StartedAt.Local().Format(timeLayout),
			run.Status,
			run.PageCount,
			run.VisitedCount,
			run.SeedURL,
		)
	}
	fmt.Fprintln(out, "\nUse 'wikicorpus export <id>' to rewrite the corpus of a run.")

	return nil
}

// writeRunsMarkdown writes the runs as a Markdown table.
func writeRunsMarkdown(out io.Writer, runs []database.Run) error {
	md := markdown.NewMarkdown(out).H1("Crawl Runs")

	if len(runs) == 0 {
		md.PlainText("No crawl runs found.")
		return md.Build()
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.StartedAt.Local().Format(timeLayout),
			string(run.Status),
			strconv.Itoa(run.PageCount),
			strconv.Itoa(run.VisitedCount),
			"`" + run.SeedURL + "`",
			run.Error,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Status", "Pages", "Visited", "Seed", "Error"},
		Rows:   rows,
	})

	return md.Build()
}
