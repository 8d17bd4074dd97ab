package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wikicorpus/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "wikicorpus.db"

// CrawlDB provides SQLite-based storage for crawl runs.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a crawl first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawl
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'running',
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME,
		corpus_path TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);

	-- Accepted pages in corpus order; seq 0 is the seed
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		text TEXT NOT NULL,
		text_hash TEXT NOT NULL DEFAULT '',
		link_count INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);

	-- URLs marked visited, in visit order
	CREATE TABLE IF NOT EXISTS visited (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_visited_run ON visited(run_id);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunStatus is the state of a stored run.
type RunStatus string

const (
	// RunStatusRunning is a run that has not finished, or was interrupted.
	RunStatusRunning RunStatus = "running"

	// RunStatusCompleted is a run that finished without error.
	RunStatusCompleted RunStatus = "completed"

	// RunStatusFailed is a run that stopped with an error.
	RunStatusFailed RunStatus = "failed"
)

// Run represents a stored crawl run.
type Run struct {
	ID         int64     `json:"id"`
	SeedURL    string    `json:"seed_url"`
	Status     RunStatus `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	CorpusPath string    `json:"corpus_path,omitempty"`
	Error      string    `json:"error,omitempty"`

	// PageCount is the number of stored pages, the seed included.
	PageCount int `json:"page_count"`

	// VisitedCount is the number of stored visited URLs.
	VisitedCount int `json:"visited_count"`
}

// PageRecord represents a stored page.
type PageRecord struct {
	ID        int64
	RunID     int64
	Seq       int
	URL       string
	Title     string
	Text      string
	TextHash  string
	LinkCount int
	Timestamp time.Time
}

// Page converts the record back into a cleaned model.Page.
// Links are not stored, so the page has none.
func (r PageRecord) Page() model.Page {
	return model.RestorePage(r.URL, r.Title, r.Text)
}

// CreateRun inserts a new running run and returns its id.
func (cdb *CrawlDB) CreateRun(ctx context.Context, seedURL string) (int64, error) {
	result, err := cdb.db.ExecContext(ctx,
		`INSERT INTO runs (seed_url, status) VALUES (?, ?)`,
		seedURL, RunStatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	return result.LastInsertId()
}

// FinishRun marks a run completed, or failed when result.Error is set, and
// stores the corpus path.
func (cdb *CrawlDB) FinishRun(ctx context.Context, runID int64, result *model.CrawlResult) error {
	status := RunStatusCompleted
	errMsg := ""
	if result.Error != nil {
		status = RunStatusFailed
		errMsg = result.Error.Error()
	}

	query := `
	UPDATE runs
	SET status = ?, finished_at = CURRENT_TIMESTAMP, corpus_path = ?, error = ?
	WHERE id = ?
	`

	res, err := cdb.db.ExecContext(ctx, query, status, result.CorpusPath, errMsg, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to finish run: run %d not found", runID)
	}
	return nil
}

// InsertPage stores an accepted page at position seq of the run's corpus.
// Inserting the same seq again replaces the page.
func (cdb *CrawlDB) InsertPage(ctx context.Context, runID int64, seq int, page model.Page) error {
	query := `
	INSERT INTO pages (run_id, seq, url, title, text, text_hash, link_count)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, seq) DO UPDATE SET
		url = excluded.url,
		title = excluded.title,
		text = excluded.text,
		text_hash = excluded.text_hash,
		link_count = excluded.link_count,
		timestamp = CURRENT_TIMESTAMP
	`

	_, err := cdb.db.ExecContext(ctx, query,
		runID,
		seq,
		page.URL(),
		page.Title(),
		page.Text(),
		page.Hash(),
		page.LinkCount(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}
	return nil
}

// MarkVisited stores pageURL as visited by the run. Repeated calls are ignored.
func (cdb *CrawlDB) MarkVisited(ctx context.Context, runID int64, pageURL string) error {
	_, err := cdb.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO visited (run_id, url) VALUES (?, ?)`,
		runID, pageURL,
	)
	if err != nil {
		return fmt.Errorf("failed to mark visited: %w", err)
	}
	return nil
}

// runColumns selects a run together with its page and visit counts.
const runColumns = `
	SELECT r.id, r.seed_url, r.status, r.started_at, COALESCE(r.finished_at, ''),
		r.corpus_path, r.error,
		(SELECT COUNT(*) FROM pages p WHERE p.run_id = r.id),
		(SELECT COUNT(*) FROM visited v WHERE v.run_id = r.id)
	FROM runs r
`

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		status     string
		startedAt  string
		finishedAt string
	)
	err := row.Scan(
		&run.ID,
		&run.SeedURL,
		&status,
		&startedAt,
		&finishedAt,
		&run.CorpusPath,
		&run.Error,
		&run.PageCount,
		&run.VisitedCount,
	)
	if err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.StartedAt = parseTimestamp(startedAt)
	run.FinishedAt = parseTimestamp(finishedAt)
	return &run, nil
}

// GetRun retrieves a run by id. It returns nil if the run does not exist.
func (cdb *CrawlDB) GetRun(ctx context.Context, runID int64) (*Run, error) {
	run, err := scanRun(cdb.db.QueryRowContext(ctx, runColumns+` WHERE r.id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetLatestRun retrieves the most recently created run.
// It returns nil if no run has been stored.
func (cdb *CrawlDB) GetLatestRun(ctx context.Context) (*Run, error) {
	run, err := scanRun(cdb.db.QueryRowContext(ctx, runColumns+` ORDER BY r.id DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns every stored run, newest first.
func (cdb *CrawlDB) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := cdb.db.QueryContext(ctx, runColumns+` ORDER BY r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// GetRunPages returns the stored pages of a run in corpus order.
func (cdb *CrawlDB) GetRunPages(ctx context.Context, runID int64) ([]PageRecord, error) {
	query := `
	SELECT id, run_id, seq, url, title, text, text_hash, link_count, timestamp
	FROM pages
	WHERE run_id = ?
	ORDER BY seq
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run pages: %w", err)
	}
	defer rows.Close()

	var records []PageRecord
	for rows.Next() {
		var (
			record    PageRecord
			timestamp string
		)
		err := rows.Scan(
			&record.ID,
			&record.RunID,
			&record.Seq,
			&record.URL,
			&record.Title,
			&record.Text,
			&record.TextHash,
			&record.LinkCount,
			&timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		record.Timestamp = parseTimestamp(timestamp)
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetVisited returns the URLs visited by a run in visit order.
func (cdb *CrawlDB) GetVisited(ctx context.Context, runID int64) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT url FROM visited WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get visited: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan visited: %w", err)
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

// LoadResult rebuilds a crawl result from a stored run.
// It returns nil if the run does not exist.
func (cdb *CrawlDB) LoadResult(ctx context.Context, runID int64) (*model.CrawlResult, error) {
	run, err := cdb.GetRun(ctx, runID)
	if err != nil || run == nil {
		return nil, err
	}

	records, err := cdb.GetRunPages(ctx, runID)
	if err != nil {
		return nil, err
	}
	visited, err := cdb.GetVisited(ctx, runID)
	if err != nil {
		return nil, err
	}

	result := model.NewCrawlResult(run.SeedURL)
	result.RunID = run.ID
	result.StartedAt = run.StartedAt
	result.FinishedAt = run.FinishedAt
	result.CorpusPath = run.CorpusPath
	result.ErrorMessage = run.Error
	result.Visited = append(result.Visited, visited...)
	for _, r := range records {
		result.Pages = append(result.Pages, r.Page())
	}
	if len(result.Pages) > 0 {
		result.Count = len(result.Pages) - 1
	}

	return result, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, or s is empty, it returns zero time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
