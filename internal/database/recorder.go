package database

import (
	"context"

	"github.com/nao1215/wikicorpus/internal/model"
)

// RunRecorder writes the progress of one run to the database.
// It satisfies crawler.Recorder.
type RunRecorder struct {
	db    *CrawlDB
	runID int64
}

// Recorder returns a RunRecorder bound to runID.
func (cdb *CrawlDB) Recorder(runID int64) *RunRecorder {
	return &RunRecorder{db: cdb, runID: runID}
}

// RunID returns the run the recorder writes to.
func (r *RunRecorder) RunID() int64 {
	return r.runID
}

// RecordVisit stores pageURL as visited.
func (r *RunRecorder) RecordVisit(ctx context.Context, pageURL string) error {
	return r.db.MarkVisited(ctx, r.runID, pageURL)
}

// RecordPage stores an accepted page at position seq.
func (r *RunRecorder) RecordPage(ctx context.Context, seq int, page model.Page) error {
	return r.db.InsertPage(ctx, r.runID, seq, page)
}
