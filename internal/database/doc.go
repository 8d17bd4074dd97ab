// Package database provides SQLite-based checkpoint storage for crawl runs.
//
// The CrawlDB stores:
//   - runs: one row per crawl, with its seed, status and output path
//   - pages: every accepted page with its processed text, in corpus order
//   - visited: every URL the crawl marked visited, in visit order
//
// Pages and visits are written while the crawl runs, so an interrupted run
// keeps the work done so far and its corpus can be rebuilt later.
//
// SQLite is used through modernc.org/sqlite, a CGO-free driver, so the
// database is a single file in the user's data directory.
package database
