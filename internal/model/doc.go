// Package model defines the data structures shared by the crawler, the
// database, the pipeline and the report writers.
//
// This package contains the following main types:
//   - Page: one crawled article with its links and corpus text
//   - Stage: which text transform last produced a Page's text
//   - CrawlResult: everything a single crawl run produced
//
// Page is a value type. Its transforms return new values instead of mutating
// a shared buffer, so a Page can be handed to several consumers safely.
package model
