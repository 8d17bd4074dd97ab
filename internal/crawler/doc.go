// Package crawler fetches encyclopedia articles and crawls their link graph
// breadth-first.
//
// # Components
//
//   - Parser: extracts the heading, paragraph text and filtered links from HTML
//   - Fetcher: performs one GET per page and turns the response into a model.Page
//   - Spider: owns the FIFO queue and visited set and decides when to stop
//
// # Crawl order
//
// The Spider fetches the seed with link extraction, queues its links in
// document order, and then pops links from the front of the queue. Links
// whose URL contains the media marker are skipped, already visited URLs are
// skipped, and fetched pages whose title contains the meta marker are
// dropped. The crawl stops when the queue is empty or when more than the
// visit cap pages have been added after the seed.
//
// The crawl is sequential. Each fetch blocks until it completes or fails.
//
// # Usage
//
//	fetcher := crawler.NewFetcher(http.DefaultClient)
//	spider := crawler.NewSpider(fetcher, crawler.WithVisitCap(100))
//	result, err := spider.Crawl(ctx, "https://en.wikipedia.org/wiki/Pablo_Picasso")
package crawler
