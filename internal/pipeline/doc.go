// Package pipeline runs a crawl as a sequence of steps.
//
// A run goes through three stages: crawling from the seed, writing the
// corpus (plus the optional Markdown report and JSON manifest) and running
// the optional training command on the corpus. Each stage is a Step that
// receives the shared *model.CrawlResult and fills in its part.
//
// The pipeline stops at the first failing step, so a failed crawl never
// overwrites an existing corpus file.
//
// Default wires the standard steps from a config.Config:
//
//	p := pipeline.Default(cfg, recorder, version, pipeline.WithLogger(logger))
//	result := model.NewCrawlResult(cfg.SeedURL)
//	if err := p.Execute(ctx, result); err != nil {
//		return err
//	}
package pipeline
