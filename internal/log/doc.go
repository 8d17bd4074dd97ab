// Package log provides the crawler's structured logger, built on log/slog.
//
// The SecureHandler wraps any slog.Handler and rewrites attributes before
// they are written:
//   - values of credential-like keys (Authorization, Cookie, tokens) are masked
//   - values that look like bearer tokens, JWTs or API keys are masked
//   - string values longer than MaxValueLength runes are truncated
//
// Request headers come from user configuration and may carry credentials for
// a mirror or proxy, so they are masked even in verbose mode. Truncation keeps
// page text out of the log when a page or error is logged.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Info("page added", "title", page.Title(), "queued", n)
package log
