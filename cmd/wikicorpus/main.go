// Package main provides the entry point for the wikicorpus CLI.
//
// wikicorpus crawls the English Wikipedia breadth-first from a seed article
// and writes the cleaned paragraph text of every page to a single corpus
// file, one sentence per line.
//
// Usage:
//
//	wikicorpus crawl
//	wikicorpus crawl --seed https://en.wikipedia.org/wiki/Cubism --cap 20
//	wikicorpus runs
//	wikicorpus export
//
// See --help for all available options.
package main

func main() {
	Execute()
}
