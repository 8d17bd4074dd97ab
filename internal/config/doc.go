// Package config provides the configuration for wikicorpus crawls.
// It defines the crawl constants that used to be hardcoded (seed article,
// visit cap, link filters, output file) together with transport, logging and
// persistence settings, a YAML file format, and validation.
package config
