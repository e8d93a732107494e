// Command textsift crawls a site breadth-first to a bounded depth and
// aggregates extracted page text into flat files.
//
// Usage:
//
//	textsift -config config.yaml [start-url ...]
//
// Start URLs on the command line override crawler.start_urls from the
// config file.
package main
