// Package extract adapts goquery-based HTML parsing into the crawl
// engine's PageResult: main text selection plus normalized outbound links.
package extract
