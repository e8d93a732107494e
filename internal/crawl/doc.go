// Package crawl implements the crawl engine: the depth-bounded frontier,
// the visited set, and the scheduler that drives concurrent fetch,
// extract, and write cycles until the frontier drains.
package crawl
