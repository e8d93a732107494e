package crawl

import (
	"time"
)

// WorkItem is one unit of frontier work: a normalized URL paired with the
// depth at which it was discovered. Items are immutable once created and
// consumed exactly once.
type WorkItem struct {
	URL   string
	Depth int
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// PageResult carries the extraction output for a single fetched page. It is
// transient: the scheduler writes Text and enqueues Links, then drops it.
type PageResult struct {
	URL string
	// Text is the main textual content of the page; empty when the page
	// has no extractable body.
	Text string
	// Links holds normalized absolute URLs in document order.
	Links []string
	// InvalidLinks counts anchors whose href failed normalization.
	InvalidLinks int
}

// Summary reports the outcome of one crawl run.
type Summary struct {
	RunID          string        `json:"run_id"`
	PagesFetched   int64         `json:"pages_fetched"`
	PagesWritten   int64         `json:"pages_written"`
	FetchFailures  int64         `json:"fetch_failures"`
	ParseFailures  int64         `json:"parse_failures"`
	WriteFailures  int64         `json:"write_failures"`
	DuplicateSkips int64         `json:"duplicate_skips"`
	OverDepthSkips int64         `json:"over_depth_skips"`
	InvalidLinks   int64         `json:"invalid_links"`
	Duration       time.Duration `json:"duration_ns"`
}
