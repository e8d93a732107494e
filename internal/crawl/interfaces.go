package crawl

import (
	"context"
	"net/url"
	"time"
)

// Fetcher retrieves a URL over HTTP. Implementations must honor ctx and
// report transport-level failures as errors; HTTP error statuses come back
// in FetchResponse.StatusCode.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (FetchResponse, error)
}

// Extractor turns a fetched body into main text plus outbound links. Links
// must already be resolved against pageURL and normalized.
type Extractor interface {
	Extract(body []byte, pageURL *url.URL) (PageResult, error)
}

// Sink persists the extracted text for one page.
type Sink interface {
	Write(pageURL string, text string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}
