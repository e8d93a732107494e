package crawl

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ErrInvalidURL marks URLs the crawler refuses to schedule: malformed
// input and non-http(s) schemes such as mailto: or javascript:.
var ErrInvalidURL = errors.New("invalid url")

// Normalize resolves raw against base (if non-nil) and canonicalizes the
// result so that two spellings of the same page compare equal. It
// lowercases the scheme and host, strips default ports, drops the
// fragment, collapses redundant path segments, and sorts query
// parameters. The function is pure and idempotent: normalizing an already
// normalized URL returns it unchanged.
func Normalize(raw string, base *url.URL) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: parse %q: %v", ErrInvalidURL, raw, err)
	}

	u := ref
	if base != nil {
		u = base.ResolveReference(ref)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	switch u.Scheme {
	case "http", "https":
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidURL, raw)
	}
	u.Host = strings.ToLower(u.Host)

	// Remove default ports
	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	// Remove fragment
	u.Fragment = ""
	u.RawFragment = ""

	// A bare host and an explicit root slash are the same page.
	if u.Path == "" {
		u.Path = "/"
	}

	// Collapse ./.. segments; trailing slashes are dropped except for the
	// root path so /a/ and /a schedule as the same page.
	u.Path = path.Clean(u.Path)
	u.RawPath = ""

	// Sort query parameters
	if u.RawQuery != "" {
		u.RawQuery = u.Query().Encode()
	}

	return u.String(), nil
}
