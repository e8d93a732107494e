package crawl

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCanonicalizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercases scheme and host", "HTTP://Example.COM/Path", "http://example.com/Path"},
		{"strips default http port", "http://example.com:80/a", "http://example.com/a"},
		{"strips default https port", "https://example.com:443/a", "https://example.com/a"},
		{"keeps explicit port", "http://example.com:8080/a", "http://example.com:8080/a"},
		{"drops fragment", "https://example.com/a#section", "https://example.com/a"},
		{"collapses dot segments", "https://example.com/a/b/../c/./d", "https://example.com/a/c/d"},
		{"drops trailing slash", "https://example.com/a/", "https://example.com/a"},
		{"keeps root slash", "https://example.com/", "https://example.com/"},
		{"bare host gains root slash", "https://example.com", "https://example.com/"},
		{"bare host with query gains root slash", "https://example.com?x=1", "https://example.com/?x=1"},
		{"sorts query parameters", "https://example.com/a?z=1&a=2", "https://example.com/a?a=2&z=1"},
		{"trims surrounding whitespace", "  https://example.com/a  ", "https://example.com/a"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.raw, nil)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeHomepageSpellingsMatch(t *testing.T) {
	t.Parallel()

	// Both spellings of a site root occur in seeds and anchors; they must
	// produce one dedup key or the homepage gets fetched twice.
	bare, err := Normalize("https://example.com", nil)
	require.NoError(t, err)
	slash, err := Normalize("https://example.com/", nil)
	require.NoError(t, err)
	require.Equal(t, slash, bare)
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"HTTP://Example.COM:80/a/b/../c?z=1&a=2#frag",
		"https://example.com",
		"https://example.com/",
		"https://example.com/a/b?x=1",
	}
	for _, raw := range inputs {
		once, err := Normalize(raw, nil)
		require.NoError(t, err)
		twice, err := Normalize(once, nil)
		require.NoError(t, err)
		require.Equal(t, once, twice, "normalizing %q twice must be stable", raw)
	}
}

func TestNormalizeResolvesRelative(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://example.com/docs/guide")
	require.NoError(t, err)

	tests := []struct {
		raw  string
		want string
	}{
		{"intro", "https://example.com/docs/intro"},
		{"../about", "https://example.com/about"},
		{"/contact", "https://example.com/contact"},
		{"//other.example.com/x", "https://other.example.com/x"},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.raw, base)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"mailto:team@example.com",
		"javascript:void(0)",
		"ftp://example.com/file",
		"://missing-scheme",
		"relative/only",
		"",
	}
	for _, raw := range inputs {
		_, err := Normalize(raw, nil)
		require.ErrorIs(t, err, ErrInvalidURL, "input %q", raw)
	}
}
