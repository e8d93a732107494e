package fssink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathForURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"host only", "https://example.com", "example.com.txt"},
		{"host with root path", "https://example.com/", "example.com.txt"},
		{"two segments", "https://example.com/docs", "example.com_docs.txt"},
		{"three segments", "https://example.com/docs/intro", "example.com_docs_intro.txt"},
		{"deep path truncates", "https://example.com/docs/intro/part/one", "example.com_docs_intro.txt"},
		{"http scheme stripped", "http://example.com/a", "example.com_a.txt"},
		{"query and dashes mapped", "https://example.com/a-b?x=1", "example.com_a_b.txt"},
		{"empty segments collapse", "https://example.com//docs///x", "example.com_docs_x.txt"},
		{"nothing left", "https://", "page.txt"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, PathForURL(tt.url))
		})
	}
}

func TestWriterAppendsWithHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewWriter(dir, nil)
	require.NoError(t, err)

	require.NoError(t, w.Write("https://example.com/docs/intro", "first page text"))
	require.NoError(t, w.Write("https://example.com/docs/intro/deeper", "second page text"))

	data, err := os.ReadFile(filepath.Join(dir, "example.com_docs_intro.txt"))
	require.NoError(t, err)
	content := string(data)

	require.Contains(t, content, "URL: https://example.com/docs/intro\n")
	require.Contains(t, content, "URL: https://example.com/docs/intro/deeper\n")
	require.Contains(t, content, "first page text")
	require.Contains(t, content, "second page text")
	require.Less(t,
		strings.Index(content, "first page text"),
		strings.Index(content, "second page text"),
		"records append in write order",
	)
}

func TestWriterAppendSurvivesNewWriter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w1, err := NewWriter(dir, nil)
	require.NoError(t, err)
	require.NoError(t, w1.Write("https://example.com/a", "from first run"))

	// A fresh Writer over the same root must append, not truncate.
	w2, err := NewWriter(dir, nil)
	require.NoError(t, err)
	require.NoError(t, w2.Write("https://example.com/a", "from second run"))

	data, err := os.ReadFile(filepath.Join(dir, "example.com_a.txt"))
	require.NoError(t, err)
	require.Contains(t, string(data), "from first run")
	require.Contains(t, string(data), "from second run")
}

func TestWriterReset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewWriter(dir, nil)
	require.NoError(t, err)
	require.NoError(t, w.Write("https://example.com/a", "old output"))

	require.NoError(t, w.Reset())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "reset clears previous output")

	require.NoError(t, w.Write("https://example.com/a", "new output"))
	data, err := os.ReadFile(filepath.Join(dir, "example.com_a.txt"))
	require.NoError(t, err)
	require.NotContains(t, string(data), "old output")
}

func TestWriterConcurrentSameTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewWriter(dir, nil)
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Distinct URLs, same derived target file.
			url := fmt.Sprintf("https://example.com/docs/intro/page-%d", i)
			if err := w.Write(url, fmt.Sprintf("text %d", i)); err != nil {
				t.Errorf("Write() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(dir, "example.com_docs_intro.txt"))
	require.NoError(t, err)
	content := string(data)
	for i := 0; i < writers; i++ {
		require.Contains(t, content, fmt.Sprintf("text %d", i))
	}
}
