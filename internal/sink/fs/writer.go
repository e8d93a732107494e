// Package fssink persists extracted page text to flat files under an
// output root, one file per derived target, append-only.
package fssink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"
)

// maxSegments caps how many URL-derived segments name an output file.
// Deeper pages merge into their three-segment ancestor file; collisions
// are intentional and kept readable by the record header.
const maxSegments = 3

const recordRule = "========================================"

// Writer appends extracted text to files derived from page URLs. Appends
// to the same target are serialized by a per-target lock; different
// targets proceed in parallel.
type Writer struct {
	root   string
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWriter returns a Writer rooted at dir, creating it if needed.
func NewWriter(root string, logger *zap.Logger) (*Writer, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("output root is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", root, err)
	}
	return &Writer{
		root:   root,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Reset removes all previously written output and recreates the root.
// Called before a run when the configuration asks for a clean start.
func (w *Writer) Reset() error {
	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("clear output dir %s: %w", w.root, err)
	}
	if err := os.MkdirAll(w.root, 0o750); err != nil {
		return fmt.Errorf("recreate output dir %s: %w", w.root, err)
	}
	return nil
}

// Write appends text for pageURL to its derived target file, preceded by
// a record header naming the source URL so appends from colliding URLs
// stay distinguishable.
func (w *Writer) Write(pageURL string, text string) error {
	rel := PathForURL(pageURL)
	target := filepath.Join(w.root, rel)

	lock := w.lockFor(rel)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open output file %s: %w", target, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			w.logger.Warn("close output file failed", zap.String("path", target), zap.Error(closeErr))
		}
	}()

	record := fmt.Sprintf("\n\n%s\nURL: %s\n%s\n%s\n", recordRule, pageURL, recordRule, text)
	if _, err := f.WriteString(record); err != nil {
		return fmt.Errorf("append to %s: %w", target, err)
	}
	return nil
}

// PathForURL derives the relative output file for a normalized URL. The
// scheme is dropped, every rune outside letters, digits, and '.' becomes
// '_', empty segments collapse, and only the first three segments name
// the file. Distinct URLs may map to the same file; that merge is handled
// by appending, never overwriting.
func PathForURL(pageURL string) string {
	s := strings.TrimPrefix(pageURL, "https://")
	s = strings.TrimPrefix(s, "http://")
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
			return r
		}
		return '_'
	}, s)

	var segments []string
	for _, seg := range strings.Split(mapped, "_") {
		if seg == "" {
			continue
		}
		segments = append(segments, seg)
		if len(segments) == maxSegments {
			break
		}
	}
	if len(segments) == 0 {
		return "page.txt"
	}
	return strings.Join(segments, "_") + ".txt"
}

func (w *Writer) lockFor(rel string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	lock, ok := w.locks[rel]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[rel] = lock
	}
	return lock
}
