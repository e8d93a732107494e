package crawl

import "sync"

// VisitedSet records every normalized URL that has ever been claimed for
// scheduling. It only grows for the lifetime of a run; there is no removal.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// TryClaim atomically records url and reports whether this call was the
// first to do so. Exactly one caller wins per distinct URL, which is what
// keeps concurrent workers from fetching the same page twice.
func (s *VisitedSet) TryClaim(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[url]; ok {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Len reports how many URLs have been claimed so far.
func (s *VisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
