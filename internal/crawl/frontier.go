package crawl

import "sync"

// State describes the crawl-wide lifecycle of the frontier.
type State int

// Frontier states. The only transitions are Running -> Draining ->
// Terminated; a terminated frontier never runs again.
const (
	// StateRunning: the queue holds work or workers are busy.
	StateRunning State = iota
	// StateDraining: the queue is empty but at least one in-flight item
	// may still enqueue children.
	StateDraining
	// StateTerminated: the queue is empty and nothing in flight can
	// produce more work. Final.
	StateTerminated
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Frontier is the FIFO queue of pending WorkItems, bounded by a maximum
// depth. Push and Pop are individually atomic, and quiescence detection
// (queue empty AND zero in-flight items) happens as a single
// reconciliation under the frontier mutex, so a worker that finished a
// fetch but has not yet pushed its children can never be mistaken for
// idle.
type Frontier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	items      []WorkItem
	maxDepth   int
	inflight   int
	overDepth  int64
	terminated bool
}

// NewFrontier creates a Frontier that drops items deeper than maxDepth.
func NewFrontier(maxDepth int) *Frontier {
	f := &Frontier{maxDepth: maxDepth}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Push enqueues item and reports whether it was accepted. Items beyond
// the depth bound are dropped silently and counted; exceeding depth is the
// designed termination condition for that branch, not an error.
func (f *Frontier) Push(item WorkItem) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.terminated {
		return false
	}
	if item.Depth > f.maxDepth {
		f.overDepth++
		return false
	}
	f.items = append(f.items, item)
	f.cond.Signal()
	return true
}

// Pop returns the next item in FIFO order, blocking while the queue is
// empty but work is still in flight. ok is false once the frontier has
// terminated: nothing queued and nothing in flight that could enqueue
// more. Every successful Pop must be paired with a Done call.
func (f *Frontier) Pop() (item WorkItem, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		if f.terminated {
			return WorkItem{}, false
		}
		if len(f.items) > 0 {
			item = f.items[0]
			f.items = f.items[1:]
			f.inflight++
			return item, true
		}
		if f.inflight == 0 {
			f.terminated = true
			f.cond.Broadcast()
			return WorkItem{}, false
		}
		f.cond.Wait()
	}
}

// Done marks one popped item fully processed, children included. It must
// be called after any Push calls for that item's links so the in-flight
// counter never transiently reads zero while children are pending.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inflight > 0 {
		f.inflight--
	}
	if f.inflight == 0 && len(f.items) == 0 {
		f.cond.Broadcast()
	}
}

// Stop forces the frontier into the terminated state, waking any blocked
// Pop callers. Used for cooperative cancellation between items.
func (f *Frontier) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = true
	f.items = nil
	f.cond.Broadcast()
}

// State reports the current lifecycle state.
func (f *Frontier) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.terminated:
		return StateTerminated
	case len(f.items) == 0 && f.inflight > 0:
		return StateDraining
	default:
		return StateRunning
	}
}

// Len reports the number of queued items.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// OverDepthSkips reports how many pushes were dropped for exceeding the
// depth bound.
func (f *Frontier) OverDepthSkips() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overDepth
}
