package progress

import "context"

// Sink consumes progress events. Implementations must be safe for
// concurrent use and honor ctx deadlines.
type Sink interface {
	Consume(ctx context.Context, evt Event) error
	Close(ctx context.Context) error
}

// Emitter publishes individual events; Hub satisfies this interface so the
// crawl engine stays agnostic about how events are buffered or consumed.
type Emitter interface {
	Emit(evt Event)
}
