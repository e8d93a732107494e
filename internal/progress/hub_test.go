package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// recordingSink captures consumed events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *recordingSink) Consume(_ context.Context, evt Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return nil
}

func (s *recordingSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func validEvent(stage Stage) Event {
	evt := Event{RunID: uuid.New(), TS: time.Now(), Stage: stage}
	switch stage {
	case StageRunStart, StageRunDone:
	default:
		evt.URL = "https://example.com/a"
	}
	if stage == StageFetchDone {
		evt.StatusClass = Status2xx
	}
	return evt
}

func TestHubDeliversToAllSinks(t *testing.T) {
	t.Parallel()

	first := &recordingSink{}
	second := &recordingSink{}
	hub := NewHub(Config{}, first, second)

	hub.Emit(validEvent(StageRunStart))
	hub.Emit(validEvent(StageFetchDone))
	hub.Emit(validEvent(StageRunDone))

	require.NoError(t, hub.Close(context.Background()))

	for _, sink := range []*recordingSink{first, second} {
		events := sink.snapshot()
		require.Len(t, events, 3)
		require.Equal(t, StageRunStart, events[0].Stage)
		require.Equal(t, StageFetchDone, events[1].Stage)
		require.Equal(t, StageRunDone, events[2].Stage)
		require.True(t, sink.closed, "Close must close sinks")
	}
}

func TestHubDiscardsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	hub := NewHub(Config{}, sink)

	hub.Emit(Event{})                                                // missing everything
	hub.Emit(Event{RunID: uuid.New(), TS: time.Now(), Stage: "???"}) // unknown stage
	hub.Emit(validEvent(StageRunStart))

	require.NoError(t, hub.Close(context.Background()))
	require.Len(t, sink.snapshot(), 1)
}

func TestHubEmitAfterCloseIsNoop(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	hub := NewHub(Config{}, sink)
	require.NoError(t, hub.Close(context.Background()))

	hub.Emit(validEvent(StageRunStart))
	require.Empty(t, sink.snapshot())

	// Double close is safe.
	require.NoError(t, hub.Close(context.Background()))
}

func TestHubNilSafe(t *testing.T) {
	t.Parallel()

	var hub *Hub
	hub.Emit(validEvent(StageRunStart))
	require.NoError(t, hub.Close(context.Background()))
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	base := validEvent(StageFetchDone)
	require.NoError(t, base.Validate())

	missingID := base
	missingID.RunID = uuid.Nil
	require.Error(t, missingID.Validate())

	missingURL := base
	missingURL.URL = ""
	require.Error(t, missingURL.Validate())

	missingClass := base
	missingClass.StatusClass = ""
	require.Error(t, missingClass.Validate())

	negativeDur := base
	negativeDur.Dur = -time.Second
	require.Error(t, negativeDur.Validate())
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want StatusClass
	}{
		{200, Status2xx},
		{204, Status2xx},
		{301, Status3xx},
		{404, Status4xx},
		{500, Status5xx},
		{0, StatusOther},
		{999, StatusOther},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ClassifyStatus(tt.code), "code %d", tt.code)
	}
}
