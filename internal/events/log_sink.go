package events

import (
	"sync"

	"go.uber.org/zap"
)

// LogSink is a Sink that structured-logs every event instead of pushing
// it onto a real broadcast transport. It stands in for the external
// event-stream broadcaster (spec.md §1 Non-goals) in this module and in
// the bundled cmd/server demo.
type LogSink struct {
	log *zap.SugaredLogger
}

// NewLogSink constructs a LogSink writing through log.
func NewLogSink(log *zap.SugaredLogger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(e Event) {
	s.log.Infow("event emitted",
		"eventId", e.EventID,
		"eventType", e.EventType,
		"auctionId", e.AuctionID,
		"timestamp", e.Timestamp,
		"payload", e.Payload,
	)
}

// InMemorySink collects emitted events in order; it exists for tests
// that assert on what the engine emitted.
type InMemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewInMemorySink constructs an empty InMemorySink.
func NewInMemorySink() *InMemorySink {
	return &InMemorySink{}
}

func (s *InMemorySink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Events returns a snapshot of every event emitted so far, in emission
// order.
func (s *InMemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
