package core

import "sync"

// EventLog is the append-only, strictly ordered record of everything that
// happened in a session. Append is the single mutation primitive; sequence
// numbers start at 1 and have no gaps. It is safe for concurrent access,
// though under the orchestrator's discipline only one writer exists per
// session at a time.
type EventLog struct {
	mu     sync.RWMutex
	events []Event
}

// NewEventLog constructs an empty log.
func NewEventLog() *EventLog { return &EventLog{} }

// Append assigns the next sequence number to ev, stores it and returns the
// stored event. The assignment is atomic: two concurrent appends never
// receive the same number and the log never has a gap.
func (l *EventLog) Append(ev Event) Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	ev.Seq = int64(len(l.events)) + 1
	l.events = append(l.events, ev)
	return ev
}

// Since returns a copy of all events with sequence numbers strictly greater
// than seq, in order. Because sequence numbers are dense the lookup is an
// index computation, so the cost is proportional to the events returned, not
// the full log.
func (l *EventLog) Since(seq int64) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if seq < 0 {
		seq = 0
	}
	if seq >= int64(len(l.events)) {
		return nil
	}
	out := make([]Event, int64(len(l.events))-seq)
	copy(out, l.events[seq:])
	return out
}

// All returns a defensive copy of the full ordered event sequence.
func (l *EventLog) All() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of events appended so far, which equals the highest
// assigned sequence number.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
