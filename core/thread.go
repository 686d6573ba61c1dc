package core

import (
	"sync"
	"time"
)

// Thread is the unit of conversation: the authoritative state for one
// session. It is owned exclusively by the orchestrator; only the single
// in-flight turn executor mutates it, while subscribers read snapshots.
type Thread struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`

	mu         sync.RWMutex
	active     string
	context    *Context
	log        *EventLog
	guardrails []GuardrailRecord
}

// NewThread creates a thread with an empty log and context, starting with the
// given active specialist.
func NewThread(id, activeSpecialist string) *Thread {
	return &Thread{
		ID:      id,
		Created: time.Now().UTC(),
		active:  activeSpecialist,
		context: NewContext(),
		log:     NewEventLog(),
	}
}

// ActiveSpecialist returns the name of the specialist that will handle the
// next dispatch.
func (t *Thread) ActiveSpecialist() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// SetActiveSpecialist sets the specialist handling the next dispatch.
// Handoffs during a turn go through RecordHandoff instead, which also
// appends the handoff event.
func (t *Thread) SetActiveSpecialist(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = name
}

// RecordHandoff appends the handoff event and swaps the active specialist as
// one operation. The thread lock is held across both so a snapshot or delta
// reader never sees the handoff event paired with the pre-handoff specialist.
func (t *Thread) RecordHandoff(from, to string) Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	ev := t.log.Append(NewHandoffEvent(from, to))
	t.active = to
	return ev
}

// Log returns the thread's event log.
func (t *Thread) Log() *EventLog { return t.log }

// Context returns the thread's shared context record.
func (t *Thread) Context() *Context { return t.context }

// ApplyPatch merges a partial context update and appends the resulting
// context_update event carrying the changed field names. The merge fully
// applies before the event is appended, so the log never references a
// mutation that did not happen. Returns the appended event and false when
// the patch was empty.
// The thread lock is held across merge and append so snapshot readers never
// observe the mutation without its event.
func (t *Thread) ApplyPatch(author string, patch Patch) (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	changed := t.context.Merge(patch)
	if len(changed) == 0 {
		return Event{}, false
	}
	ev := t.log.Append(NewContextUpdateEvent(author, changed))
	return ev, true
}

// AddGuardrailRecord appends an immutable check record to the history.
func (t *Thread) AddGuardrailRecord(rec GuardrailRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.guardrails = append(t.guardrails, rec)
}

// GuardrailHistory returns a defensive copy of the check history.
func (t *Thread) GuardrailHistory() []GuardrailRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]GuardrailRecord, len(t.guardrails))
	copy(out, t.guardrails)
	return out
}

// Snapshot captures a consistent view of the thread: the active specialist,
// context fields, full event log and guardrail history. Agent descriptions
// are attached by the orchestrator, which owns the registry.
func (t *Thread) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Snapshot{
		SessionID:        t.ID,
		ActiveSpecialist: t.active,
		Context:          t.context.Fields(),
		Events:           t.log.All(),
		GuardrailHistory: append([]GuardrailRecord(nil), t.guardrails...),
	}
}

// DeltaSince captures a consistent delta view: the events appended after the
// given sequence plus the current active specialist and context. Used by the
// publisher to build per-subscriber deliveries.
func (t *Thread) DeltaSince(seq int64) Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Snapshot{
		SessionID:        t.ID,
		ActiveSpecialist: t.active,
		Context:          t.context.Fields(),
		DeltaEvents:      t.log.Since(seq),
	}
}
