// Package publish fans out session state to observers. Each subscriber gets
// an initial full snapshot followed by ordered deltas; subscribers are
// independent of each other and of turn execution, and detaching one never
// touches the session's own state.
package publish

import (
	"sync"

	"github.com/TejasriPacharu/code-help/core"
	"github.com/TejasriPacharu/code-help/logging"
	"github.com/google/uuid"
)

// Subscription is one observer's live feed. Snapshots delivers the initial
// full snapshot followed by deltas; it is closed on Close and when the
// session is dropped.
type Subscription struct {
	id        string
	sessionID string
	snapshots chan core.Snapshot

	notify chan struct{}
	stop   chan struct{}
	once   sync.Once
}

// Snapshots returns the ordered delivery channel.
func (s *Subscription) Snapshots() <-chan core.Snapshot { return s.snapshots }

// SessionID returns the session this subscription observes.
func (s *Subscription) SessionID() string { return s.sessionID }

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { close(s.stop) })
}

// Options configure a Publisher.
type Options struct {
	Logger logging.Logger
	// Buffer is the per-subscriber channel capacity. Deliveries are
	// coalesced, so a slow subscriber receives fewer, larger deltas rather
	// than blocking the turn.
	Buffer int
}

// Publisher owns the per-session subscriber sets. It is the only structure
// mutated concurrently by unrelated actors (subscribers arriving while turns
// execute), so all access goes through its mutex.
type Publisher struct {
	mu     sync.RWMutex
	subs   map[string]map[string]*Subscription // sessionID -> subID -> sub
	logger logging.Logger
	buffer int
}

// NewPublisher creates a Publisher.
func NewPublisher(optFns ...func(o *Options)) *Publisher {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Buffer: 16,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Publisher{
		subs:   make(map[string]map[string]*Subscription),
		logger: opts.Logger,
		buffer: opts.Buffer,
	}
}

// Subscribe attaches a new observer to the thread. The initial delivery is a
// full snapshot (with the agent views attached); every later delivery is a
// delta whose events strictly follow the previous delivery.
func (p *Publisher) Subscribe(thread *core.Thread, agents []core.SpecialistView) *Subscription {
	sub := &Subscription{
		id:        uuid.NewString(),
		sessionID: thread.ID,
		snapshots: make(chan core.Snapshot, p.buffer),
		notify:    make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}

	p.mu.Lock()
	if p.subs[thread.ID] == nil {
		p.subs[thread.ID] = make(map[string]*Subscription)
	}
	p.subs[thread.ID][sub.id] = sub
	p.mu.Unlock()

	p.logger.Debug("publish.subscribe", "session_id", thread.ID, "sub_id", sub.id)

	go p.deliver(thread, sub, agents)
	return sub
}

// deliver runs the per-subscriber loop: one initial full snapshot, then a
// delta per notification. Deltas are computed from the subscriber's own last
// delivered sequence, so coalesced notifications never skip or repeat an
// event.
func (p *Publisher) deliver(thread *core.Thread, sub *Subscription, agents []core.SpecialistView) {
	defer func() {
		p.remove(sub)
		close(sub.snapshots)
	}()

	initial := thread.Snapshot()
	initial.Agents = append([]core.SpecialistView(nil), agents...)
	select {
	case <-sub.stop:
		return
	case sub.snapshots <- initial:
	}
	lastSeq := initial.LastSeq()

	for {
		select {
		case <-sub.stop:
			return
		case <-sub.notify:
		}

		delta := thread.DeltaSince(lastSeq)
		if len(delta.DeltaEvents) == 0 {
			continue
		}
		select {
		case <-sub.stop:
			return
		case sub.snapshots <- delta:
			lastSeq = delta.LastSeq()
		}
	}
}

// Publish wakes every subscriber of the session so each computes its next
// delta. Non-blocking: pending notifications coalesce.
func (p *Publisher) Publish(sessionID string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, sub := range p.subs[sessionID] {
		select {
		case sub.notify <- struct{}{}:
		default:
		}
	}
}

// Drop closes every subscription attached to the session. Used on reset.
func (p *Publisher) Drop(sessionID string) {
	p.mu.RLock()
	subs := make([]*Subscription, 0, len(p.subs[sessionID]))
	for _, sub := range p.subs[sessionID] {
		subs = append(subs, sub)
	}
	p.mu.RUnlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// SubscriberCount returns the number of live subscriptions for a session.
func (p *Publisher) SubscriberCount(sessionID string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs[sessionID])
}

func (p *Publisher) remove(sub *Subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m := p.subs[sub.sessionID]; m != nil {
		delete(m, sub.id)
		if len(m) == 0 {
			delete(p.subs, sub.sessionID)
		}
	}
	p.logger.Debug("publish.unsubscribe", "session_id", sub.sessionID, "sub_id", sub.id)
}
