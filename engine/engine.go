// Package engine implements the session orchestrator and the turn executor.
// The orchestrator owns every session's authoritative state and exposes the
// four operations a transport layer needs: Bootstrap, SubmitTurn, Subscribe
// and Reset. The turn executor drives one user turn through guardrails,
// specialist dispatch, tool rounds and handoffs, appending events and
// publishing deltas as it goes.
package engine

import (
	"context"
	"sync"

	"github.com/TejasriPacharu/code-help/agent"
	"github.com/TejasriPacharu/code-help/core"
	"github.com/TejasriPacharu/code-help/guardrail"
	"github.com/TejasriPacharu/code-help/logging"
	"github.com/TejasriPacharu/code-help/model"
	"github.com/TejasriPacharu/code-help/publish"
	"github.com/TejasriPacharu/code-help/tool"
	"github.com/google/uuid"
)

// Default execution caps. The external specialist is an unpredictable
// collaborator; these bounds are the primary defense against handoff cycles
// and endless tool loops.
const (
	DefaultMaxToolRounds = 8
	DefaultMaxHandoffs   = 4
)

// Options configures an Engine.
type Options struct {
	// Publisher fans out state to subscribers. Defaults to a fresh publisher.
	Publisher *publish.Publisher

	// Logger defaults to NoOp.
	Logger logging.Logger

	// Entry is the specialist new sessions start with. Defaults to the first
	// registered specialist.
	Entry string

	// MaxToolRounds bounds tool-loop re-entries per turn.
	MaxToolRounds int

	// MaxHandoffs bounds handoffs per turn.
	MaxHandoffs int

	// RejectWhenBusy makes SubmitTurn fail with ErrSessionBusy instead of
	// queueing behind the in-flight turn.
	RejectWhenBusy bool
}

// WithLogger sets the engine logger.
func WithLogger(logger logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = logger }
}

// WithEntry sets the specialist new sessions start with.
func WithEntry(name string) func(o *Options) {
	return func(o *Options) { o.Entry = name }
}

// WithPublisher sets the state publisher.
func WithPublisher(p *publish.Publisher) func(o *Options) {
	return func(o *Options) { o.Publisher = p }
}

// WithLimits overrides the per-turn tool-round and handoff caps.
func WithLimits(maxToolRounds, maxHandoffs int) func(o *Options) {
	return func(o *Options) {
		o.MaxToolRounds = maxToolRounds
		o.MaxHandoffs = maxHandoffs
	}
}

// WithRejectWhenBusy makes concurrent submissions to one session fail fast
// instead of queueing.
func WithRejectWhenBusy() func(o *Options) {
	return func(o *Options) { o.RejectWhenBusy = true }
}

// session pairs a thread with the mutex enforcing the one-turn-at-a-time
// invariant. Only the goroutine holding busy mutates the thread's contents.
// The thread pointer itself is additionally guarded by mu so snapshot and
// subscribe readers synchronize with the swap Reset performs.
type session struct {
	busy sync.Mutex

	mu     sync.RWMutex
	thread *core.Thread
}

// current returns the session's live thread.
func (s *session) current() *core.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thread
}

// swap replaces the thread. Callers hold busy, so no turn is in flight.
func (s *session) swap(t *core.Thread) {
	s.mu.Lock()
	s.thread = t
	s.mu.Unlock()
}

// Engine is the session orchestrator.
type Engine struct {
	registry   *agent.Registry
	tools      *tool.Registry
	guardrails *guardrail.Pipeline
	invoker    model.Invoker
	publisher  *publish.Publisher
	logger     logging.Logger

	entry         string
	maxToolRounds int
	maxHandoffs   int
	rejectBusy    bool

	mu       sync.RWMutex
	sessions map[string]*session
}

// New wires an Engine from a validated registry, the tool table, the
// guardrail pipeline and a specialist invoker.
func New(
	registry *agent.Registry,
	tools *tool.Registry,
	guardrails *guardrail.Pipeline,
	invoker model.Invoker,
	optFns ...func(o *Options),
) *Engine {
	opts := Options{
		Logger:        logging.NoOpLogger{},
		MaxToolRounds: DefaultMaxToolRounds,
		MaxHandoffs:   DefaultMaxHandoffs,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Publisher == nil {
		opts.Publisher = publish.NewPublisher()
	}
	if opts.Entry == "" {
		if names := registry.Names(); len(names) > 0 {
			opts.Entry = names[0]
		}
	}

	return &Engine{
		registry:      registry,
		tools:         tools,
		guardrails:    guardrails,
		invoker:       invoker,
		publisher:     opts.Publisher,
		logger:        opts.Logger,
		entry:         opts.Entry,
		maxToolRounds: opts.MaxToolRounds,
		maxHandoffs:   opts.MaxHandoffs,
		rejectBusy:    opts.RejectWhenBusy,
		sessions:      make(map[string]*session),
	}
}

// Bootstrap creates a new session with an empty log and context and the
// default active specialist, returning its initial snapshot.
func (e *Engine) Bootstrap() core.Snapshot {
	thread := core.NewThread(uuid.NewString(), e.entry)

	e.mu.Lock()
	e.sessions[thread.ID] = &session{thread: thread}
	e.mu.Unlock()

	e.logger.Info("engine.session.bootstrap", "session_id", thread.ID, "specialist", e.entry)

	snap := thread.Snapshot()
	snap.Agents = e.registry.Views()
	return snap
}

// SubmitTurn drives one user turn to completion and returns the terminal
// snapshot. At most one turn executes per session; later submissions queue in
// arrival order, or fail with ErrSessionBusy when the engine is configured to
// reject. Turns on different sessions never block each other.
func (e *Engine) SubmitTurn(ctx context.Context, sessionID, text string) (core.Snapshot, error) {
	sess, ok := e.lookup(sessionID)
	if !ok {
		return core.Snapshot{}, core.ErrSessionNotFound
	}

	if e.rejectBusy {
		if !sess.busy.TryLock() {
			return core.Snapshot{}, core.ErrSessionBusy
		}
	} else {
		sess.busy.Lock()
	}
	defer sess.busy.Unlock()

	thread := sess.current()
	err := e.runTurn(ctx, thread, text)

	snap := thread.Snapshot()
	snap.Agents = e.registry.Views()
	return snap, err
}

// Subscribe attaches a live state feed to the session.
func (e *Engine) Subscribe(sessionID string) (*publish.Subscription, error) {
	sess, ok := e.lookup(sessionID)
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return e.publisher.Subscribe(sess.current(), e.registry.Views()), nil
}

// Snapshot returns the current full state of the session.
func (e *Engine) Snapshot(sessionID string) (core.Snapshot, error) {
	sess, ok := e.lookup(sessionID)
	if !ok {
		return core.Snapshot{}, core.ErrSessionNotFound
	}
	snap := sess.current().Snapshot()
	snap.Agents = e.registry.Views()
	return snap, nil
}

// Reset discards the session's state and issues a fresh thread under the
// same identifier. Existing subscriptions are closed; the caller resubscribes
// to observe the new thread.
func (e *Engine) Reset(sessionID string) (core.Snapshot, error) {
	sess, ok := e.lookup(sessionID)
	if !ok {
		return core.Snapshot{}, core.ErrSessionNotFound
	}

	// Wait for any in-flight turn before swapping the thread out.
	sess.busy.Lock()
	defer sess.busy.Unlock()

	e.publisher.Drop(sessionID)
	fresh := core.NewThread(sessionID, e.entry)
	sess.swap(fresh)

	e.logger.Info("engine.session.reset", "session_id", sessionID)

	snap := fresh.Snapshot()
	snap.Agents = e.registry.Views()
	return snap, nil
}

func (e *Engine) lookup(sessionID string) (*session, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[sessionID]
	return s, ok
}
