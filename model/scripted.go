package model

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedInvoker replays a fixed sequence of decisions. Useful for tests
// and for the demo mode where no provider credentials are configured.
type ScriptedInvoker struct {
	mu        sync.Mutex
	decisions []Decision
	requests  []Request
	fallback  func(req Request) Decision
}

// NewScriptedInvoker constructs a ScriptedInvoker that returns the given
// decisions in order. Once exhausted it falls back to echoing the last user
// message, or to the fallback function when one is set.
func NewScriptedInvoker(decisions ...Decision) *ScriptedInvoker {
	return &ScriptedInvoker{decisions: decisions}
}

// SetFallback installs the decision function used after the scripted
// sequence runs out.
func (s *ScriptedInvoker) SetFallback(fn func(req Request) Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = fn
}

// Invoke implements Invoker.
func (s *ScriptedInvoker) Invoke(ctx context.Context, req Request) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	if len(s.decisions) > 0 {
		d := s.decisions[0]
		s.decisions = s.decisions[1:]
		return d, nil
	}
	if s.fallback != nil {
		return s.fallback(req), nil
	}

	var lastUser string
	for _, m := range req.Messages {
		if m.Role == "user" {
			lastUser = m.Text
		}
	}
	return Decision{Text: fmt.Sprintf("Scripted response to: %s", lastUser)}, nil
}

// Requests returns a copy of every request seen so far.
func (s *ScriptedInvoker) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Info implements Invoker.
func (s *ScriptedInvoker) Info() Info {
	return Info{Name: "scripted", Provider: "test"}
}
