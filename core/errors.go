package core

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to callers of the orchestrator. Both are scoped to
// a single call and retryable at the caller's discretion.
var (
	// ErrSessionNotFound indicates the caller referenced an unknown session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionBusy indicates a turn is already executing for the session
	// and the orchestrator is configured to reject rather than queue.
	ErrSessionBusy = errors.New("session busy")
)

// ConfigurationError reports an invalid specialist registry: a specialist
// referencing a tool, guardrail or handoff target that is not registered.
// It is detected once at startup and is the only error fatal to the process.
type ConfigurationError struct {
	Specialist string
	Kind       string // "tool", "guardrail" or "handoff"
	Ref        string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: specialist %q references unknown %s %q", e.Specialist, e.Kind, e.Ref)
}

// InvalidHandoffError reports a specialist requesting transfer to a target
// outside its allowed set. It aborts the turn but never the session.
type InvalidHandoffError struct {
	From   string
	Target string
}

func (e *InvalidHandoffError) Error() string {
	return fmt.Sprintf("invalid handoff: %s may not transfer to %s", e.From, e.Target)
}

// ExecutionLimitError reports that a turn exceeded the tool-round or handoff
// cap. The caps exist because the external specialist is an unpredictable
// collaborator; they are the primary defense against infinite loops.
type ExecutionLimitError struct {
	Limit string // "tool_rounds" or "handoffs"
	Max   int
}

func (e *ExecutionLimitError) Error() string {
	return fmt.Sprintf("execution limit exceeded: %s > %d", e.Limit, e.Max)
}

// GenerationError wraps a failure of the external specialist invocation. It
// aborts the current turn; the session remains usable.
type GenerationError struct {
	Specialist string
	Err        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation error from %s: %v", e.Specialist, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
