package core

import (
	"time"

	"github.com/google/uuid"
)

// EventKind enumerates the closed set of event categories appended to a
// thread's log. New specialist capabilities add new payload fields rather
// than new kinds wherever possible.
type EventKind string

const (
	// KindMessage is a user or specialist text message.
	KindMessage EventKind = "message"
	// KindHandoff records a transfer of control between specialists.
	KindHandoff EventKind = "handoff"
	// KindToolCall records a specialist requesting a tool invocation.
	KindToolCall EventKind = "tool_call"
	// KindToolOutput records the result (or error) of a tool invocation.
	KindToolOutput EventKind = "tool_output"
	// KindContextUpdate records which context fields a merge changed.
	KindContextUpdate EventKind = "context_update"
	// KindAborted marks a turn that terminated before producing a response.
	KindAborted EventKind = "aborted"
)

// MessagePayload carries conversational text. Refusal marks guardrail
// refusals so clients can render them distinctly.
type MessagePayload struct {
	Role    string `json:"role"` // "user" or "assistant"
	Text    string `json:"text"`
	Refusal bool   `json:"refusal,omitempty"`
}

// HandoffPayload records a control transfer edge taken during a turn.
type HandoffPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ToolCallPayload records a requested tool invocation. Arguments is the raw
// serialized argument payload as produced by the specialist.
type ToolCallPayload struct {
	CallID    string `json:"call_id"`
	Tool      string `json:"tool"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolOutputPayload records a tool result. Error is populated instead of
// Result when the tool failed; a failed tool is a recorded fact, not a turn
// abort.
type ToolOutputPayload struct {
	CallID string `json:"call_id"`
	Tool   string `json:"tool"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ContextUpdatePayload lists the names of context fields changed by a merge.
// Values are deliberately omitted so observers can subscribe without
// replaying sensitive content verbatim.
type ContextUpdatePayload struct {
	Fields []string `json:"fields"`
}

// AbortPayload records why a turn terminated early. Cause is one of the
// stable strings below; Reason is free text for operators.
type AbortPayload struct {
	Cause  string `json:"cause"`
	Reason string `json:"reason,omitempty"`
}

// Abort causes recorded in AbortPayload.Cause.
const (
	AbortGuardrail      = "guardrail_failure"
	AbortInvalidHandoff = "invalid_handoff"
	AbortExecutionLimit = "execution_limit"
	AbortGeneration     = "generation_error"
	AbortCancelled      = "cancelled"
)

// Event is an immutable record appended to a thread's event log. Seq is
// assigned by the EventLog on append and is unique, gap-free and strictly
// increasing within a session. Exactly one payload pointer matching Kind is
// set; the others are nil.
type Event struct {
	Seq       int64     `json:"seq"`
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Author    string    `json:"author"` // specialist name, or "user"
	Timestamp time.Time `json:"timestamp"`

	Message       *MessagePayload       `json:"message,omitempty"`
	Handoff       *HandoffPayload       `json:"handoff,omitempty"`
	ToolCall      *ToolCallPayload      `json:"tool_call,omitempty"`
	ToolOutput    *ToolOutputPayload    `json:"tool_output,omitempty"`
	ContextUpdate *ContextUpdatePayload `json:"context_update,omitempty"`
	Abort         *AbortPayload         `json:"abort,omitempty"`
}

// NewID generates a new unique identifier for events, sessions and tool calls.
func NewID() string { return uuid.NewString() }

func newEvent(kind EventKind, author string) Event {
	return Event{
		ID:        NewID(),
		Kind:      kind,
		Author:    author,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessageEvent creates a user-authored text message event.
func NewUserMessageEvent(text string) Event {
	ev := newEvent(KindMessage, "user")
	ev.Message = &MessagePayload{Role: "user", Text: text}
	return ev
}

// NewSpecialistMessageEvent creates a specialist-authored message event.
func NewSpecialistMessageEvent(specialist, text string) Event {
	ev := newEvent(KindMessage, specialist)
	ev.Message = &MessagePayload{Role: "assistant", Text: text}
	return ev
}

// NewRefusalEvent creates the user-visible refusal message appended after a
// failed guardrail check.
func NewRefusalEvent(specialist, text string) Event {
	ev := newEvent(KindMessage, specialist)
	ev.Message = &MessagePayload{Role: "assistant", Text: text, Refusal: true}
	return ev
}

// NewHandoffEvent records a control transfer from one specialist to another.
func NewHandoffEvent(from, to string) Event {
	ev := newEvent(KindHandoff, from)
	ev.Handoff = &HandoffPayload{From: from, To: to}
	return ev
}

// NewToolCallEvent records a specialist requesting execution of a named tool.
func NewToolCallEvent(specialist, callID, tool, arguments string) Event {
	ev := newEvent(KindToolCall, specialist)
	ev.ToolCall = &ToolCallPayload{CallID: callID, Tool: tool, Arguments: arguments}
	return ev
}

// NewToolOutputEvent records the completion result (or error) of a tool
// invocation. If err is non-nil its message is recorded and result ignored.
func NewToolOutputEvent(specialist, callID, tool, result string, err error) Event {
	ev := newEvent(KindToolOutput, specialist)
	out := &ToolOutputPayload{CallID: callID, Tool: tool}
	if err != nil {
		out.Error = err.Error()
	} else {
		out.Result = result
	}
	ev.ToolOutput = out
	return ev
}

// NewContextUpdateEvent records the set of context field names a merge changed.
func NewContextUpdateEvent(author string, fields []string) Event {
	ev := newEvent(KindContextUpdate, author)
	ev.ContextUpdate = &ContextUpdatePayload{Fields: fields}
	return ev
}

// NewAbortedEvent marks a turn that terminated before producing a response.
func NewAbortedEvent(specialist, cause, reason string) Event {
	ev := newEvent(KindAborted, specialist)
	ev.Abort = &AbortPayload{Cause: cause, Reason: reason}
	return ev
}

// IsFinalResponse reports whether this event carries the specialist text that
// terminates a turn (a non-refusal assistant message).
func (e Event) IsFinalResponse() bool {
	return e.Kind == KindMessage && e.Message != nil &&
		e.Message.Role == "assistant" && !e.Message.Refusal
}
