// Package model defines the provider boundary for specialist turns. The
// engine hands an Invoker the specialist's instructions, the conversation so
// far and the callable tool surface; the Invoker returns a single Decision
// (final text, tool requests, or a handoff). Provider adapters live in the
// anthropic and openai subpackages.
package model

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TejasriPacharu/code-help/tool"
)

// TransferToolName is the synthetic tool through which specialists hand a
// session over to another specialist. Adapters expose it alongside the real
// tools whenever the requesting specialist has handoff targets, and fold the
// resulting call back into Decision.Handoff.
const TransferToolName = "transfer_to_agent"

// Message is one provider-agnostic conversation entry.
type Message struct {
	Role       string      `json:"role"` // "user", "assistant" or "tool"
	Text       string      `json:"text,omitempty"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// ToolCall is a request by the specialist to run a named tool.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// ToolResult carries the outcome of an executed tool back to the specialist.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error,omitempty"`
}

// Request captures the normalized invocation input produced by the turn
// executor.
type Request struct {
	Specialist   string            `json:"specialist"`
	Instructions string            `json:"instructions"`
	Messages     []Message         `json:"messages"`
	Tools        []tool.Definition `json:"tools,omitempty"`
	Targets      []string          `json:"targets,omitempty"` // allowed handoff targets
}

// Decision is the single outcome of one invocation. Exactly one of the three
// shapes is populated: Handoff, ToolCalls, or final Text.
type Decision struct {
	Text      string     `json:"text,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Handoff   string     `json:"handoff,omitempty"`
	Refusal   bool       `json:"refusal,omitempty"`
}

// Info contains metadata about an Invoker implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Invoker drives one specialist inference step.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Decision, error)

	// Info returns information about the underlying provider and model.
	Info() Info
}

// TransferDefinition builds the handoff tool declaration for the given
// targets.
func TransferDefinition(targets []string) tool.Definition {
	return tool.Definition{
		Name:        TransferToolName,
		Description: "Transfer the conversation to another specialist better suited to the request.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"target": map[string]any{
					"type":        "string",
					"description": "Name of the specialist to transfer to",
					"enum":        targets,
				},
			},
			"required": []string{"target"},
		},
	}
}

// DecideFromCalls normalizes raw provider output into a Decision. A
// transfer_to_agent call wins over everything else; otherwise tool calls win
// over text. A transfer call with malformed or missing arguments is an
// invocation failure: the provider asked for a handoff but to nowhere, and
// silently degrading that to an empty final reply would hide the fault.
func DecideFromCalls(text string, calls []ToolCall) (Decision, error) {
	for _, c := range calls {
		if c.Name != TransferToolName {
			continue
		}
		var args struct {
			Target string `json:"target"`
		}
		if err := json.Unmarshal([]byte(c.Arguments), &args); err != nil {
			return Decision{}, fmt.Errorf("malformed %s arguments %q: %w", TransferToolName, c.Arguments, err)
		}
		if args.Target == "" {
			return Decision{}, fmt.Errorf("%s call is missing a target", TransferToolName)
		}
		return Decision{Handoff: args.Target}, nil
	}
	if len(calls) > 0 {
		return Decision{ToolCalls: calls}, nil
	}
	return Decision{Text: text}, nil
}
