// Package tool implements the analysis capabilities specialists invoke during
// a turn. The engine treats every tool as an opaque function with a name,
// schema-validated arguments and a text result plus an optional context
// patch. Tool failures are recorded facts handed back to the specialist, not
// turn aborts.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TejasriPacharu/code-help/core"
	"github.com/TejasriPacharu/code-help/internal/util"
)

// Output is the result of one tool execution. Patch, when non-nil, is merged
// into the session context by the turn executor after the tool_output event
// is appended.
type Output struct {
	Text  string
	Patch core.Patch
}

// Tool is the interface all specialist capabilities implement.
//
// Implementations should:
//   - Provide clear, descriptive names (snake_case) and descriptions
//   - Define a JSON schema for parameters (see noParams and optionalString)
//   - Be pure with respect to the context snapshot: mutations go through the
//     returned Patch, never directly into the snapshot
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier referenced by specialists.
	Name() string

	// Description is shown to the specialist to decide when to call the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool against a read-only context snapshot.
	Call(ctx context.Context, args map[string]any, snap *core.Context) (Output, error)
}

// ToolError represents errors that occur during tool execution. It is
// recorded in the tool_output event; the specialist decides how to react.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// ValidationError re-exports the shared argument validation error type.
type ValidationError = util.ValidationError

// Registry is the static name → implementation table for tools. It is
// validated against the specialist roster at startup, so an unknown tool
// name is a detectable configuration error rather than a runtime dispatch
// failure. Read-only after construction.
type Registry struct {
	order  []string
	byName map[string]Tool
}

// NewRegistry indexes the given tools by name, preserving order.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, dup := r.byName[t.Name()]; dup {
			continue
		}
		r.byName[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	return r
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions returns name/description/schema triples for the named subset,
// used to expose tools to the specialist invocation boundary.
func (r *Registry) Definitions(names []string) []Definition {
	defs := make([]Definition, 0, len(names))
	for _, n := range names {
		if t, ok := r.byName[n]; ok {
			defs = append(defs, Definition{Name: t.Name(), Description: t.Description(), Parameters: t.Parameters()})
		}
	}
	return defs
}

// Definition declaratively exposes a callable tool to a specialist.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Execute looks up a tool, decodes and validates the raw argument payload and
// runs it against the context snapshot. All failures come back as *ToolError
// so the executor records them uniformly.
func (r *Registry) Execute(ctx context.Context, name, rawArgs string, snap *core.Context) (Output, error) {
	t, ok := r.byName[name]
	if !ok {
		return Output{}, NewToolError(name, "tool not registered", "UNKNOWN_TOOL")
	}

	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return Output{}, NewToolError(name, fmt.Sprintf("malformed arguments: %v", err), "VALIDATION_ERROR")
		}
	}
	if err := util.ValidateParameters(args, t.Parameters()); err != nil {
		return Output{}, NewToolError(name, err.Error(), "VALIDATION_ERROR")
	}

	out, err := t.Call(ctx, args, snap)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return Output{}, toolErr
		}
		return Output{}, NewToolError(name, err.Error(), "EXECUTION_ERROR")
	}
	return out, nil
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// intArg reads an integer argument. JSON decoding yields float64.
func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
