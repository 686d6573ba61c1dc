package tool

import (
	"context"

	"github.com/TejasriPacharu/code-help/core"
)

// FuncTool adapts a plain Go function to the Tool interface. All of the
// built-in analysis tools are FuncTools; custom implementations only need a
// struct of their own when they carry state.
//
// A FuncTool has no mutable state after construction and is safe for
// concurrent use by multiple goroutines.
type FuncTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any, snap *core.Context) (Output, error)
}

// NewFuncTool constructs a FuncTool from an explicit schema and function.
//
// Arguments:
//
//	name        - unique tool name (snake_case)
//	description - concise, imperative description shown to specialists
//	parameters  - minimal JSON-Schema-like map describing accepted arguments
//	fn          - implementation receiving already-validated args and a
//	              read-only context snapshot
func NewFuncTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any, snap *core.Context) (Output, error),
) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// Name returns the unique tool name used in tool declarations and routing.
func (t *FuncTool) Name() string { return t.name }

// Description returns the short natural language description exposed to specialists.
func (t *FuncTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FuncTool) Parameters() map[string]any { return t.parameters }

// Call invokes the wrapped function. Argument validation has already
// happened in Registry.Execute.
func (t *FuncTool) Call(ctx context.Context, args map[string]any, snap *core.Context) (Output, error) {
	return t.fn(ctx, args, snap)
}

// noParams is the schema for tools that take no arguments.
func noParams() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

// optionalString builds a single optional string parameter schema.
func optionalString(name, description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			name: map[string]any{
				"type":        "string",
				"description": description,
			},
		},
	}
}
