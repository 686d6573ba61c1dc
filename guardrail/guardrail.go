// Package guardrail implements the pass/fail checks that gate specialist
// dispatch. Each guardrail is a pure predicate over the input text plus the
// current context: no side effects, no specialist or tool calls. The pipeline
// runs the guardrails attached to the active specialist in registration order
// and stops at the first failure.
package guardrail

import (
	"fmt"

	"github.com/TejasriPacharu/code-help/core"
)

// Result is the verdict of a single guardrail evaluation.
type Result struct {
	Passed    bool   `json:"passed"`
	Reasoning string `json:"reasoning"`
}

// Guardrail is a named pass/fail predicate gating specialist invocation.
type Guardrail interface {
	// Name returns the unique identifier referenced by specialists.
	Name() string
	// Evaluate checks the input text against the current context snapshot.
	// Implementations must be pure: no mutation, no external calls.
	Evaluate(input string, ctx *core.Context) Result
}

// Pipeline holds the registered guardrails and evaluates ordered subsets of
// them. Read-only after construction.
type Pipeline struct {
	byName map[string]Guardrail
}

// NewPipeline indexes the given guardrails by name.
func NewPipeline(guardrails ...Guardrail) *Pipeline {
	p := &Pipeline{byName: make(map[string]Guardrail, len(guardrails))}
	for _, g := range guardrails {
		p.byName[g.Name()] = g
	}
	return p
}

// Names returns the registered guardrail names (used for startup validation).
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.byName))
	for n := range p.byName {
		names = append(names, n)
	}
	return names
}

// Evaluate runs a single named guardrail. An unregistered name fails closed:
// the registry validates references at startup, so hitting this at runtime
// means the pipeline and registry disagree.
func (p *Pipeline) Evaluate(name, input string, ctx *core.Context) Result {
	g, ok := p.byName[name]
	if !ok {
		return Result{Passed: false, Reasoning: fmt.Sprintf("guardrail %q not registered", name)}
	}
	return g.Evaluate(input, ctx)
}

// Run evaluates the named guardrails in order against the input, recording
// one check record per evaluated guardrail. On the first failure it stops and
// returns the failing record; no further guardrails run. This is fail-fast:
// checks are cheap relative to specialist invocation and the user must never
// receive partial specialist output after a failed check.
func (p *Pipeline) Run(names []string, input string, ctx *core.Context) (records []core.GuardrailRecord, failed *core.GuardrailRecord) {
	for _, name := range names {
		res := p.Evaluate(name, input, ctx)
		rec := core.NewGuardrailRecord(name, input, res.Passed, res.Reasoning)
		records = append(records, rec)
		if !res.Passed {
			return records, &records[len(records)-1]
		}
	}
	return records, nil
}
