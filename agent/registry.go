package agent

import (
	"github.com/TejasriPacharu/code-help/core"
)

// Specialist is the static, immutable description of one capability unit.
// Specialists are defined at process start and never mutate afterwards.
type Specialist struct {
	// Name is the unique identifier used in handoffs and event attribution.
	Name string
	// Description is the human-readable purpose shown to users and used by
	// the router to pick a target.
	Description string
	// Tools lists the callable tool names, in the order they are offered to
	// the specialist.
	Tools []string
	// Handoffs lists the specialist names this one may transfer control to.
	Handoffs []string
	// Guardrails lists the guardrail names gating this specialist, evaluated
	// in this order before any dispatch.
	Guardrails []string
	// Instructions, if set, builds the system prompt for each dispatch from
	// the current session context. Nil means no instructions.
	Instructions func(ctx *core.Context) string
	// OnHandoff, if set, runs when control transfers TO this specialist. The
	// returned patch is merged into the session context before the new
	// specialist is dispatched. Used for per-specialist context defaults.
	OnHandoff func(ctx *core.Context) core.Patch
}

// KnownNames carries the registered tool and guardrail name sets used to
// validate specialist references at startup.
type KnownNames struct {
	Tools      []string
	Guardrails []string
}

// Registry is the read-only set of specialists plus the handoff graph over
// them. It requires no locking: construction validates everything once and
// the structure never changes afterwards.
type Registry struct {
	order       []string
	specialists map[string]*Specialist
}

// NewRegistry validates and indexes the given specialists. It returns a
// *core.ConfigurationError if any specialist references a tool, guardrail or
// handoff target that is not registered. The graph may contain cycles; the
// turn executor bounds handoffs per turn to guarantee termination.
func NewRegistry(specialists []*Specialist, known KnownNames) (*Registry, error) {
	tools := toSet(known.Tools)
	guardrails := toSet(known.Guardrails)

	r := &Registry{specialists: make(map[string]*Specialist, len(specialists))}
	for _, s := range specialists {
		r.specialists[s.Name] = s
		r.order = append(r.order, s.Name)
	}

	for _, s := range specialists {
		for _, t := range s.Tools {
			if !tools[t] {
				return nil, &core.ConfigurationError{Specialist: s.Name, Kind: "tool", Ref: t}
			}
		}
		for _, g := range s.Guardrails {
			if !guardrails[g] {
				return nil, &core.ConfigurationError{Specialist: s.Name, Kind: "guardrail", Ref: g}
			}
		}
		for _, h := range s.Handoffs {
			if _, ok := r.specialists[h]; !ok {
				return nil, &core.ConfigurationError{Specialist: s.Name, Kind: "handoff", Ref: h}
			}
		}
	}

	return r, nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Describe returns the specialist with the given name.
func (r *Registry) Describe(name string) (*Specialist, bool) {
	s, ok := r.specialists[name]
	return s, ok
}

// AllowedTargets returns the specialists the named one may hand off to, in
// declaration order. Unknown names yield an empty set.
func (r *Registry) AllowedTargets(name string) []*Specialist {
	s, ok := r.specialists[name]
	if !ok {
		return nil
	}
	targets := make([]*Specialist, 0, len(s.Handoffs))
	for _, h := range s.Handoffs {
		targets = append(targets, r.specialists[h])
	}
	return targets
}

// CanHandoff reports whether the edge from → to exists in the handoff graph.
func (r *Registry) CanHandoff(from, to string) bool {
	s, ok := r.specialists[from]
	if !ok {
		return false
	}
	for _, h := range s.Handoffs {
		if h == to {
			return true
		}
	}
	return false
}

// Names returns specialist names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Views returns the snapshot representation of every specialist, in
// registration order.
func (r *Registry) Views() []core.SpecialistView {
	views := make([]core.SpecialistView, 0, len(r.order))
	for _, name := range r.order {
		s := r.specialists[name]
		views = append(views, core.SpecialistView{
			Name:           s.Name,
			Description:    s.Description,
			HandoffTargets: append([]string(nil), s.Handoffs...),
			Tools:          append([]string(nil), s.Tools...),
		})
	}
	return views
}
