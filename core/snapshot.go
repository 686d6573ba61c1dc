package core

// SpecialistView is the static description of a specialist included in
// snapshots so clients can render the handoff graph without another lookup.
type SpecialistView struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	HandoffTargets []string `json:"handoff_targets"`
	Tools          []string `json:"tools"`
}

// Snapshot is the state shape delivered to subscribers. The initial delivery
// carries the full event log in Events; subsequent deliveries carry only
// DeltaEvents (events since the subscriber's last delivered sequence) plus
// the current active specialist and context. Concatenating the initial
// snapshot's events with all delta events reproduces the full log.
type Snapshot struct {
	SessionID        string            `json:"session_id"`
	ActiveSpecialist string            `json:"active_specialist"`
	Context          map[string]any    `json:"context"`
	Agents           []SpecialistView  `json:"agents,omitempty"`
	Events           []Event           `json:"events,omitempty"`
	GuardrailHistory []GuardrailRecord `json:"guardrail_history,omitempty"`
	DeltaEvents      []Event           `json:"delta_events,omitempty"`
}

// LastSeq returns the highest sequence number carried by the snapshot, taking
// whichever of Events or DeltaEvents is populated. Returns 0 for an empty
// snapshot.
func (s Snapshot) LastSeq() int64 {
	if n := len(s.DeltaEvents); n > 0 {
		return s.DeltaEvents[n-1].Seq
	}
	if n := len(s.Events); n > 0 {
		return s.Events[n-1].Seq
	}
	return 0
}
