package core

import "time"

// GuardrailRecord is the immutable outcome of one guardrail check. Records
// are appended to a thread's guardrail history and never mutated.
type GuardrailRecord struct {
	ID        string    `json:"id"`
	Guardrail string    `json:"guardrail"`
	Input     string    `json:"input"`
	Passed    bool      `json:"passed"`
	Reasoning string    `json:"reasoning"`
	Timestamp time.Time `json:"timestamp"`
}

// NewGuardrailRecord constructs a record for a completed check.
func NewGuardrailRecord(guardrail, input string, passed bool, reasoning string) GuardrailRecord {
	return GuardrailRecord{
		ID:        NewID(),
		Guardrail: guardrail,
		Input:     input,
		Passed:    passed,
		Reasoning: reasoning,
		Timestamp: time.Now().UTC(),
	}
}
