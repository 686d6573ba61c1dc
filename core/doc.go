// Package core provides the foundational domain types used by code-help. It
// defines the core abstractions for:
//
//   - Events (immutable, strictly ordered records of everything that happened)
//   - The per-session EventLog with gap-free sequence assignment
//   - The shared Context record specialists and tools read and merge into
//   - Threads (stateful conversational containers owned by the orchestrator)
//   - Guardrail check records
//   - Snapshot and delta shapes delivered to state subscribers
//   - The error taxonomy shared across packages
//
// The package intentionally keeps implementation concerns (specialist
// invocation, tool execution, orchestration) out of scope, exposing small
// types so those layers can evolve without touching the domain contracts.
package core
