// Package agent defines the static description of specialists and the
// registry that validates them at startup. A Specialist is an immutable
// capability unit: a name, purpose, the tools it may call, the specialists it
// may hand off to, and the guardrails that gate it. The registry checks every
// reference once at construction so the turn hot path never hits a lookup
// failure.
package agent
