// Package logging provides a minimal logging interface and adapters for code-help.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn,
// Error) that the engine, tools and service layer use for observability. The
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(logging.LogLevelInfo, "json")
//	eng := engine.New(reg, tools, invoker, engine.WithLogger(logger))
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
