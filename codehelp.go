// Package codehelp provides a high-level façade over the session engine and
// the copilot roster. Most applications interact with this package by:
//  1. Creating a Copilot via New() (optionally supplying a provider invoker)
//  2. Bootstrapping sessions and submitting turns
//  3. Subscribing to live state for streaming UIs
//
// The façade delegates orchestration to engine.Engine while keeping setup
// concise. The default invoker is the scripted demo one; production
// deployments supply a provider adapter from model/anthropic or model/openai
// and a structured logger.
package codehelp

import (
	"context"

	"github.com/TejasriPacharu/code-help/copilot"
	"github.com/TejasriPacharu/code-help/core"
	"github.com/TejasriPacharu/code-help/engine"
	"github.com/TejasriPacharu/code-help/logging"
	"github.com/TejasriPacharu/code-help/model"
	"github.com/TejasriPacharu/code-help/publish"
)

// Options configures the Copilot instance.
type Options struct {
	// Invoker produces specialist decisions. Defaults to the scripted demo
	// invoker, which needs no credentials.
	Invoker model.Invoker

	// Logger defaults to NoOp.
	Logger logging.Logger

	// MaxToolRounds and MaxHandoffs bound one turn's execution.
	MaxToolRounds int
	MaxHandoffs   int

	// RejectWhenBusy rejects concurrent turns on one session instead of
	// queueing them.
	RejectWhenBusy bool
}

// WithInvoker sets the provider adapter used for specialist turns.
func WithInvoker(inv model.Invoker) func(o *Options) {
	return func(o *Options) { o.Invoker = inv }
}

// WithLogger sets the logger used across the engine and publisher.
func WithLogger(logger logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = logger }
}

// Copilot aggregates the validated roster and the engine behind the four
// operations a transport layer needs.
type Copilot struct {
	engine *engine.Engine
}

// New wires the copilot roster, tools and guardrails into an engine. It
// returns an error only for an invalid roster, which is a programming error
// caught in tests.
func New(optFns ...func(o *Options)) (*Copilot, error) {
	opts := Options{
		Invoker:       model.NewScriptedInvoker(),
		Logger:        logging.NoOpLogger{},
		MaxToolRounds: engine.DefaultMaxToolRounds,
		MaxHandoffs:   engine.DefaultMaxHandoffs,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	registry, err := copilot.Registry()
	if err != nil {
		return nil, err
	}

	engineOpts := []func(o *engine.Options){
		engine.WithLogger(opts.Logger),
		engine.WithEntry(copilot.EntrySpecialist),
		engine.WithLimits(opts.MaxToolRounds, opts.MaxHandoffs),
		engine.WithPublisher(publish.NewPublisher(func(o *publish.Options) {
			o.Logger = opts.Logger
		})),
	}
	if opts.RejectWhenBusy {
		engineOpts = append(engineOpts, engine.WithRejectWhenBusy())
	}

	e := engine.New(registry, copilot.Tools(), copilot.Guardrails(), opts.Invoker, engineOpts...)
	return &Copilot{engine: e}, nil
}

// Engine exposes the underlying engine for transport layers.
func (c *Copilot) Engine() *engine.Engine { return c.engine }

// Bootstrap creates a new session and returns its initial snapshot.
func (c *Copilot) Bootstrap() core.Snapshot { return c.engine.Bootstrap() }

// SubmitTurn drives one user turn to completion.
func (c *Copilot) SubmitTurn(ctx context.Context, sessionID, text string) (core.Snapshot, error) {
	return c.engine.SubmitTurn(ctx, sessionID, text)
}

// Snapshot returns the session's current full state.
func (c *Copilot) Snapshot(sessionID string) (core.Snapshot, error) {
	return c.engine.Snapshot(sessionID)
}

// Subscribe attaches a live state feed to the session.
func (c *Copilot) Subscribe(sessionID string) (*publish.Subscription, error) {
	return c.engine.Subscribe(sessionID)
}

// Reset discards the session's state and issues a fresh one.
func (c *Copilot) Reset(sessionID string) (core.Snapshot, error) {
	return c.engine.Reset(sessionID)
}
