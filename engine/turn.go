package engine

import (
	"context"
	"errors"

	"github.com/TejasriPacharu/code-help/core"
	"github.com/TejasriPacharu/code-help/model"
)

// refusalText is the user-visible reply for a failed pre-check.
const refusalText = "Sorry, I can only help with software engineering questions about your project."

// abortedText is the generic user-visible reply for a turn that hit an
// execution limit, an invalid handoff or a generation failure.
const abortedText = "Something went wrong while handling that request. The session is still usable; please try again."

// runTurn executes the turn state machine against the thread. The caller
// holds the session's busy lock, so this goroutine is the thread's only
// writer. Every append is followed by a publish, and context merges are
// bundled with their triggering event, so subscribers observe each step
// exactly once and in order.
func (e *Engine) runTurn(ctx context.Context, thread *core.Thread, text string) error {
	thread.Log().Append(core.NewUserMessageEvent(text))
	e.publisher.Publish(thread.ID)

	active := thread.ActiveSpecialist()
	e.logger.Debug("engine.turn.start", "session_id", thread.ID, "specialist", active)

	// PRECHECK: the active specialist's guardrails, in registration order,
	// fail-fast. The specialist is never invoked after a failed check.
	if failed := e.precheck(thread, active, text); failed != nil {
		e.logger.Info("engine.turn.refused",
			"session_id", thread.ID, "guardrail", failed.Guardrail, "specialist", active)
		thread.Log().Append(core.NewRefusalEvent(active, refusalText))
		thread.Log().Append(core.NewAbortedEvent(active, core.AbortGuardrail, failed.Reasoning))
		e.publisher.Publish(thread.ID)
		return nil
	}

	toolRounds := 0
	handoffs := 0

	for {
		if err := ctx.Err(); err != nil {
			return e.abort(thread, active, core.AbortCancelled, err.Error(), err)
		}

		spec, ok := e.registry.Describe(active)
		if !ok {
			// Unreachable with a validated registry; treat as generation failure.
			genErr := &core.GenerationError{Specialist: active, Err: errors.New("unknown specialist")}
			return e.abort(thread, active, core.AbortGeneration, genErr.Error(), genErr)
		}

		// DISPATCH: the specialist decides on final text, tool calls or a
		// handoff.
		req := model.Request{
			Specialist: active,
			Messages:   historyFromLog(thread),
			Tools:      e.tools.Definitions(spec.Tools),
			Targets:    append([]string(nil), spec.Handoffs...),
		}
		if spec.Instructions != nil {
			req.Instructions = spec.Instructions(thread.Context())
		}

		decision, err := e.invoker.Invoke(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return e.abort(thread, active, core.AbortCancelled, ctx.Err().Error(), ctx.Err())
			}
			genErr := &core.GenerationError{Specialist: active, Err: err}
			return e.abort(thread, active, core.AbortGeneration, err.Error(), genErr)
		}

		switch {
		case decision.Handoff != "":
			// HANDOFF: validate the edge, record it, switch specialists.
			target := decision.Handoff
			if !e.registry.CanHandoff(active, target) {
				handErr := &core.InvalidHandoffError{From: active, Target: target}
				return e.abort(thread, active, core.AbortInvalidHandoff, handErr.Error(), handErr)
			}
			handoffs++
			if handoffs > e.maxHandoffs {
				limErr := &core.ExecutionLimitError{Limit: "handoffs", Max: e.maxHandoffs}
				return e.abort(thread, active, core.AbortExecutionLimit, limErr.Error(), limErr)
			}

			thread.RecordHandoff(active, target)
			if next, ok := e.registry.Describe(target); ok && next.OnHandoff != nil {
				if patch := next.OnHandoff(thread.Context()); patch != nil {
					thread.ApplyPatch(target, patch)
				}
			}
			e.publisher.Publish(thread.ID)

			e.logger.Debug("engine.turn.handoff", "session_id", thread.ID, "from", active, "to", target)
			active = target

		case len(decision.ToolCalls) > 0:
			// TOOL_LOOP: run every requested call, then re-dispatch with the
			// outputs in history.
			toolRounds++
			if toolRounds > e.maxToolRounds {
				limErr := &core.ExecutionLimitError{Limit: "tool_rounds", Max: e.maxToolRounds}
				return e.abort(thread, active, core.AbortExecutionLimit, limErr.Error(), limErr)
			}
			if err := e.runToolCalls(ctx, thread, active, decision.ToolCalls); err != nil {
				return e.abort(thread, active, core.AbortCancelled, err.Error(), err)
			}

		default:
			// RESPONSE: final text attributed to whichever specialist is
			// active now.
			if decision.Refusal {
				thread.Log().Append(core.NewRefusalEvent(active, decision.Text))
			} else {
				thread.Log().Append(core.NewSpecialistMessageEvent(active, decision.Text))
			}
			e.publisher.Publish(thread.ID)
			e.logger.Debug("engine.turn.done",
				"session_id", thread.ID, "specialist", active, "tool_rounds", toolRounds, "handoffs", handoffs)
			return nil
		}
	}
}

// precheck runs the specialist's guardrails and records every verdict.
// Returns the failing record, or nil when all pass.
func (e *Engine) precheck(thread *core.Thread, active, text string) *core.GuardrailRecord {
	spec, ok := e.registry.Describe(active)
	if !ok {
		return nil
	}
	records, failed := e.guardrails.Run(spec.Guardrails, text, thread.Context())
	for _, rec := range records {
		thread.AddGuardrailRecord(rec)
	}
	return failed
}

// runToolCalls executes one round of tool calls in invocation order. Tool
// failures are recorded as tool_output events carrying the error, not turn
// aborts; the specialist reacts on re-dispatch. Only cancellation stops the
// round early.
func (e *Engine) runToolCalls(ctx context.Context, thread *core.Thread, active string, calls []model.ToolCall) error {
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return err
		}

		callID := call.ID
		if callID == "" {
			callID = core.NewID()
		}
		thread.Log().Append(core.NewToolCallEvent(active, callID, call.Name, call.Arguments))
		e.publisher.Publish(thread.ID)

		out, err := e.tools.Execute(ctx, call.Name, call.Arguments, thread.Context())
		if err != nil {
			e.logger.Warn("engine.tool.failed",
				"session_id", thread.ID, "tool", call.Name, "error", err.Error())
			thread.Log().Append(core.NewToolOutputEvent(active, callID, call.Name, "", err))
			e.publisher.Publish(thread.ID)
			continue
		}

		thread.Log().Append(core.NewToolOutputEvent(active, callID, call.Name, out.Text, nil))
		if len(out.Patch) > 0 {
			thread.ApplyPatch(active, out.Patch)
		}
		e.publisher.Publish(thread.ID)

		e.logger.Debug("engine.tool.executed", "session_id", thread.ID, "tool", call.Name)
	}
	return nil
}

// abort terminates the turn with a generic user-visible failure message and
// an abort marker, leaving a consistent trail. Partial tool results already
// appended stay in the log; they are valid historical facts.
func (e *Engine) abort(thread *core.Thread, active, cause, reason string, err error) error {
	e.logger.Warn("engine.turn.aborted",
		"session_id", thread.ID, "specialist", active, "cause", cause, "reason", reason)
	thread.Log().Append(core.NewSpecialistMessageEvent(active, abortedText))
	thread.Log().Append(core.NewAbortedEvent(active, cause, reason))
	e.publisher.Publish(thread.ID)
	return err
}

// historyFromLog rebuilds the provider-facing conversation from the event
// log. Handoff, context_update and aborted events are bookkeeping, not
// conversation, and are skipped.
func historyFromLog(thread *core.Thread) []model.Message {
	events := thread.Log().All()
	out := make([]model.Message, 0, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case core.KindMessage:
			if ev.Message == nil {
				continue
			}
			role := "assistant"
			if ev.Message.Role == "user" {
				role = "user"
			}
			out = append(out, model.Message{Role: role, Text: ev.Message.Text})
		case core.KindToolCall:
			if ev.ToolCall == nil {
				continue
			}
			out = append(out, model.Message{
				Role: "assistant",
				ToolCalls: []model.ToolCall{{
					ID:        ev.ToolCall.CallID,
					Name:      ev.ToolCall.Tool,
					Arguments: ev.ToolCall.Arguments,
				}},
			})
		case core.KindToolOutput:
			if ev.ToolOutput == nil {
				continue
			}
			result := ev.ToolOutput.Result
			isErr := false
			if ev.ToolOutput.Error != "" {
				result = ev.ToolOutput.Error
				isErr = true
			}
			out = append(out, model.Message{
				Role: "tool",
				ToolResult: &model.ToolResult{
					CallID:  ev.ToolOutput.CallID,
					Name:    ev.ToolOutput.Tool,
					Result:  result,
					IsError: isErr,
				},
			})
		}
	}
	return out
}
