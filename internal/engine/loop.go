package engine

import (
	"context"
	"log"
)

const (
	// FinishToolName is the tool call that ends an agentic run cleanly.
	FinishToolName = "finish_analysis"

	// readToolName is tracked so the loop can notice a model that read
	// files but reported nothing before finishing.
	readToolName = "read_file"

	// maxTextOnlyTurns bounds how often the model may answer in prose
	// without calling a tool before the run is abandoned as finished.
	maxTextOnlyTurns = 5
)

const nudgeMessage = "Please use the provided tools to continue the audit. " +
	"Call report_issue for each finding and finish_analysis when you are done."

const finishGuardMessage = "No issues have been recorded yet, but files were read. " +
	"If the code is genuinely clean, call finish_analysis again to confirm. " +
	"Otherwise report your findings with report_issue first."

// AgentAuditor drives the tool-calling audit loop. It owns no session
// state; everything mutable for a run lives on the Session it is given.
type AgentAuditor struct {
	LLM           LLMClient
	Tools         ToolRegistry
	SystemPrompt  string
	InitialPrompt string
	Opts          ChatOptions
	Verbose       bool
}

// Run executes the loop until the model finishes, the iteration budget is
// spent, the transport fails, or the caller cancels. Cancellation is only
// observed between iterations, never mid-tool. The returned Result is a
// valid partial snapshot in every terminal state; the error is non-nil
// only for transport failures.
func (a *AgentAuditor) Run(ctx context.Context, sess *Session) (Result, error) {
	sess.Append(
		ChatMessage{Role: RoleSystem, Content: a.SystemPrompt},
		ChatMessage{Role: RoleUser, Content: a.InitialPrompt},
	)

	schemas := a.Tools.Schemas()
	textOnlyTurns := 0
	filesRead := 0
	finishGuarded := false

	for {
		select {
		case <-ctx.Done():
			a.logf("🛑 audit cancelled at iteration %d", sess.Iteration)
			return sess.result(StateCancelled), nil
		default:
		}

		if sess.Iteration >= sess.MaxIterations {
			a.logf("⏳ iteration budget spent (%d); returning partial result", sess.MaxIterations)
			return sess.result(StateCapped), nil
		}

		resp, err := a.chat(ctx, sess, schemas)
		if err != nil {
			return sess.result(StateFailed), err
		}
		sess.Totals.Add(resp.Usage)

		if len(resp.ToolCalls) == 0 {
			sess.Append(ChatMessage{Role: RoleAssistant, Content: resp.Assistant})
			textOnlyTurns++
			if textOnlyTurns >= maxTextOnlyTurns {
				a.logf("⚠️  model stopped calling tools after %d prose turns; ending run", textOnlyTurns)
				return sess.result(StateFinished), nil
			}
			sess.Append(ChatMessage{Role: RoleUser, Content: nudgeMessage})
			sess.Iteration++
			continue
		}
		textOnlyTurns = 0

		sess.Append(ChatMessage{
			Role:      RoleAssistant,
			Content:   resp.Assistant,
			ToolCalls: resp.ToolCalls,
		})

		// Dispatch strictly in the order the model gave, one at a time.
		finished := false
		results := make([]ChatMessage, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			sess.LastToolCall = call.Name
			a.logf("🔧 %s", call.Name)

			if call.Name == FinishToolName {
				if filesRead > 0 && sess.Issues.Len() == 0 && !finishGuarded {
					finishGuarded = true
					results = append(results, ToolResult{ToolCallID: call.ID, Content: finishGuardMessage}.Message())
					continue
				}
				finished = true
				results = append(results, ToolResult{ToolCallID: call.ID, Content: "Analysis complete."}.Message())
				continue
			}

			res := DispatchToolCall(ctx, a.Tools, call)
			if call.Name == readToolName && !res.IsError {
				filesRead++
			}
			if res.IsError {
				a.logf("⚠️  %s failed: %s", call.Name, res.Content)
			}
			results = append(results, res.Message())
		}
		sess.Append(results...)
		sess.Iteration++

		if finished {
			a.logf("✅ model finished after %d iterations, %d issues", sess.Iteration, sess.Issues.Len())
			return sess.result(StateFinished), nil
		}
	}
}

func (a *AgentAuditor) chat(ctx context.Context, sess *Session, schemas []ToolSchema) (LLMResponse, error) {
	reqCtx := ctx
	if sess.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, sess.RequestTimeout)
		defer cancel()
	}

	resp, err := a.LLM.Chat(reqCtx, sess.Model, sess.History, schemas, a.Opts)
	if err != nil {
		if !IsTransportError(err) {
			err = NewTransportError(err, 0, 0)
		}
		return LLMResponse{}, err
	}
	return resp, nil
}

func (a *AgentAuditor) logf(format string, args ...any) {
	if a.Verbose {
		log.Printf(format, args...)
	}
}
