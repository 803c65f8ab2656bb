package engine

import (
	"context"
	"time"

	"github.com/ChamsBouzaiene/codeaudit/internal/audit"
)

// RunState is the lifecycle of an audit run. Running is the only
// non-terminal state.
type RunState string

const (
	StateRunning   RunState = "running"
	StateFinished  RunState = "finished"  // model called finish_analysis
	StateCapped    RunState = "capped"    // iteration budget exhausted; partial result is valid
	StateFailed    RunState = "failed"    // transport failure; partial result is incomplete
	StateCancelled RunState = "cancelled" // caller cancelled between iterations
)

// Terminal reports whether the state ends the run.
func (s RunState) Terminal() bool {
	return s != StateRunning
}

// Session is the complete state of one audit run: the conversation history,
// the issues collected so far, and the run limits. It is created per run,
// owned exclusively by the strategy driving it, and holds no global state.
type Session struct {
	RepoRoot           string
	History            []ChatMessage
	Issues             *audit.Collector
	Iteration          int
	MaxIterations      int
	MaxContextMessages int
	RequestTimeout     time.Duration
	Model              string
	Totals             Usage

	// LastToolCall is kept for diagnostics on fatal paths.
	LastToolCall string
}

// SessionParams are the run limits supplied by configuration.
type SessionParams struct {
	RepoRoot           string
	Model              string
	MaxIterations      int
	MaxContextMessages int
	RequestTimeout     time.Duration
}

// NewSession builds a session around a fresh or caller-supplied collector.
func NewSession(params SessionParams, issues *audit.Collector) *Session {
	if issues == nil {
		issues = audit.NewCollector()
	}
	return &Session{
		RepoRoot:           params.RepoRoot,
		Issues:             issues,
		MaxIterations:      params.MaxIterations,
		MaxContextMessages: params.MaxContextMessages,
		RequestTimeout:     params.RequestTimeout,
		Model:              params.Model,
	}
}

// Append adds a batch of messages and immediately re-applies the context
// budget. Appending never fails; the budget is enforced by evicting old
// rounds, not by rejecting new messages.
func (s *Session) Append(msgs ...ChatMessage) {
	s.History = append(s.History, msgs...)
	s.History = PruneHistory(s.History, s.MaxContextMessages)
}

// Result is the outcome snapshot a strategy hands back to the caller.
type Result struct {
	State      RunState
	Issues     []audit.Issue
	Iterations int
	Messages   int
	Usage      Usage

	// LastToolCall names the most recent dispatched tool, for diagnosing
	// failed runs.
	LastToolCall string
}

// Incomplete reports whether the snapshot may be missing findings.
func (r Result) Incomplete() bool {
	return r.State == StateFailed || r.State == StateCancelled || r.State == StateCapped
}

// Strategy runs one audit over a session and returns the issue snapshot.
// Implementations: the agentic tool-calling loop and the single-call
// analyzer. Both share the scanner and the issue collector.
type Strategy interface {
	Run(ctx context.Context, sess *Session) (Result, error)
}

func (s *Session) result(state RunState) Result {
	return Result{
		State:        state,
		Issues:       s.Issues.Snapshot(),
		Iterations:   s.Iteration,
		Messages:     len(s.History),
		Usage:        s.Totals,
		LastToolCall: s.LastToolCall,
	}
}
