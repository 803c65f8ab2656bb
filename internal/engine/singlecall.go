package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ChamsBouzaiene/codeaudit/internal/audit"
	"github.com/ChamsBouzaiene/codeaudit/internal/scanner"
)

// SingleCallAuditor audits without tool calling: the scanner's file
// selection is embedded into one prompt, the model answers once, and the
// answer is parsed as one JSON issue per line. Useful for models without
// reliable tool support.
type SingleCallAuditor struct {
	LLM          LLMClient
	Scanner      *scanner.Scanner
	SystemPrompt string
	Opts         ChatOptions
	Verbose      bool
}

// Run performs the one-shot analysis. The session's collector receives the
// parsed issues, deduplicated the same way the agentic loop deduplicates.
func (a *SingleCallAuditor) Run(ctx context.Context, sess *Session) (Result, error) {
	files, err := a.Scanner.CollectFiles()
	if err != nil {
		return sess.result(StateFailed), fmt.Errorf("scanning repository: %w", err)
	}
	if len(files) == 0 {
		return sess.result(StateFinished), nil
	}

	if a.Verbose {
		log.Printf("📦 packing %d files into a single request", len(files))
	}

	sess.Append(
		ChatMessage{Role: RoleSystem, Content: a.SystemPrompt},
		ChatMessage{Role: RoleUser, Content: a.buildPrompt(files)},
	)

	reqCtx := ctx
	if sess.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, sess.RequestTimeout)
		defer cancel()
	}

	resp, err := a.LLM.Chat(reqCtx, sess.Model, sess.History, nil, a.Opts)
	if err != nil {
		if !IsTransportError(err) {
			err = NewTransportError(err, 0, 0)
		}
		return sess.result(StateFailed), err
	}
	sess.Totals.Add(resp.Usage)
	sess.Append(ChatMessage{Role: RoleAssistant, Content: resp.Assistant})
	sess.Iteration = 1

	for _, issue := range ParseIssueLines(resp.Assistant) {
		sess.Issues.Add(issue)
	}
	return sess.result(StateFinished), nil
}

func (a *SingleCallAuditor) buildPrompt(files []scanner.File) string {
	var b strings.Builder
	b.WriteString("Audit the following files and report every issue you find, one JSON object per line.\n")
	for _, f := range files {
		content, err := os.ReadFile(filepath.Join(a.Scanner.Root(), filepath.FromSlash(f.Path)))
		if err != nil || !utf8.Valid(content) {
			continue
		}
		fmt.Fprintf(&b, "\n=== FILE: %s ===\n%s\n", f.Path, content)
	}
	return b.String()
}

// issueLine is the wire shape of one reported issue in single-call output.
type issueLine struct {
	FilePath    string `json:"file_path"`
	LineNumber  int    `json:"line_number"`
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

// ParseIssueLines extracts issues from model output containing one JSON
// object per line, tolerating code fences and surrounding prose. Lines
// that fail to parse or validate are skipped, not fatal.
func ParseIssueLines(output string) []audit.Issue {
	var issues []audit.Issue
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "```json")
		line = strings.TrimPrefix(line, "```")
		line = strings.TrimSuffix(line, "```")
		if !strings.HasPrefix(line, "{") {
			continue
		}

		var raw issueLine
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			continue
		}
		severity, err := audit.ParseSeverity(raw.Severity)
		if err != nil {
			continue
		}
		if raw.FilePath == "" || raw.Title == "" {
			continue
		}
		issues = append(issues, audit.Issue{
			FilePath:    raw.FilePath,
			LineNumber:  raw.LineNumber,
			Severity:    severity,
			Category:    raw.Category,
			Title:       raw.Title,
			Description: raw.Description,
			Suggestion:  raw.Suggestion,
		})
	}
	return issues
}
