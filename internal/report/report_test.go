package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ChamsBouzaiene/codeaudit/internal/audit"
	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
)

func testMeta(state engine.RunState) Metadata {
	return Metadata{
		RepoPath:     "/tmp/repo",
		Provider:     "ollama",
		Model:        "qwen2.5-coder:7b",
		GeneratedAt:  time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		State:        state,
		Iterations:   7,
		FilesScanned: 3,
		TotalBytes:   2048,
		Languages:    map[string]int{"Go": 2, "JavaScript": 1},
	}
}

func testIssues() []audit.Issue {
	return []audit.Issue{
		{FilePath: "api.js", LineNumber: 7, Severity: audit.SeverityCritical, Category: "security",
			Title: "SQL Injection", Description: "interpolated query", Suggestion: "use placeholders"},
		{FilePath: "main.go", LineNumber: 12, Severity: audit.SeverityLow, Category: "style",
			Title: "unused import", Description: "fmt is imported but not used"},
	}
}

func TestMarkdownLayout(t *testing.T) {
	r := New(testMeta(engine.StateFinished), testIssues(), audit.SeverityLow)
	md := r.Markdown()

	for _, want := range []string{
		"# Code Audit Report",
		"## Summary",
		"🔴 critical | 1",
		"## Issues",
		"### `api.js`",
		"SQL Injection",
		"*Line 7 — security*",
		"**Suggestion:** use placeholders",
		"- Go: 2 files",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "⚠️ The iteration budget") {
		t.Error("finished run must not carry the incomplete banner")
	}
}

func TestMarkdownIncompleteBanner(t *testing.T) {
	tests := []struct {
		state engine.RunState
		want  string
	}{
		{engine.StateCapped, "iteration budget"},
		{engine.StateFailed, "transport failure"},
		{engine.StateCancelled, "cancelled"},
	}
	for _, tt := range tests {
		md := New(testMeta(tt.state), nil, audit.SeverityLow).Markdown()
		if !strings.Contains(md, tt.want) {
			t.Errorf("state %s: banner missing %q", tt.state, tt.want)
		}
	}
}

func TestMinSeverityFilter(t *testing.T) {
	r := New(testMeta(engine.StateFinished), testIssues(), audit.SeverityHigh)
	if len(r.Issues) != 1 {
		t.Fatalf("kept %d issues, want 1", len(r.Issues))
	}
	if r.Issues[0].Severity != audit.SeverityCritical {
		t.Errorf("kept %s, want critical", r.Issues[0].Severity)
	}
}

func TestMarkdownNoIssues(t *testing.T) {
	md := New(testMeta(engine.StateFinished), nil, audit.SeverityLow).Markdown()
	if !strings.Contains(md, "No issues found") {
		t.Error("clean run should say so")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r := New(testMeta(engine.StateCapped), testIssues(), audit.SeverityLow)
	data, err := r.JSON()
	if err != nil {
		t.Fatal(err)
	}

	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Meta.State != engine.StateCapped {
		t.Errorf("state = %s", decoded.Meta.State)
	}
	if len(decoded.Issues) != 2 {
		t.Fatalf("issues = %d, want 2", len(decoded.Issues))
	}
	if decoded.Issues[0].FilePath == "" || decoded.Issues[0].Severity == "" {
		t.Errorf("issue fields lost: %+v", decoded.Issues[0])
	}
}
