package engine

import (
	"strings"
	"testing"

	"github.com/ChamsBouzaiene/codeaudit/internal/audit"
)

func TestParseIssueLines(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   int
	}{
		{
			name:   "plain json lines",
			output: `{"file_path":"a.go","line_number":3,"severity":"high","category":"bug","title":"nil deref","description":"d"}`,
			want:   1,
		},
		{
			name: "fenced output with prose",
			output: "Here are the issues:\n```json\n" +
				`{"file_path":"a.go","line_number":3,"severity":"low","category":"style","title":"x","description":"d"}` +
				"\n```\nDone.",
			want: 1,
		},
		{
			name: "invalid severity skipped",
			output: `{"file_path":"a.go","severity":"huge","category":"bug","title":"x","description":"d"}
{"file_path":"b.go","severity":"medium","category":"bug","title":"y","description":"d"}`,
			want: 1,
		},
		{
			name:   "malformed json skipped",
			output: "{not json}\nnothing here",
			want:   0,
		},
		{
			name:   "missing required fields skipped",
			output: `{"severity":"low","category":"style","description":"d"}`,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIssueLines(tt.output)
			if len(got) != tt.want {
				t.Errorf("parsed %d issues, want %d (output: %q)", len(got), tt.want, tt.output)
			}
		})
	}
}

func TestParseIssueLinesFields(t *testing.T) {
	out := ParseIssueLines(`{"file_path":"api.js","line_number":7,"severity":"critical","category":"security","title":"SQL Injection","description":"interpolated query","suggestion":"use placeholders"}`)
	if len(out) != 1 {
		t.Fatalf("want 1 issue, got %d", len(out))
	}
	issue := out[0]
	if issue.FilePath != "api.js" || issue.LineNumber != 7 {
		t.Errorf("location = %s, want api.js:7", issue.Location())
	}
	if issue.Severity != audit.SeverityCritical {
		t.Errorf("severity = %s, want critical", issue.Severity)
	}
	if issue.Suggestion != "use placeholders" {
		t.Errorf("suggestion = %q", issue.Suggestion)
	}
}

func TestTruncateOutput(t *testing.T) {
	short := "hello"
	if got := truncateOutput(short); got != short {
		t.Errorf("short output modified: %q", got)
	}

	long := strings.Repeat("x", maxToolOutputBytes+100)
	got := truncateOutput(long)
	if len(got) >= len(long) {
		t.Error("long output not truncated")
	}
	if !strings.Contains(got, "output truncated") {
		t.Error("truncation marker missing")
	}
}
