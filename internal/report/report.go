// Package report renders the final audit snapshot as Markdown or JSON.
package report

import (
	"encoding/json"
	"time"

	"github.com/ChamsBouzaiene/codeaudit/internal/audit"
	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
)

// Metadata describes the run that produced a report.
type Metadata struct {
	RepoPath     string          `json:"repo_path"`
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	GeneratedAt  time.Time       `json:"generated_at"`
	State        engine.RunState `json:"state"`
	Iterations   int             `json:"iterations"`
	FilesScanned int             `json:"files_scanned"`
	TotalBytes   int64           `json:"total_bytes"`
	Languages    map[string]int  `json:"languages,omitempty"`
}

// Report is the renderable audit result.
type Report struct {
	Meta   Metadata      `json:"metadata"`
	Issues []audit.Issue `json:"issues"`
}

// New builds a report, dropping issues below minSeverity.
func New(meta Metadata, issues []audit.Issue, minSeverity audit.Severity) *Report {
	kept := make([]audit.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Severity.Rank() >= minSeverity.Rank() {
			kept = append(kept, issue)
		}
	}
	audit.SortIssues(kept)
	return &Report{Meta: meta, Issues: kept}
}

// Incomplete reports whether the underlying run stopped before the model
// declared the analysis finished.
func (r *Report) Incomplete() bool {
	return r.Meta.State != engine.StateFinished
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
