package audit

import (
	"fmt"
	"strings"
)

// Severity is the closed set of issue severities, ordered from least to
// most serious. Values outside the set are rejected at the tool boundary.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity validates a raw severity string (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow, nil
	case SeverityMedium:
		return SeverityMedium, nil
	case SeverityHigh:
		return SeverityHigh, nil
	case SeverityCritical:
		return SeverityCritical, nil
	default:
		return "", fmt.Errorf("invalid severity %q (expected low, medium, high or critical)", s)
	}
}

// Rank returns the ordering of the severity: low < medium < high < critical.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// Emoji returns the marker used in reports and log lines.
func (s Severity) Emoji() string {
	switch s {
	case SeverityLow:
		return "🟢"
	case SeverityMedium:
		return "🟡"
	case SeverityHigh:
		return "🟠"
	case SeverityCritical:
		return "🔴"
	default:
		return "⚪"
	}
}

// Severities lists all valid severities in ascending order.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Issue is a single finding reported by the model.
// LineNumber is 0 when the issue is file-level rather than line-level.
type Issue struct {
	FilePath    string   `json:"file_path"`
	LineNumber  int      `json:"line_number,omitempty"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// issueKey is the identity of an issue for deduplication. Comparison is
// exact and case-sensitive.
type issueKey struct {
	filePath   string
	lineNumber int
	category   string
	title      string
}

func (i Issue) key() issueKey {
	return issueKey{
		filePath:   i.FilePath,
		lineNumber: i.LineNumber,
		category:   i.Category,
		title:      i.Title,
	}
}

// Location renders "path:line" or just "path" for file-level issues.
func (i Issue) Location() string {
	if i.LineNumber > 0 {
		return fmt.Sprintf("%s:%d", i.FilePath, i.LineNumber)
	}
	return i.FilePath
}
