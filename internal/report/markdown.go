package report

import (
	"fmt"
	"sort"
	"strings"

	units "github.com/docker/go-units"

	"github.com/ChamsBouzaiene/codeaudit/internal/audit"
	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
)

// Markdown renders the full report.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("# Code Audit Report\n\n")
	r.writeMetadata(&b)
	r.writeBanner(&b)
	r.writeSummary(&b)
	r.writeIssues(&b)
	r.writeHotspots(&b)
	r.writeLanguages(&b)

	fmt.Fprintf(&b, "\n---\n*Generated by codeaudit on %s*\n", r.Meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	return b.String()
}

func (r *Report) writeMetadata(b *strings.Builder) {
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(b, "| Repository | `%s` |\n", r.Meta.RepoPath)
	fmt.Fprintf(b, "| Model | %s (%s) |\n", r.Meta.Model, r.Meta.Provider)
	fmt.Fprintf(b, "| Files scanned | %d (%s) |\n", r.Meta.FilesScanned, units.HumanSize(float64(r.Meta.TotalBytes)))
	fmt.Fprintf(b, "| Iterations | %d |\n", r.Meta.Iterations)
	fmt.Fprintf(b, "| Run state | %s |\n\n", r.Meta.State)
}

func (r *Report) writeBanner(b *strings.Builder) {
	switch r.Meta.State {
	case engine.StateCapped:
		b.WriteString("> ⚠️ The iteration budget ran out before the model finished. Findings below are valid but may be incomplete.\n\n")
	case engine.StateFailed:
		b.WriteString("> ❌ The audit was interrupted by a transport failure. Findings below are partial.\n\n")
	case engine.StateCancelled:
		b.WriteString("> 🛑 The audit was cancelled. Findings below are partial.\n\n")
	}
}

func (r *Report) writeSummary(b *strings.Builder) {
	b.WriteString("## Summary\n\n")
	if len(r.Issues) == 0 {
		b.WriteString("No issues found. 🎉\n\n")
		return
	}

	summary := audit.Summarize(r.Issues)
	b.WriteString("| Severity | Count |\n|---|---|\n")
	severities := audit.Severities()
	for i := len(severities) - 1; i >= 0; i-- {
		sev := severities[i]
		if n := summary.BySeverity[sev]; n > 0 {
			fmt.Fprintf(b, "| %s %s | %d |\n", sev.Emoji(), sev, n)
		}
	}
	fmt.Fprintf(b, "| **Total** | **%d** |\n\n", summary.Total)

	if len(summary.ByCategory) > 0 {
		categories := make([]string, 0, len(summary.ByCategory))
		for cat := range summary.ByCategory {
			categories = append(categories, cat)
		}
		sort.Strings(categories)

		b.WriteString("| Category | Count |\n|---|---|\n")
		for _, cat := range categories {
			fmt.Fprintf(b, "| %s | %d |\n", cat, summary.ByCategory[cat])
		}
		b.WriteString("\n")
	}
}

func (r *Report) writeIssues(b *strings.Builder) {
	if len(r.Issues) == 0 {
		return
	}
	b.WriteString("## Issues\n\n")
	for _, group := range audit.GroupByFile(r.Issues) {
		fmt.Fprintf(b, "### `%s`\n\n", group.FilePath)
		for _, issue := range group.Issues {
			fmt.Fprintf(b, "#### %s [%s] %s\n\n", issue.Severity.Emoji(), strings.ToUpper(string(issue.Severity)), issue.Title)
			if issue.LineNumber > 0 {
				fmt.Fprintf(b, "*Line %d — %s*\n\n", issue.LineNumber, issue.Category)
			} else {
				fmt.Fprintf(b, "*%s*\n\n", issue.Category)
			}
			b.WriteString(issue.Description)
			b.WriteString("\n\n")
			if issue.Suggestion != "" {
				fmt.Fprintf(b, "**Suggestion:** %s\n\n", issue.Suggestion)
			}
		}
	}
}

func (r *Report) writeHotspots(b *strings.Builder) {
	top := audit.MostProblematicFiles(r.Issues, 5)
	if len(top) < 2 {
		return
	}
	b.WriteString("## Most affected files\n\n")
	for _, fc := range top {
		fmt.Fprintf(b, "- `%s` — %d issues\n", fc.FilePath, fc.Count)
	}
	b.WriteString("\n")
}

func (r *Report) writeLanguages(b *strings.Builder) {
	if len(r.Meta.Languages) == 0 {
		return
	}
	langs := make([]string, 0, len(r.Meta.Languages))
	for lang := range r.Meta.Languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	b.WriteString("## Languages\n\n")
	for _, lang := range langs {
		fmt.Fprintf(b, "- %s: %d files\n", lang, r.Meta.Languages[lang])
	}
	b.WriteString("\n")
}
