package reporting

import (
	"context"
	"fmt"

	"github.com/ChamsBouzaiene/codeaudit/internal/audit"
	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
)

// NewReportIssueTool records one finding into the collector. Reporting the
// same (file, line, category, title) again is acknowledged but not stored
// twice, so a repetitive model cannot inflate the result.
func NewReportIssueTool(col *audit.Collector) engine.Tool {
	return engine.Tool{
		Name: "report_issue",
		Description: "Records a single code issue. Call once per distinct finding; " +
			"duplicates are ignored.",
		SchemaJSON: `{"type":"object","properties":{
			"file_path":{"type":"string","description":"File the issue is in, relative to the repository root"},
			"line_number":{"type":"integer","minimum":1,"description":"1-based line number; omit for file-level issues"},
			"severity":{"type":"string","description":"One of: low, medium, high, critical"},
			"category":{"type":"string","description":"Short category such as security, bug, performance, style"},
			"title":{"type":"string","description":"One-line summary of the issue"},
			"description":{"type":"string","description":"What is wrong and why it matters"},
			"suggestion":{"type":"string","description":"Optional: how to fix it"}
		},"required":["file_path","severity","category","title","description"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			issue, err := issueFromArgs(args)
			if err != nil {
				return "", err
			}
			if !col.Add(issue) {
				return fmt.Sprintf("Issue already recorded: %s — %s", issue.Location(), issue.Title), nil
			}
			return fmt.Sprintf("Issue recorded: %s %s — %s", issue.Severity.Emoji(), issue.Location(), issue.Title), nil
		},
	}
}

func issueFromArgs(args map[string]any) (audit.Issue, error) {
	str := func(key string) string {
		v, _ := args[key].(string)
		return v
	}

	for _, required := range []string{"file_path", "severity", "category", "title", "description"} {
		if str(required) == "" {
			return audit.Issue{}, fmt.Errorf("missing required field: %s", required)
		}
	}

	severity, err := audit.ParseSeverity(str("severity"))
	if err != nil {
		return audit.Issue{}, err
	}

	line := 0
	if v, ok := args["line_number"].(float64); ok {
		if v < 1 {
			return audit.Issue{}, fmt.Errorf("line_number must be positive, got %v", v)
		}
		line = int(v)
	}

	return audit.Issue{
		FilePath:    str("file_path"),
		LineNumber:  line,
		Severity:    severity,
		Category:    str("category"),
		Title:       str("title"),
		Description: str("description"),
		Suggestion:  str("suggestion"),
	}, nil
}
