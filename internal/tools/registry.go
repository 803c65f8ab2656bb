// Package tools assembles the fixed tool set exposed to the auditing model.
package tools

import (
	"github.com/ChamsBouzaiene/codeaudit/internal/audit"
	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
	"github.com/ChamsBouzaiene/codeaudit/internal/scanner"
	"github.com/ChamsBouzaiene/codeaudit/internal/tools/filesystem"
	"github.com/ChamsBouzaiene/codeaudit/internal/tools/reporting"
	"github.com/ChamsBouzaiene/codeaudit/internal/tools/search"
)

// NewAuditRegistry builds the six audit tools around a shared scanner and
// issue collector. The set is closed; nothing is registered at runtime.
func NewAuditRegistry(sc *scanner.Scanner, col *audit.Collector) engine.ToolRegistry {
	reg := engine.ToolRegistry{}
	for _, t := range []engine.Tool{
		filesystem.NewListFilesTool(sc),
		filesystem.NewReadFileTool(sc),
		filesystem.NewFileInfoTool(sc),
		search.NewSearchCodeTool(sc),
		reporting.NewReportIssueTool(col),
		reporting.NewFinishAnalysisTool(),
	} {
		reg[t.Name] = t
	}
	return reg
}
