package reporting

import (
	"context"

	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
)

// NewFinishAnalysisTool signals the end of the audit. The loop intercepts
// the call by name; the Fn only exists so the registry stays uniform.
func NewFinishAnalysisTool() engine.Tool {
	return engine.Tool{
		Name:        engine.FinishToolName,
		Description: "Ends the audit. Call exactly once, after every finding has been reported.",
		SchemaJSON:  `{"type":"object","properties":{},"required":[]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return "Analysis complete.", nil
		},
	}
}
