package engine

import (
	"context"
	"fmt"
)

// maxToolOutputBytes caps how much of a tool result is fed back to the
// model. Oversized outputs are truncated, not rejected.
const maxToolOutputBytes = 8000

// DispatchToolCall executes one tool call against the registry. Every
// failure mode short of a crashed process comes back as an error
// ToolResult so the model can read it and adjust; nothing here is fatal
// to the run.
func DispatchToolCall(ctx context.Context, reg ToolRegistry, call ToolCall) ToolResult {
	tool, ok := reg[call.Name]
	if !ok {
		return ToolResult{
			ToolCallID: call.ID,
			Content:    (&UnknownToolError{Name: call.Name}).Error(),
			IsError:    true,
		}
	}

	if err := tool.ValidateArgs(call.Args); err != nil {
		return ToolResult{ToolCallID: call.ID, Content: err.Error(), IsError: true}
	}

	out, err := tool.Fn(ctx, call.Args)
	if err != nil {
		return ToolResult{ToolCallID: call.ID, Content: err.Error(), IsError: true}
	}

	return ToolResult{ToolCallID: call.ID, Content: truncateOutput(out)}
}

func truncateOutput(s string) string {
	if len(s) <= maxToolOutputBytes {
		return s
	}
	return fmt.Sprintf("%s\n... [output truncated at %d bytes]", s[:maxToolOutputBytes], maxToolOutputBytes)
}
