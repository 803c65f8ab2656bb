package engine

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ChatMessage is one entry in the conversation history.
// Assistant messages may carry ToolCalls. Tool messages carry the ID of the
// call they answer in ToolCallID; that pairing is load-bearing and must
// survive history pruning.
type ChatMessage struct {
	Role       Role
	Content    string
	ToolCallID string
	ToolCalls  []ToolCall
}

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult is the outcome of dispatching one tool call. Error results are
// fed back to the model rather than terminating the run.
type ToolResult struct {
	ToolCallID string
	Content    string
	IsError    bool
}

// Message renders the result as the tool message appended to history.
// Errors are prefixed so the model can recognize the failure.
func (r ToolResult) Message() ChatMessage {
	content := r.Content
	if r.IsError {
		content = "ERROR: " + content
	}
	return ChatMessage{Role: RoleTool, ToolCallID: r.ToolCallID, Content: content}
}

// Usage accumulates token counts reported by the provider.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// LLMResponse is the provider-agnostic result of one chat completion.
type LLMResponse struct {
	Assistant    string
	ToolCalls    []ToolCall
	Usage        Usage
	FinishReason string
}

// ToolSchema describes one tool to the model.
type ToolSchema struct {
	Name        string
	Description string
	JSONSchema  string
}

// ChatOptions carries per-request knobs passed through to the provider.
type ChatOptions struct {
	Temperature     float32
	MaxOutputTokens int
}

// LLMClient is the transport boundary. Implementations translate the
// provider wire format to and from these types; all nondeterminism in an
// audit lives behind this interface.
type LLMClient interface {
	Chat(ctx context.Context, model string, messages []ChatMessage, toolSchemas []ToolSchema, opts ChatOptions) (LLMResponse, error)
}
