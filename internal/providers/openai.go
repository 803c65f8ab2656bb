package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
)

// OpenAIClient speaks the OpenAI chat-completions protocol. With a custom
// base URL it also serves Ollama, LM Studio, DeepSeek and Groq, which all
// expose the same wire format.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient builds a client for api.openai.com or, when baseURL is
// non-empty, any OpenAI-compatible endpoint.
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

// Chat implements engine.LLMClient.
func (c *OpenAIClient) Chat(ctx context.Context, model string, messages []engine.ChatMessage, toolSchemas []engine.ToolSchema, opts engine.ChatOptions) (engine.LLMResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(messages),
		Temperature: &opts.Temperature,
	}
	if opts.MaxOutputTokens > 0 {
		req.MaxTokens = opts.MaxOutputTokens
	}
	if tools, err := toOpenAITools(toolSchemas); err != nil {
		return engine.LLMResponse{}, err
	} else if len(tools) > 0 {
		req.Tools = tools
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return engine.LLMResponse{}, wrapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return engine.LLMResponse{}, engine.NewTransportError(errors.New("empty response from model"), 0, 0)
	}

	choice := resp.Choices[0]
	out := engine.LLMResponse{
		Assistant:    choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: engine.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}

	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				// Leave the arguments empty; schema validation will tell
				// the model what was wrong.
				args = map[string]any{}
			}
		}
		out.ToolCalls = append(out.ToolCalls, engine.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return out, nil
}

func toOpenAIMessages(messages []engine.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case engine.RoleSystem:
			out = append(out, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: msg.Content,
			})
		case engine.RoleUser:
			out = append(out, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: msg.Content,
			})
		case engine.RoleAssistant:
			m := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Content,
			}
			for _, call := range msg.ToolCalls {
				argsJSON, err := json.Marshal(call.Args)
				if err != nil {
					argsJSON = []byte("{}")
				}
				m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
					ID:   call.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      call.Name,
						Arguments: string(argsJSON),
					},
				})
			}
			out = append(out, m)
		case engine.RoleTool:
			content := msg.Content
			if content == "" {
				content = "{}" // some compatible servers reject empty tool content
			}
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    content,
				ToolCallID: msg.ToolCallID,
			})
		}
	}
	return out
}

func toOpenAITools(schemas []engine.ToolSchema) ([]openai.Tool, error) {
	tools := make([]openai.Tool, 0, len(schemas))
	for _, s := range schemas {
		var params map[string]any
		if err := json.Unmarshal([]byte(s.JSONSchema), &params); err != nil {
			return nil, fmt.Errorf("tool %s has invalid schema: %w", s.Name, err)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  params,
			},
		})
	}
	return tools, nil
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return engine.NewTransportError(err, apiErr.HTTPStatusCode, 0)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return engine.NewTransportError(err, reqErr.HTTPStatusCode, 0)
	}
	return engine.NewTransportError(err, 0, 0)
}
