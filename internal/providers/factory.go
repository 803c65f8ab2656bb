package providers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ChamsBouzaiene/codeaudit/internal/engine"
)

// Options selects and configures a provider. Empty fields fall back to
// environment variables and provider defaults.
type Options struct {
	Provider string // openai, anthropic, ollama, lmstudio, deepseek, groq
	APIKey   string
	BaseURL  string
	Retry    engine.RetryPolicy
}

// DefaultModels maps each provider to a sensible default model name.
var DefaultModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-sonnet-4-20250514",
	"ollama":    "qwen2.5-coder:7b",
	"lmstudio":  "qwen2.5-coder-7b-instruct",
	"deepseek":  "deepseek-chat",
	"groq":      "llama-3.3-70b-versatile",
}

// NewLLMClient builds the transport for the chosen provider, wrapped with
// connection-failure retries. Every provider except anthropic speaks the
// OpenAI-compatible protocol, differing only in base URL and key source.
func NewLLMClient(opts Options) (engine.LLMClient, error) {
	provider := strings.ToLower(opts.Provider)
	if provider == "" {
		provider = "ollama"
	}

	var client engine.LLMClient
	switch provider {
	case "anthropic":
		key := firstNonEmpty(opts.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		client = NewAnthropicClient(key)

	case "openai":
		key := firstNonEmpty(opts.APIKey, os.Getenv("OPENAI_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		client = NewOpenAIClient(key, opts.BaseURL)

	case "ollama":
		base := firstNonEmpty(opts.BaseURL, os.Getenv("OLLAMA_BASE_URL"), "http://localhost:11434/v1")
		client = NewOpenAIClient(firstNonEmpty(opts.APIKey, "ollama"), base)

	case "lmstudio":
		base := firstNonEmpty(opts.BaseURL, "http://localhost:1234/v1")
		client = NewOpenAIClient(firstNonEmpty(opts.APIKey, "lm-studio"), base)

	case "deepseek":
		key := firstNonEmpty(opts.APIKey, os.Getenv("DEEPSEEK_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY not set")
		}
		client = NewOpenAIClient(key, firstNonEmpty(opts.BaseURL, "https://api.deepseek.com/v1"))

	case "groq":
		key := firstNonEmpty(opts.APIKey, os.Getenv("GROQ_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("GROQ_API_KEY not set")
		}
		client = NewOpenAIClient(key, firstNonEmpty(opts.BaseURL, "https://api.groq.com/openai/v1"))

	default:
		return nil, fmt.Errorf("unknown provider: %s", opts.Provider)
	}

	return engine.NewRetryingClient(client, opts.Retry), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// extractErrorMetadata pulls an HTTP status and Retry-After hint out of a
// provider error message. SDKs do not expose these uniformly, so this
// falls back to string matching.
func extractErrorMetadata(err error) (int, time.Duration) {
	if err == nil {
		return 0, 0
	}
	errStr := err.Error()

	var httpStatus int
	for _, code := range []int{
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusBadRequest,
	} {
		if strings.Contains(errStr, strconv.Itoa(code)) {
			httpStatus = code
			break
		}
	}

	var retryAfter time.Duration
	lower := strings.ToLower(errStr)
	for _, marker := range []string{"retry-after:", "retry after "} {
		idx := strings.Index(lower, marker)
		if idx == -1 {
			continue
		}
		fields := strings.Fields(lower[idx+len(marker):])
		if len(fields) == 0 {
			continue
		}
		if secs, err := strconv.Atoi(strings.Trim(fields[0], ",.")); err == nil {
			retryAfter = time.Duration(secs) * time.Second
		}
		break
	}

	return httpStatus, retryAfter
}
