package llm

import (
	"context"
	"fmt"

	"github.com/STop211650/ai-scrapbook/internal/config"
)

// CompletionRequest is a single text-generation request.
type CompletionRequest struct {
	Prompt    string
	MaxTokens int    // 0 means provider default
	Model     string // optional override of the configured model
}

// Client is the interface every chat-completion provider implements.
// The client is a process-lifetime singleton with no per-request state and
// is safe to share across concurrent requests.
type Client interface {
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}

// NewClient creates the completion client selected by the configuration.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.Gemini.Model, cfg.Gemini.APIKey)
	case "openai":
		return NewOpenAI(cfg.OpenAI.Model, cfg.OpenAI.APIKey)
	case "ollama":
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
