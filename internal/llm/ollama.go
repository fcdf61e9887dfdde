package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// Ollama is a completion client backed by a local Ollama instance.
type Ollama struct {
	client       *ollama.Client
	defaultModel string
}

// NewOllama creates a new Ollama client. An empty baseURL defaults to the
// standard local Ollama address.
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{Timeout: 120 * time.Second}
	return &Ollama{client: ollama.NewClient(parsedURL, hc), defaultModel: model}, nil
}

// Complete sends a single-turn generation request.
func (o *Ollama) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	modelName := o.defaultModel
	if req.Model != "" {
		modelName = req.Model
	}

	stream := false
	var result string
	err := o.client.Generate(ctx, &ollama.GenerateRequest{
		Model:  modelName,
		Prompt: req.Prompt,
		Stream: &stream,
	}, func(resp ollama.GenerateResponse) error {
		result = resp.Response
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}
	return result, nil
}

var _ Client = (*Ollama)(nil)
