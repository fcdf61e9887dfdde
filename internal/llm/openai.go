package llm

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAI is a completion client backed by the OpenAI API.
type OpenAI struct {
	client       *openai.Client
	defaultModel string
}

// NewOpenAI creates a new OpenAI client.
func NewOpenAI(model, apiKey string) (*OpenAI, error) {
	config := openai.DefaultConfig(apiKey)
	return &OpenAI{
		client:       openai.NewClientWithConfig(config),
		defaultModel: model,
	}, nil
}

// Complete sends a single-turn generation request.
func (o *OpenAI) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	modelName := o.defaultModel
	if req.Model != "" {
		modelName = req.Model
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     modelName,
		MaxTokens: req.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Client = (*OpenAI)(nil)
