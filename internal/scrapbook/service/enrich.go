package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/STop211650/ai-scrapbook/internal/llm"
	"github.com/STop211650/ai-scrapbook/internal/models"
	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

const (
	enrichMaxTokens     = 512
	enrichContentWindow = 4000 // chars of item text shown to the model
	enrichMaxTags       = 8
)

// Enricher generates title/description/tags metadata for captured items.
// It never fails on bad model output: unparseable responses degrade to an
// empty Enrichment so a flaky model cannot break ingestion.
type Enricher struct {
	llm llm.Client
	log *logger.Logger
}

// NewEnricher wires the enrichment generator.
func NewEnricher(llmClient llm.Client, log *logger.Logger) *Enricher {
	return &Enricher{llm: llmClient, log: log}
}

// Enrich asks the model for metadata describing the content. Model-call
// failures propagate; malformed output does not.
func (e *Enricher) Enrich(ctx context.Context, content string, contentType models.ContentType) (*models.Enrichment, error) {
	raw, err := e.llm.Complete(ctx, &llm.CompletionRequest{
		Prompt:    buildEnrichPrompt(content, contentType),
		MaxTokens: enrichMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("enrichment completion: %w", err)
	}

	enrichment, err := parseEnrichment(raw)
	if err != nil {
		e.log.Warn("enrichment output unparseable, using defaults: " + err.Error())
		return &models.Enrichment{}, nil
	}
	return enrichment, nil
}

func buildEnrichPrompt(content string, contentType models.ContentType) string {
	window := content
	if runes := []rune(window); len(runes) > enrichContentWindow {
		window = string(runes[:enrichContentWindow])
	}

	var sb strings.Builder
	sb.WriteString("Generate metadata for the following captured ")
	sb.WriteString(string(contentType))
	sb.WriteString(" content.\n")
	sb.WriteString("Respond with ONLY a JSON object, no prose and no code fences, shaped as:\n")
	sb.WriteString(`{"title": "short title", "description": "one or two sentences", "tags": ["tag1", "tag2"]}`)
	fmt.Fprintf(&sb, "\nUse at most %d lowercase tags.\n\nContent:\n", enrichMaxTags)
	sb.WriteString(window)
	return sb.String()
}

// parseEnrichment decodes the model's JSON, tolerating a code fence around
// it. Anything else maps to ErrUnparseableModelOutput.
func parseEnrichment(raw string) (*models.Enrichment, error) {
	cleaned := stripCodeFence(strings.TrimSpace(raw))

	var enrichment models.Enrichment
	if err := json.Unmarshal([]byte(cleaned), &enrichment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableModelOutput, err)
	}
	if len(enrichment.Tags) > enrichMaxTags {
		enrichment.Tags = enrichment.Tags[:enrichMaxTags]
	}
	return &enrichment, nil
}

// stripCodeFence unwraps ```json ... ``` style fences some models emit
// despite instructions.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
