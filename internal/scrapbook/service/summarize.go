package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/STop211650/ai-scrapbook/internal/llm"
	"github.com/STop211650/ai-scrapbook/internal/models"
	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

const (
	summaryMaxTokens = 1024

	// previewChars bounds SummarizeResult.ExtractedContent independently of
	// what was sent to the model.
	previewChars = 1000
)

// summaryLengths maps the requested length to prompt guidance.
var summaryLengths = map[string]string{
	"short":  "in two or three sentences",
	"medium": "in one or two paragraphs",
	"long":   "in detail, covering every major point",
}

// SummarizeRequest is one direct summarization call.
type SummarizeRequest struct {
	URL             string `json:"url"`
	Length          string `json:"length"`
	IncludeMetadata bool   `json:"includeMetadata"`
	Model           string `json:"model"`
}

// SummarizeService extracts content from a URL or file and summarizes it in
// one model call, without persisting anything.
type SummarizeService struct {
	extractor ContentExtractor
	llm       llm.Client
	log       *logger.Logger
}

// NewSummarizeService wires the summarizer.
func NewSummarizeService(extractor ContentExtractor, llmClient llm.Client, log *logger.Logger) *SummarizeService {
	return &SummarizeService{extractor: extractor, llm: llmClient, log: log}
}

// SummarizeURL extracts the URL's content and generates a summary.
func (s *SummarizeService) SummarizeURL(ctx context.Context, req *SummarizeRequest) (*models.SummarizeResult, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("%w: url required", ErrInvalidRequest)
	}

	extraction, err := s.extractor.Extract(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, extraction.Content, extraction.Title, extraction.Type,
		extraction.SourceURL, extraction.Metadata, req)
}

// SummarizeFile runs the uploaded-file extraction path and summarizes the
// resulting text.
func (s *SummarizeService) SummarizeFile(ctx context.Context, data []byte, filename, mimeTypeHint string, req *SummarizeRequest) (*models.SummarizeResult, error) {
	extraction, err := s.extractor.ExtractUpload(ctx, data, filename, mimeTypeHint)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, extraction.Content, extraction.Title, extraction.Type,
		extraction.SourceURL, extraction.Metadata, req)
}

// Status reports which extraction sources are usable. Article extraction
// has no credential precondition.
func (s *SummarizeService) Status() models.SummarizeStatus {
	return models.SummarizeStatus{
		Twitter:  s.extractor.TwitterConfigured(),
		Reddit:   s.extractor.RedditConfigured(),
		Articles: true,
	}
}

func (s *SummarizeService) summarize(ctx context.Context, content, title string, contentType models.ContentType, sourceURL string, metadata map[string]interface{}, req *SummarizeRequest) (*models.SummarizeResult, error) {
	result := &models.SummarizeResult{
		ContentType:      contentType,
		Title:            title,
		SourceURL:        sourceURL,
		ExtractedContent: previewOf(content),
	}
	if req.IncludeMetadata {
		result.Metadata = metadata
	}

	if content == "" {
		// Images and other text-free captures have nothing to feed the model.
		result.Summary = fmt.Sprintf("Captured %s content with no extractable text.", contentType)
		return result, nil
	}

	summary, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Prompt:    buildSummaryPrompt(content, title, req.Length),
		MaxTokens: summaryMaxTokens,
		Model:     req.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	result.Summary = strings.TrimSpace(summary)
	return result, nil
}

func buildSummaryPrompt(content, title, length string) string {
	guidance, ok := summaryLengths[length]
	if !ok {
		guidance = summaryLengths["medium"]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize the following content %s.\n", guidance)
	if title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", title)
	}
	sb.WriteString("\nContent:\n")
	sb.WriteString(content)
	sb.WriteString("\n\nSummary:")
	return sb.String()
}

// previewOf bounds the extracted-content echo to a fixed length.
func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= previewChars {
		return content
	}
	return string(runes[:previewChars]) + "..."
}
