package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/STop211650/ai-scrapbook/internal/llm"
	"github.com/STop211650/ai-scrapbook/internal/models"
	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

const (
	excerptMaxChars = 1500
	answerMaxTokens = 1024

	noContentAnswer = "I couldn't find any relevant content in your scrapbook to answer that question. Try capturing some related content first."
)

var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// SourceContext is one retrieved item adapted for answer synthesis.
type SourceContext struct {
	ID          string
	Title       string
	ContentType models.ContentType
	SourceURL   string
	Excerpt     string
}

// AskRequest is one question over the user's library.
type AskRequest struct {
	Query string     `json:"query"`
	Mode  SearchMode `json:"mode"`
	Limit int        `json:"limit"`
}

// AskService answers questions over stored items with numbered citations.
type AskService struct {
	search *SearchService
	store  ContentStore
	llm    llm.Client
	log    *logger.Logger
}

// NewAskService wires the answer synthesizer.
func NewAskService(search *SearchService, contentStore ContentStore, llmClient llm.Client, log *logger.Logger) *AskService {
	return &AskService{
		search: search,
		store:  contentStore,
		llm:    llmClient,
		log:    log,
	}
}

// Ask retrieves candidate items for the query, builds a numbered source
// context, invokes the model once and maps its inline [N] citations back to
// item identities. Zero candidates short-circuit to a canned answer with no
// model call.
func (s *AskService) Ask(ctx context.Context, userID string, req *AskRequest) (*models.AskResponse, error) {
	retrieved, err := s.search.Search(ctx, userID, &SearchRequest{
		Query: req.Query,
		Mode:  req.Mode,
		Limit: req.Limit,
	})
	if err != nil {
		return nil, err
	}

	if len(retrieved.Results) == 0 {
		return &models.AskResponse{
			Answer:               noContentAnswer,
			Sources:              []models.AskSource{},
			TotalSourcesSearched: 0,
		}, nil
	}

	sources, err := s.buildSources(ctx, userID, retrieved.Results)
	if err != nil {
		return nil, err
	}

	answer, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Prompt:    buildAskPrompt(req.Query, sources),
		MaxTokens: answerMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &models.AskResponse{
		Answer:               answer,
		Sources:              citedSources(answer, sources),
		TotalSourcesSearched: len(sources),
	}, nil
}

// buildSources fetches the full records for the retrieved IDs in one call
// and adapts them into excerpted source contexts, keeping retrieval order.
func (s *AskService) buildSources(ctx context.Context, userID string, results []models.SearchResult) ([]SourceContext, error) {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	items, err := s.store.FindByIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch sources: %w", err)
	}

	byID := make(map[string]*models.ContentItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	sources := make([]SourceContext, 0, len(results))
	for _, r := range results {
		item, ok := byID[r.ID]
		if !ok {
			continue
		}
		text := item.Content
		if text == "" {
			text = item.Description
		}
		sources = append(sources, SourceContext{
			ID:          item.ID,
			Title:       item.Title,
			ContentType: item.Type,
			SourceURL:   item.SourceURL,
			Excerpt:     excerptOf(text, excerptMaxChars),
		})
	}
	return sources, nil
}

// buildAskPrompt renders the numbered source block, one entry per source in
// the order given, and the answering instructions.
func buildAskPrompt(query string, sources []SourceContext) string {
	var sb strings.Builder
	sb.WriteString("You are answering a question using only the numbered sources below.\n")
	sb.WriteString("Cite every claim inline with the source number in brackets, e.g. [1].\n")
	sb.WriteString("If the sources do not contain the answer, say so.\n\nSources:\n\n")

	for i, src := range sources {
		fmt.Fprintf(&sb, "[%d] %s", i+1, src.Title)
		if src.SourceURL != "" {
			fmt.Fprintf(&sb, " (%s)", src.SourceURL)
		}
		sb.WriteString("\n")
		sb.WriteString(src.Excerpt)
		sb.WriteString("\n\n---\n\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

// citedSources scans the answer for [N] markers and maps the distinct
// in-range numbers back to the sources, in ascending numeric order rather
// than first-appearance order.
func citedSources(answer string, sources []SourceContext) []models.AskSource {
	matches := citationPattern.FindAllStringSubmatch(answer, -1)

	seen := make(map[int]bool)
	var numbers []int
	for _, match := range matches {
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 1 || n > len(sources) || seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	cited := make([]models.AskSource, 0, len(numbers))
	for _, n := range numbers {
		src := sources[n-1]
		cited = append(cited, models.AskSource{
			ID:             src.ID,
			Title:          src.Title,
			ContentType:    src.ContentType,
			SourceURL:      src.SourceURL,
			CitationNumber: n,
		})
	}
	return cited
}

// excerptOf bounds the text, preferring to cut at a sentence boundary when
// one falls in the second half of the window.
func excerptOf(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	window := string(runes[:maxChars])
	if cut := strings.LastIndexAny(window, ".!?"); cut > maxChars/2 {
		return window[:cut+1]
	}
	return window + "..."
}
