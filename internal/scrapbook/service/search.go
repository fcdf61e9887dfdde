package service

import (
	"context"
	"fmt"

	"github.com/STop211650/ai-scrapbook/internal/embedding"
	"github.com/STop211650/ai-scrapbook/internal/models"
	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

// SearchMode selects the retrieval strategy for one query.
type SearchMode string

const (
	ModeKeyword  SearchMode = "keyword"
	ModeSemantic SearchMode = "semantic"
	ModeHybrid   SearchMode = "hybrid"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// SearchRequest is one retrieval query.
type SearchRequest struct {
	Query string               `json:"query"`
	Mode  SearchMode           `json:"mode"`
	Types []models.ContentType `json:"types"`
	Limit int                  `json:"limit"`
}

// SearchResponse carries the filtered result page and its total count.
type SearchResponse struct {
	Results []models.SearchResult `json:"results"`
	Total   int                   `json:"total"`
}

// SearchService retrieves stored items under the three search modes.
type SearchService struct {
	store    ContentStore
	index    EmbeddingIndex
	embedder embedding.Embedding
	log      *logger.Logger
}

// NewSearchService wires the retrieval engine.
func NewSearchService(contentStore ContentStore, index EmbeddingIndex, embedder embedding.Embedding, log *logger.Logger) *SearchService {
	return &SearchService{
		store:    contentStore,
		index:    index,
		embedder: embedder,
		log:      log,
	}
}

// Search runs one retrieval query. Hybrid is the default mode.
func (s *SearchService) Search(ctx context.Context, userID string, req *SearchRequest) (*SearchResponse, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidRequest)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	var (
		results []models.SearchResult
		err     error
	)
	switch req.Mode {
	case ModeKeyword:
		results, err = s.keywordSearch(ctx, userID, req.Query, limit)
	case ModeSemantic:
		results, err = s.semanticSearch(ctx, userID, req.Query, limit)
	case ModeHybrid, "":
		results, err = s.hybridSearch(ctx, userID, req.Query, limit)
	default:
		return nil, fmt.Errorf("%w: unknown search mode %q", ErrInvalidRequest, req.Mode)
	}
	if err != nil {
		return nil, err
	}

	results = filterByTypes(results, req.Types)
	return &SearchResponse{Results: results, Total: len(results)}, nil
}

func (s *SearchService) keywordSearch(ctx context.Context, userID, query string, limit int) ([]models.SearchResult, error) {
	items, err := s.store.KeywordSearch(ctx, userID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	results := make([]models.SearchResult, 0, len(items))
	for i := range items {
		results = append(results, toSearchResult(&items[i], nil))
	}
	return results, nil
}

// semanticSearch embeds the query, asks the vector index for the nearest
// item IDs, then batch-fetches the records in a single call. Results keep
// the similarity-ranked order from the index, not the arbitrary order the
// batch fetch returns; IDs the fetch omits are dropped silently.
func (s *SearchService) semanticSearch(ctx context.Context, userID, query string, limit int) ([]models.SearchResult, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.index.SearchSimilar(ctx, userID, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}
	items, err := s.store.FindByIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch search results: %w", err)
	}

	byID := make(map[string]*models.ContentItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	results := make([]models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		item, ok := byID[hit.ID]
		if !ok {
			continue
		}
		score := hit.Score
		results = append(results, toSearchResult(item, &score))
	}
	return results, nil
}

// hybridSearch runs the keyword and semantic branches concurrently and
// merges with semantic precedence: all semantic results first in score
// order, then keyword results whose ID is new, truncated to limit. A failed
// semantic branch degrades to empty instead of failing the query.
func (s *SearchService) hybridSearch(ctx context.Context, userID, query string, limit int) ([]models.SearchResult, error) {
	type branch struct {
		results []models.SearchResult
		err     error
	}
	semanticCh := make(chan branch, 1)
	keywordCh := make(chan branch, 1)

	go func() {
		results, err := s.semanticSearch(ctx, userID, query, limit)
		semanticCh <- branch{results, err}
	}()
	go func() {
		results, err := s.keywordSearch(ctx, userID, query, limit)
		keywordCh <- branch{results, err}
	}()

	semantic := <-semanticCh
	keyword := <-keywordCh

	if semantic.err != nil {
		s.log.WithUser(userID).Warn("semantic branch failed, degrading to keyword only: " + semantic.err.Error())
		semantic.results = nil
	}
	if keyword.err != nil {
		return nil, keyword.err
	}

	merged := make([]models.SearchResult, 0, limit)
	seen := make(map[string]bool, limit)
	for _, r := range semantic.results {
		if len(merged) == limit {
			break
		}
		if !seen[r.ID] {
			seen[r.ID] = true
			merged = append(merged, r)
		}
	}
	for _, r := range keyword.results {
		if len(merged) == limit {
			break
		}
		if !seen[r.ID] {
			seen[r.ID] = true
			merged = append(merged, r)
		}
	}
	return merged, nil
}

func filterByTypes(results []models.SearchResult, types []models.ContentType) []models.SearchResult {
	if len(types) == 0 {
		return results
	}
	allowed := make(map[models.ContentType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	filtered := results[:0]
	for _, r := range results {
		if allowed[r.ContentType] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func toSearchResult(item *models.ContentItem, score *float32) models.SearchResult {
	return models.SearchResult{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		ContentType: item.Type,
		Tags:        item.Tags,
		SourceURL:   item.SourceURL,
		CreatedAt:   item.CreatedAt,
		Score:       score,
	}
}
