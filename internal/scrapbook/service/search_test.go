package service

import (
	"context"
	"errors"
	"testing"

	"github.com/STop211650/ai-scrapbook/internal/models"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/store"
	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

type fakeStore struct {
	items map[string]models.ContentItem

	keywordResults []models.ContentItem
	keywordErr     error

	findByIDsOrder []string // order FindByIDs returns items in; defaults to input order
	findByIDsCalls int
	created        []*models.ContentItem
	enrichments    map[string]models.EnrichmentStatus
}

func newFakeStore(items ...models.ContentItem) *fakeStore {
	s := &fakeStore{
		items:       make(map[string]models.ContentItem),
		enrichments: make(map[string]models.EnrichmentStatus),
	}
	for _, item := range items {
		s.items[item.ID] = item
	}
	return s
}

func (s *fakeStore) Create(ctx context.Context, item *models.ContentItem) error {
	s.created = append(s.created, item)
	s.items[item.ID] = *item
	return nil
}

func (s *fakeStore) FindByID(ctx context.Context, userID, id string) (*models.ContentItem, error) {
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (s *fakeStore) FindByIDs(ctx context.Context, userID string, ids []string) ([]models.ContentItem, error) {
	s.findByIDsCalls++

	order := s.findByIDsOrder
	if order == nil {
		order = ids
	}
	var result []models.ContentItem
	for _, id := range order {
		if item, ok := s.items[id]; ok && item.UserID == userID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (s *fakeStore) KeywordSearch(ctx context.Context, userID, query string, limit int) ([]models.ContentItem, error) {
	if s.keywordErr != nil {
		return nil, s.keywordErr
	}
	if len(s.keywordResults) > limit {
		return s.keywordResults[:limit], nil
	}
	return s.keywordResults, nil
}

func (s *fakeStore) Delete(ctx context.Context, userID, id string) error {
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *fakeStore) UpdateEnrichment(ctx context.Context, userID, id string, enrichment *models.Enrichment, status models.EnrichmentStatus) error {
	item, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	if enrichment != nil {
		if enrichment.Title != "" {
			item.Title = enrichment.Title
		}
		item.Description = enrichment.Description
		item.Tags = enrichment.Tags
	}
	item.EnrichmentStatus = status
	s.items[id] = item
	s.enrichments[id] = status
	return nil
}

type fakeIndex struct {
	hits      []store.ScoredID
	searchErr error
	deleteErr error
	inserted  map[string][]float32
	deleted   []string
}

func (f *fakeIndex) Insert(ctx context.Context, userID, id string, vector []float32) error {
	if f.inserted == nil {
		f.inserted = make(map[string][]float32)
	}
	f.inserted[id] = vector
	return nil
}

func (f *fakeIndex) Delete(ctx context.Context, userID, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) SearchSimilar(ctx context.Context, userID string, vector []float32, limit int) ([]store.ScoredID, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.hits) > limit {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

func item(id, userID, title string, contentType models.ContentType) models.ContentItem {
	return models.ContentItem{
		ID:     id,
		UserID: userID,
		Type:   contentType,
		Title:  title,
	}
}

// Semantic results must come back in similarity order even when the batch
// fetch returns rows in a different order.
func TestSemanticSearchPreservesSimilarityOrder(t *testing.T) {
	st := newFakeStore(
		item("a", "u1", "first", models.ContentTypeArticle),
		item("b", "u1", "second", models.ContentTypeArticle),
	)
	st.findByIDsOrder = []string{"b", "a"}
	idx := &fakeIndex{hits: []store.ScoredID{{ID: "a", Score: 0.95}, {ID: "b", Score: 0.85}}}

	svc := NewSearchService(st, idx, &fakeEmbedder{}, logger.New("test"))
	resp, err := svc.Search(context.Background(), "u1", &SearchRequest{Query: "q", Mode: ModeSemantic})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	if resp.Results[0].ID != "a" || resp.Results[1].ID != "b" {
		t.Errorf("order = [%s %s], want [a b]", resp.Results[0].ID, resp.Results[1].ID)
	}
	if resp.Results[0].Score == nil || *resp.Results[0].Score != 0.95 {
		t.Errorf("score not reattached: %v", resp.Results[0].Score)
	}
	if st.findByIDsCalls != 1 {
		t.Errorf("FindByIDs called %d times, want exactly 1", st.findByIDsCalls)
	}
}

func TestSemanticSearchDropsMissingIDs(t *testing.T) {
	st := newFakeStore(item("a", "u1", "kept", models.ContentTypeArticle))
	idx := &fakeIndex{hits: []store.ScoredID{{ID: "a", Score: 0.9}, {ID: "deleted", Score: 0.8}}}

	svc := NewSearchService(st, idx, &fakeEmbedder{}, logger.New("test"))
	resp, err := svc.Search(context.Background(), "u1", &SearchRequest{Query: "q", Mode: ModeSemantic})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "a" {
		t.Errorf("results = %v, want just [a]", resp.Results)
	}
}

func TestSemanticSearchZeroCandidatesSkipsFetch(t *testing.T) {
	st := newFakeStore()
	idx := &fakeIndex{}

	svc := NewSearchService(st, idx, &fakeEmbedder{}, logger.New("test"))
	resp, err := svc.Search(context.Background(), "u1", &SearchRequest{Query: "q", Mode: ModeSemantic})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("got %d results, want 0", len(resp.Results))
	}
	if st.findByIDsCalls != 0 {
		t.Errorf("FindByIDs called %d times on zero candidates, want 0", st.findByIDsCalls)
	}
}

// Hybrid merge: every semantic ID precedes every keyword-only ID, no
// duplicates, bounded by limit.
func TestHybridSearchMerge(t *testing.T) {
	st := newFakeStore(
		item("sem1", "u1", "s1", models.ContentTypeArticle),
		item("sem2", "u1", "s2", models.ContentTypeArticle),
		item("kw1", "u1", "k1", models.ContentTypeText),
	)
	st.keywordResults = []models.ContentItem{
		st.items["kw1"],
		st.items["sem1"], // duplicate of a semantic hit
	}
	idx := &fakeIndex{hits: []store.ScoredID{{ID: "sem1", Score: 0.9}, {ID: "sem2", Score: 0.8}}}

	svc := NewSearchService(st, idx, &fakeEmbedder{}, logger.New("test"))
	resp, err := svc.Search(context.Background(), "u1", &SearchRequest{Query: "q", Mode: ModeHybrid})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	gotIDs := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		gotIDs[i] = r.ID
	}
	want := []string{"sem1", "sem2", "kw1"}
	if len(gotIDs) != len(want) {
		t.Fatalf("ids = %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("ids = %v, want %v", gotIDs, want)
		}
	}
	if resp.Results[2].Score != nil {
		t.Error("keyword-only result should have no score")
	}
}

func TestHybridSearchHonorsLimit(t *testing.T) {
	st := newFakeStore(
		item("sem1", "u1", "s1", models.ContentTypeArticle),
		item("sem2", "u1", "s2", models.ContentTypeArticle),
		item("kw1", "u1", "k1", models.ContentTypeArticle),
	)
	st.keywordResults = []models.ContentItem{st.items["kw1"]}
	idx := &fakeIndex{hits: []store.ScoredID{{ID: "sem1", Score: 0.9}, {ID: "sem2", Score: 0.8}}}

	svc := NewSearchService(st, idx, &fakeEmbedder{}, logger.New("test"))
	resp, err := svc.Search(context.Background(), "u1", &SearchRequest{Query: "q", Mode: ModeHybrid, Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	if resp.Results[0].ID != "sem1" || resp.Results[1].ID != "sem2" {
		t.Errorf("semantic results did not fill the limit first: %v", resp.Results)
	}
}

// A failed semantic branch degrades hybrid to keyword-only.
func TestHybridSearchSemanticFailureDegrades(t *testing.T) {
	st := newFakeStore(item("kw1", "u1", "k1", models.ContentTypeArticle))
	st.keywordResults = []models.ContentItem{st.items["kw1"]}
	idx := &fakeIndex{}
	embedder := &fakeEmbedder{err: errors.New("embedding service down")}

	svc := NewSearchService(st, idx, embedder, logger.New("test"))
	resp, err := svc.Search(context.Background(), "u1", &SearchRequest{Query: "q", Mode: ModeHybrid})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "kw1" {
		t.Errorf("results = %v, want keyword fallback [kw1]", resp.Results)
	}
}

func TestSearchTypeFilter(t *testing.T) {
	st := newFakeStore(
		item("a", "u1", "article", models.ContentTypeArticle),
		item("b", "u1", "tweet", models.ContentTypeTwitter),
	)
	st.keywordResults = []models.ContentItem{st.items["a"], st.items["b"]}

	svc := NewSearchService(st, &fakeIndex{}, &fakeEmbedder{}, logger.New("test"))
	resp, err := svc.Search(context.Background(), "u1", &SearchRequest{
		Query: "q",
		Mode:  ModeKeyword,
		Types: []models.ContentType{models.ContentTypeTwitter},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "b" {
		t.Errorf("results = %v, want only the twitter item", resp.Results)
	}
	if resp.Total != 1 {
		t.Errorf("Total = %d, want 1 (after type filter)", resp.Total)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc := NewSearchService(newFakeStore(), &fakeIndex{}, &fakeEmbedder{}, logger.New("test"))
	if _, err := svc.Search(context.Background(), "u1", &SearchRequest{}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestSearchRejectsUnknownMode(t *testing.T) {
	svc := NewSearchService(newFakeStore(), &fakeIndex{}, &fakeEmbedder{}, logger.New("test"))
	_, err := svc.Search(context.Background(), "u1", &SearchRequest{Query: "q", Mode: "fuzzy"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}
