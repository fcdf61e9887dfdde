package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/STop211650/ai-scrapbook/internal/models"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/extract"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/service"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/store"
	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

type stubStore struct {
	items map[string]*models.ContentItem
}

func (s *stubStore) Create(ctx context.Context, item *models.ContentItem) error { return nil }

func (s *stubStore) FindByID(ctx context.Context, userID, id string) (*models.ContentItem, error) {
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return item, nil
}

func (s *stubStore) FindByIDs(ctx context.Context, userID string, ids []string) ([]models.ContentItem, error) {
	return nil, nil
}

func (s *stubStore) KeywordSearch(ctx context.Context, userID, query string, limit int) ([]models.ContentItem, error) {
	return nil, nil
}

func (s *stubStore) UpdateEnrichment(ctx context.Context, userID, id string, enrichment *models.Enrichment, status models.EnrichmentStatus) error {
	return nil
}

func (s *stubStore) Delete(ctx context.Context, userID, id string) error {
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	delete(s.items, id)
	return nil
}

type stubIndex struct {
	deleted []string
}

func (s *stubIndex) Insert(ctx context.Context, userID, id string, vector []float32) error {
	return nil
}

func (s *stubIndex) Delete(ctx context.Context, userID, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubIndex) SearchSimilar(ctx context.Context, userID string, vector []float32, limit int) ([]store.ScoredID, error) {
	return nil, nil
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{extract.ErrInvalidInput, http.StatusBadRequest},
		{service.ErrInvalidRequest, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", extract.ErrInvalidInput), http.StatusBadRequest},
		{store.ErrNotFound, http.StatusNotFound},
		{extract.ErrSizeLimitExceeded, http.StatusRequestEntityTooLarge},
		{extract.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{extract.ErrEmptyText, http.StatusUnprocessableEntity},
		{extract.ErrUpstreamFetch, http.StatusBadGateway},
		{extract.ErrNotConfigured, http.StatusBadGateway},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusForError(tt.err); got != tt.want {
			t.Errorf("statusForError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestGetContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := &stubStore{items: map[string]*models.ContentItem{
		"item-1": {ID: "item-1", UserID: "u1", Title: "Kept", Type: models.ContentTypeText},
	}}
	handler := NewHandler(nil, nil, nil, nil, st, 1<<20, logger.New("test"))

	router := gin.New()
	router.GET("/content/:id", func(c *gin.Context) {
		c.Set(userIDKey, "u1")
		handler.GetContent(c)
	})

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/content/item-1", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var item models.ContentItem
		if err := json.Unmarshal(w.Body.Bytes(), &item); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if item.Title != "Kept" {
			t.Errorf("Title = %q", item.Title)
		}
	})

	t.Run("missing id is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/content/other", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

func TestDeleteContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := &stubStore{items: map[string]*models.ContentItem{
		"item-1": {ID: "item-1", UserID: "u1", Title: "Doomed", Type: models.ContentTypeText},
	}}
	idx := &stubIndex{}
	log := logger.New("test")
	capture := service.NewCaptureService(st, idx, nil, nil, nil, nil, nil, log)
	handler := NewHandler(capture, nil, nil, nil, st, 1<<20, log)

	router := gin.New()
	router.DELETE("/content/:id", func(c *gin.Context) {
		c.Set(userIDKey, "u1")
		handler.DeleteContent(c)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/content/item-1", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if len(idx.deleted) != 1 || idx.deleted[0] != "item-1" {
		t.Errorf("index deletions = %v, want [item-1]", idx.deleted)
	}

	// Deleting again reports not found.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/content/item-1", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("repeat status = %d, want 404", w.Code)
	}
}
