// Package service implements the scrapbook's business operations: capture,
// background enrichment, retrieval, question answering and summarization.
package service

import (
	"context"

	"github.com/STop211650/ai-scrapbook/internal/models"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/extract"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/store"
)

// ContentStore is the item repository consumed by the services. FindByIDs
// must be one batched call; its result order carries no meaning.
type ContentStore interface {
	Create(ctx context.Context, item *models.ContentItem) error
	FindByID(ctx context.Context, userID, id string) (*models.ContentItem, error)
	FindByIDs(ctx context.Context, userID string, ids []string) ([]models.ContentItem, error)
	KeywordSearch(ctx context.Context, userID, query string, limit int) ([]models.ContentItem, error)
	UpdateEnrichment(ctx context.Context, userID, id string, enrichment *models.Enrichment, status models.EnrichmentStatus) error
	Delete(ctx context.Context, userID, id string) error
}

// EmbeddingIndex is the nearest-neighbor capability, scoped per user.
type EmbeddingIndex interface {
	Insert(ctx context.Context, userID, id string, vector []float32) error
	Delete(ctx context.Context, userID, id string) error
	SearchSimilar(ctx context.Context, userID string, vector []float32, limit int) ([]store.ScoredID, error)
}

// ObjectStore archives raw captured payloads.
type ObjectStore interface {
	Archive(ctx context.Context, userID, itemID string, data []byte, contentType string) error
	Remove(ctx context.Context, userID, itemID string) error
}

// ContentExtractor is the extraction orchestrator surface the capture and
// summarize services consume.
type ContentExtractor interface {
	Extract(ctx context.Context, input string) (*extract.Extraction, error)
	ExtractUpload(ctx context.Context, data []byte, filename, mimeTypeHint string) (*extract.Extraction, error)
	TwitterConfigured() bool
	RedditConfigured() bool
}

var (
	_ ContentStore     = (*store.MongoContentStore)(nil)
	_ EmbeddingIndex   = (*store.MilvusEmbeddingIndex)(nil)
	_ ObjectStore      = (*store.MinIOObjectStore)(nil)
	_ ContentExtractor = (*extract.Extractor)(nil)
)
