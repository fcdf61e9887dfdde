package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/STop211650/ai-scrapbook/internal/embedding"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/extract"
	"github.com/STop211650/ai-scrapbook/internal/models"
	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

const fallbackTitleChars = 60

// CaptureService turns raw inputs into persisted content items and submits
// the background enrichment job for each.
type CaptureService struct {
	store     ContentStore
	index     EmbeddingIndex
	objects   ObjectStore // may be nil when no archive is configured
	extractor ContentExtractor
	enricher  *Enricher
	embedder  embedding.Embedding
	jobs      *JobRunner
	log       *logger.Logger
}

// NewCaptureService wires the capture flow.
func NewCaptureService(
	contentStore ContentStore,
	index EmbeddingIndex,
	objects ObjectStore,
	extractor ContentExtractor,
	enricher *Enricher,
	embedder embedding.Embedding,
	jobs *JobRunner,
	log *logger.Logger,
) *CaptureService {
	return &CaptureService{
		store:     contentStore,
		index:     index,
		objects:   objects,
		extractor: extractor,
		enricher:  enricher,
		embedder:  embedder,
		jobs:      jobs,
		log:       log,
	}
}

// Capture extracts a raw input (URL, text or inline image data), persists
// the resulting item and submits enrichment. The returned Job is already
// running; the caller does not need to await it.
func (s *CaptureService) Capture(ctx context.Context, userID, input string) (*models.ContentItem, *Job, error) {
	extraction, err := s.extractor.Extract(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	return s.persist(ctx, userID, extraction, nil)
}

// CaptureUpload runs the uploaded-file path: derive the asset from local
// bytes, persist the item, archive the raw payload and submit enrichment.
func (s *CaptureService) CaptureUpload(ctx context.Context, userID string, data []byte, filename, mimeTypeHint string) (*models.ContentItem, *Job, error) {
	extraction, err := s.extractor.ExtractUpload(ctx, data, filename, mimeTypeHint)
	if err != nil {
		return nil, nil, err
	}
	return s.persist(ctx, userID, extraction, data)
}

// Delete removes an item and its derived state. The repository row is
// authoritative; embedding and archive cleanup is best effort since search
// drops index hits whose items no longer exist.
func (s *CaptureService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}
	if err := s.index.Delete(ctx, userID, id); err != nil {
		s.log.WithUser(userID).Warn("deleting embedding for " + id + ": " + err.Error())
	}
	if s.objects != nil {
		if err := s.objects.Remove(ctx, userID, id); err != nil {
			s.log.WithUser(userID).Warn("removing archived payload for " + id + ": " + err.Error())
		}
	}
	return nil
}

func (s *CaptureService) persist(ctx context.Context, userID string, extraction *extract.Extraction, raw []byte) (*models.ContentItem, *Job, error) {
	item := &models.ContentItem{
		ID:               uuid.NewString(),
		UserID:           userID,
		Type:             extraction.Type,
		Title:            itemTitle(extraction),
		Content:          extraction.Content,
		SourceURL:        extraction.SourceURL,
		Metadata:         extraction.Metadata,
		EnrichmentStatus: models.EnrichmentPending,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.store.Create(ctx, item); err != nil {
		return nil, nil, err
	}

	job := s.jobs.Submit("enrich:"+item.ID, func(jobCtx context.Context) error {
		return s.enrichItem(jobCtx, item, raw)
	})
	return item, job, nil
}

// enrichItem is the background half of capture: archive the raw payload,
// generate metadata, embed the text and index it. Any failure marks the
// item's enrichment as failed so it never stays pending forever.
func (s *CaptureService) enrichItem(ctx context.Context, item *models.ContentItem, raw []byte) error {
	if raw != nil && s.objects != nil {
		contentType, _ := item.Metadata["media_type"].(string)
		if err := s.objects.Archive(ctx, item.UserID, item.ID, raw, contentType); err != nil {
			// Best effort; the extracted text is already persisted.
			s.log.WithUser(item.UserID).Warn("payload archive failed: " + err.Error())
		}
	}

	if err := s.runEnrichment(ctx, item); err != nil {
		if markErr := s.store.UpdateEnrichment(ctx, item.UserID, item.ID, nil, models.EnrichmentFailed); markErr != nil {
			s.log.WithUser(item.UserID).Error("marking enrichment failed: " + markErr.Error())
		}
		return err
	}
	return nil
}

func (s *CaptureService) runEnrichment(ctx context.Context, item *models.ContentItem) error {
	text := item.Content
	if text == "" {
		text = item.Title
	}

	var enrichment *models.Enrichment
	if text != "" {
		var err error
		enrichment, err = s.enricher.Enrich(ctx, text, item.Type)
		if err != nil {
			return fmt.Errorf("enrich item %s: %w", item.ID, err)
		}
	}

	if embeddable := embeddableText(item, enrichment); embeddable != "" {
		vector, err := s.embedder.Embed(ctx, embeddable)
		if err != nil {
			return fmt.Errorf("embed item %s: %w", item.ID, err)
		}
		if err := s.index.Insert(ctx, item.UserID, item.ID, vector); err != nil {
			return fmt.Errorf("index item %s: %w", item.ID, err)
		}
	}

	if err := s.store.UpdateEnrichment(ctx, item.UserID, item.ID, enrichment, models.EnrichmentCompleted); err != nil {
		return fmt.Errorf("record enrichment for %s: %w", item.ID, err)
	}
	return nil
}

// embeddableText picks the text the vector should represent: the stored
// content, falling back to generated metadata for text-free items like
// images.
func embeddableText(item *models.ContentItem, enrichment *models.Enrichment) string {
	if item.Content != "" {
		return item.Content
	}
	if enrichment != nil && enrichment.Description != "" {
		return enrichment.Title + " " + enrichment.Description
	}
	return item.Title
}

func itemTitle(extraction *extract.Extraction) string {
	if extraction.Title != "" {
		return extraction.Title
	}
	words := strings.Fields(extraction.Content)
	if len(words) == 0 {
		return string(extraction.Type)
	}

	var sb strings.Builder
	for _, word := range words {
		if sb.Len()+len(word)+1 > fallbackTitleChars {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(word)
	}
	if sb.Len() == 0 {
		return string(extraction.Type)
	}
	return sb.String()
}
