// Package store implements the persistence layer for captured content:
// the MongoDB item repository, the Milvus embedding index and the MinIO
// upload archive.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/STop211650/ai-scrapbook/internal/config"
	"github.com/STop211650/ai-scrapbook/internal/models"
)

// ErrNotFound marks a lookup for an item that does not exist or is not
// owned by the requesting user.
var ErrNotFound = errors.New("content item not found")

// MongoContentStore is the MongoDB-backed item repository. Every query is
// scoped to a user; items are never visible across users.
type MongoContentStore struct {
	collection *mongo.Collection
}

// NewMongoContentStore creates the repository on the configured collection.
func NewMongoContentStore(client *mongo.Client, cfg config.MongoConfig) *MongoContentStore {
	return &MongoContentStore{
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}
}

// EnsureIndexes creates the text index backing keyword search and the
// user-scoping index. Safe to call on every start.
func (s *MongoContentStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "content", Value: "text"},
				{Key: "tags", Value: "text"},
			},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create content indexes: %w", err)
	}
	return nil
}

// Create persists a new content item.
func (s *MongoContentStore) Create(ctx context.Context, item *models.ContentItem) error {
	if _, err := s.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("insert content item: %w", err)
	}
	return nil
}

// FindByID fetches one item owned by userID.
func (s *MongoContentStore) FindByID(ctx context.Context, userID, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("find content item: %w", err)
	}
	return &item, nil
}

// FindByIDs fetches the given items in one query. IDs that do not exist or
// belong to another user are simply absent from the result; the returned
// order is whatever the database produces.
func (s *MongoContentStore) FindByIDs(ctx context.Context, userID string, ids []string) ([]models.ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := s.collection.Find(ctx, bson.M{
		"_id":     bson.M{"$in": ids},
		"user_id": userID,
	})
	if err != nil {
		return nil, fmt.Errorf("find content items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.ContentItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode content items: %w", err)
	}
	return items, nil
}

// Delete removes one item owned by userID.
func (s *MongoContentStore) Delete(ctx context.Context, userID, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete content item: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// KeywordSearch runs a full-text query over the user's items, ordered by
// text relevance.
func (s *MongoContentStore) KeywordSearch(ctx context.Context, userID, query string, limit int) ([]models.ContentItem, error) {
	filter := bson.M{
		"user_id": userID,
		"$text":   bson.M{"$search": query},
	}
	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.ContentItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return items, nil
}

// UpdateEnrichment writes the generated metadata and the terminal job status
// onto an item. Empty enrichment fields are left untouched so a degraded
// enrichment never erases extracted values.
func (s *MongoContentStore) UpdateEnrichment(ctx context.Context, userID, id string, enrichment *models.Enrichment, status models.EnrichmentStatus) error {
	set := bson.M{"enrichment_status": status}
	if enrichment != nil {
		if enrichment.Title != "" {
			set["title"] = enrichment.Title
		}
		if enrichment.Description != "" {
			set["description"] = enrichment.Description
		}
		if len(enrichment.Tags) > 0 {
			set["tags"] = enrichment.Tags
		}
	}

	result, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("update enrichment: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
