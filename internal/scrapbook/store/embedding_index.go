package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/STop211650/ai-scrapbook/internal/config"
)

const (
	fieldID        = "id"
	fieldUserID    = "user_id"
	fieldEmbedding = "embedding"

	maxIDLength = 64
)

// ScoredID is one nearest-neighbor hit: an item ID with its similarity.
type ScoredID struct {
	ID    string
	Score float32
}

// MilvusEmbeddingIndex stores one vector per content item and serves
// user-scoped nearest-neighbor queries.
type MilvusEmbeddingIndex struct {
	client     client.Client
	collection string
	dim        int
}

// NewMilvusEmbeddingIndex creates the index on the configured collection.
func NewMilvusEmbeddingIndex(c client.Client, cfg config.MilvusConfig) *MilvusEmbeddingIndex {
	return &MilvusEmbeddingIndex{
		client:     c,
		collection: cfg.Collection,
		dim:        cfg.Dim,
	}
}

// EnsureCollection creates the collection, its vector index and loads it
// into memory. Safe to call on every start.
func (m *MilvusEmbeddingIndex) EnsureCollection(ctx context.Context) error {
	exists, err := m.client.HasCollection(ctx, m.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}

	if !exists {
		schema := entity.NewSchema().WithName(m.collection).
			WithField(entity.NewField().WithName(fieldID).
				WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxIDLength).
				WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(fieldUserID).
				WithDataType(entity.FieldTypeVarChar).WithMaxLength(maxIDLength)).
			WithField(entity.NewField().WithName(fieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).WithDim(int64(m.dim)))

		if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}

		index, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
		if err != nil {
			return fmt.Errorf("build index params: %w", err)
		}
		if err := m.client.CreateIndex(ctx, m.collection, fieldEmbedding, index, false); err != nil {
			return fmt.Errorf("create vector index: %w", err)
		}
	}

	if err := m.client.LoadCollection(ctx, m.collection, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

// Insert stores the embedding for one item. An existing vector for the same
// ID is replaced.
func (m *MilvusEmbeddingIndex) Insert(ctx context.Context, userID, id string, vector []float32) error {
	idCol := entity.NewColumnVarChar(fieldID, []string{id})
	userCol := entity.NewColumnVarChar(fieldUserID, []string{userID})
	vecCol := entity.NewColumnFloatVector(fieldEmbedding, m.dim, [][]float32{vector})

	if _, err := m.client.Upsert(ctx, m.collection, "", idCol, userCol, vecCol); err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}

// Delete removes the embedding for one item.
func (m *MilvusEmbeddingIndex) Delete(ctx context.Context, userID, id string) error {
	expr := fmt.Sprintf(`%s == "%s" && %s == "%s"`,
		fieldID, escapeExpr(id), fieldUserID, escapeExpr(userID))
	if err := m.client.Delete(ctx, m.collection, "", expr); err != nil {
		return fmt.Errorf("delete embedding: %w", err)
	}
	return nil
}

// SearchSimilar returns the item IDs nearest to the query vector, scoped to
// one user, ordered by descending similarity.
func (m *MilvusEmbeddingIndex) SearchSimilar(ctx context.Context, userID string, vector []float32, limit int) ([]ScoredID, error) {
	searchParams, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("build search params: %w", err)
	}

	expr := fmt.Sprintf(`%s == "%s"`, fieldUserID, escapeExpr(userID))
	results, err := m.client.Search(ctx, m.collection, nil, expr,
		[]string{fieldID},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldEmbedding, entity.COSINE, limit, searchParams)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	var hits []ScoredID
	for _, result := range results {
		idCol, ok := result.IDs.(*entity.ColumnVarChar)
		if !ok {
			return nil, fmt.Errorf("vector search: unexpected id column type %T", result.IDs)
		}
		for i := 0; i < result.ResultCount; i++ {
			id, err := idCol.ValueByIdx(i)
			if err != nil {
				return nil, fmt.Errorf("vector search: read hit %d: %w", i, err)
			}
			hits = append(hits, ScoredID{ID: id, Score: result.Scores[i]})
		}
	}
	return hits, nil
}

// escapeExpr neutralizes quote characters so values interpolated into a
// Milvus boolean expression cannot break out of the string literal.
func escapeExpr(s string) string {
	return strings.NewReplacer(`"`, ``, `\`, ``).Replace(s)
}
