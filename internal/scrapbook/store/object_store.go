package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"

	"github.com/STop211650/ai-scrapbook/internal/config"
)

// MinIOObjectStore archives the raw bytes of captured uploads and assets so
// the original payload survives independently of the extracted text.
type MinIOObjectStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOObjectStore creates the archive on the configured bucket.
func NewMinIOObjectStore(client *minio.Client, cfg config.MinIOConfig) *MinIOObjectStore {
	return &MinIOObjectStore{client: client, bucket: cfg.Bucket}
}

// EnsureBucket creates the archive bucket if it does not exist.
func (s *MinIOObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// Archive stores one payload under userID/itemID.
func (s *MinIOObjectStore) Archive(ctx context.Context, userID, itemID string, data []byte, contentType string) error {
	objectName := userID + "/" + itemID
	_, err := s.client.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("archive object %s: %w", objectName, err)
	}
	return nil
}

// Remove deletes one archived payload. Removing an object that was never
// archived is not an error.
func (s *MinIOObjectStore) Remove(ctx context.Context, userID, itemID string) error {
	objectName := userID + "/" + itemID
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", objectName, err)
	}
	return nil
}
