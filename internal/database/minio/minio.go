package minio

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/STop211650/ai-scrapbook/internal/config"
)

// Connect creates the MinIO client and verifies connectivity by listing
// buckets. The client manages its own connections and needs no Close.
func Connect(ctx context.Context, cfg *config.MinIOConfig) (*minio.Client, error) {
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create MinIO client: %w", err)
	}
	if _, err := c.ListBuckets(ctx); err != nil {
		return nil, fmt.Errorf("MinIO connectivity check failed: %w", err)
	}
	return c, nil
}

// HealthCheck verifies connectivity and authentication.
func HealthCheck(ctx context.Context, c *minio.Client) error {
	if c == nil {
		return fmt.Errorf("MinIO client is not initialized")
	}
	if _, err := c.ListBuckets(ctx); err != nil {
		return fmt.Errorf("MinIO health check failed: %w", err)
	}
	return nil
}
