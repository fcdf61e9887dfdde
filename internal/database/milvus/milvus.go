package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"github.com/STop211650/ai-scrapbook/internal/config"
)

// Connect establishes the Milvus connection. The returned client is shared
// by all requests; the SDK client is safe for concurrent use.
func Connect(ctx context.Context, cfg *config.MilvusConfig) (client.Client, error) {
	c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to Milvus: %w", err)
	}
	return c, nil
}

// HealthCheck verifies the connection by listing collections.
func HealthCheck(ctx context.Context, c client.Client) error {
	if c == nil {
		return fmt.Errorf("Milvus client is not initialized")
	}
	if _, err := c.ListCollections(ctx); err != nil {
		return fmt.Errorf("Milvus health check failed: %w", err)
	}
	return nil
}
