package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumenshop/api/pkg/models"
)

const productCacheTTL = 24 * time.Hour

// ProductCache caches product detail reads. It deliberately fronts ONLY
// the catalog display endpoints; checkout always re-reads live rows from
// the database.
type ProductCache struct {
	client *redis.Client
}

func NewProductCache(client *redis.Client) *ProductCache {
	return &ProductCache{client: client}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *ProductCache) Get(ctx context.Context, id int64) (*models.Product, error) {
	productJSON, err := c.client.Get(ctx, productKey(id)).Result()
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal([]byte(productJSON), &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

func (c *ProductCache) Set(ctx context.Context, product *models.Product) error {
	productJSON, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %d: %w", product.ID, err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, productKey(product.ID), productJSON, productCacheTTL)
	pipe.LPush(ctx, "products:recent", product.ID)
	pipe.LTrim(ctx, "products:recent", 0, 99)
	pipe.Expire(ctx, "products:recent", productCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache product %d: %w", product.ID, err)
	}
	return nil
}

func (c *ProductCache) Invalidate(ctx context.Context, id int64) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, productKey(id))
	pipe.LRem(ctx, "products:recent", 0, id)
	_, err := pipe.Exec(ctx)
	return err
}
