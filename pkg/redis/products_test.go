package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenshop/api/pkg/models"
)

func TestProductCache_SetAndGet(t *testing.T) {
	client, _ := setupTestClient(t)
	cache := NewProductCache(client)
	ctx := context.Background()

	product := &models.Product{
		ID:    7,
		Title: "Walnut Desk Lamp",
		Price: 50,
		Stock: 10,
	}
	require.NoError(t, cache.Set(ctx, product))

	cached, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, product.Title, cached.Title)
	assert.Equal(t, product.Price, cached.Price)
}

func TestProductCache_Miss(t *testing.T) {
	client, _ := setupTestClient(t)
	cache := NewProductCache(client)

	cached, err := cache.Get(context.Background(), 999)
	assert.Error(t, err)
	assert.Nil(t, cached)
}

func TestProductCache_CorruptEntry(t *testing.T) {
	client, mr := setupTestClient(t)
	cache := NewProductCache(client)

	mr.Set(productKey(7), "{not valid json")

	_, err := cache.Get(context.Background(), 7)
	assert.Error(t, err)
}

func TestProductCache_Invalidate(t *testing.T) {
	client, mr := setupTestClient(t)
	cache := NewProductCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &models.Product{ID: 7, Title: "Lamp"}))

	require.NoError(t, cache.Invalidate(ctx, 7))

	_, err := cache.Get(ctx, 7)
	assert.Error(t, err)
	assert.False(t, mr.Exists(productKey(7)))
}

func TestProductCache_RecentList(t *testing.T) {
	client, mr := setupTestClient(t)
	cache := NewProductCache(client)
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		require.NoError(t, cache.Set(ctx, &models.Product{ID: id, Title: "P"}))
	}

	recent, err := mr.List("products:recent")
	require.NoError(t, err)
	// Most recent first.
	assert.Equal(t, []string{"3", "2", "1"}, recent)
}

func TestProductCache_SerializedShape(t *testing.T) {
	client, mr := setupTestClient(t)
	cache := NewProductCache(client)

	require.NoError(t, cache.Set(context.Background(), &models.Product{ID: 7, Price: 19.99}))

	raw, err := mr.Get(productKey(7))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, 19.99, decoded["price"])
}
