package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"storefront-service/internal/models"
)

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 50.0, PercentChange(150, 100), 0.001)
	assert.InDelta(t, -25.0, PercentChange(75, 100), 0.001)
	assert.InDelta(t, 0.0, PercentChange(100, 100), 0.001)

	// Zero baselines have no meaningful ratio.
	assert.Equal(t, 0.0, PercentChange(0, 0))
	assert.Equal(t, 100.0, PercentChange(42, 0))
}

func TestBucketInventory(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, 0, -2)
	old := now.AddDate(0, 0, -10)

	products := []models.Product{
		{ID: 1, Stock: 0, Status: models.ProductStatusActive},
		{ID: 2, Stock: 2, Status: models.ProductStatusActive},
		{ID: 3, Stock: 20, Status: models.ProductStatusNew},
		{ID: 4, Stock: 5, Status: models.ProductStatusBack, LastRestocked: &recent, PreviousStock: 0},
		{ID: 5, Stock: 5, Status: models.ProductStatusBack, LastRestocked: &old, PreviousStock: 0},
		{ID: 6, Stock: 5, Status: models.ProductStatusBack, LastRestocked: &recent, PreviousStock: 3},
	}

	buckets := BucketInventory(products, now)

	assert.Len(t, buckets.OutOfStock, 1)
	assert.Equal(t, int64(1), buckets.OutOfStock[0].ID)

	assert.Len(t, buckets.LowStock, 1)
	assert.Equal(t, int64(2), buckets.LowStock[0].ID)

	assert.Len(t, buckets.New, 1)
	assert.Equal(t, int64(3), buckets.New[0].ID)

	// Back-in-stock needs a restock from zero within the last 7 days.
	assert.Len(t, buckets.BackInStock, 1)
	assert.Equal(t, int64(4), buckets.BackInStock[0].ID)
}

func TestBucketInventoryRespectsMinStock(t *testing.T) {
	now := time.Now()

	products := []models.Product{
		{ID: 1, Stock: 8, MinStock: 10, Status: models.ProductStatusActive},
		{ID: 2, Stock: 8, Status: models.ProductStatusActive},
	}

	buckets := BucketInventory(products, now)

	// Product 1 carries its own threshold; product 2 uses the default.
	assert.Len(t, buckets.LowStock, 1)
	assert.Equal(t, int64(1), buckets.LowStock[0].ID)
}
