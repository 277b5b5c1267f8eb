package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"storefront-service/internal/models"
)

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Silk Robe", Description: "Soft silk robe", Category: "clothing", Tags: "silk,luxury", Price: 49.99, Stock: 10, Status: models.ProductStatusActive, AverageRating: 4.5, CreatedAt: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Name: "Scented Candle", Description: "Vanilla candle", Category: "home", Tags: "candle", Price: 12.50, Stock: 2, Status: models.ProductStatusSale, AverageRating: 3.8, CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 3, Name: "Massage Oil", Description: "Lavender oil", Category: "wellness", Tags: "oil,lavender", Price: 24.00, Stock: 0, Status: models.ProductStatusActive, AverageRating: 4.9, CreatedAt: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)},
		{ID: 4, Name: "Satin Pillowcase", Description: "Smooth satin", Category: "home", Tags: "satin", Price: 19.99, Stock: 50, Status: models.ProductStatusNew, AverageRating: 4.1, CreatedAt: time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)},
	}
}

func TestFilterProductsByCategory(t *testing.T) {
	products := sampleProducts()

	filtered := FilterProducts(products, Filter{Category: "home"})
	assert.Len(t, filtered, 2)
	for _, p := range filtered {
		assert.Equal(t, "home", p.Category)
	}

	assert.Len(t, FilterProducts(products, Filter{Category: "all"}), len(products))
	assert.Len(t, FilterProducts(products, Filter{Category: ""}), len(products))
	assert.Empty(t, FilterProducts(products, Filter{Category: "missing"}))
}

func TestFilterProductsByStatus(t *testing.T) {
	products := sampleProducts()

	sale := FilterProducts(products, Filter{Status: "sale"})
	assert.Len(t, sale, 1)
	assert.Equal(t, int64(2), sale[0].ID)

	// "low" derives from stock, not the status field. Product 2 has stock 2,
	// under the default threshold; product 3 is out of stock and excluded.
	low := FilterProducts(products, Filter{Status: "low"})
	assert.Len(t, low, 1)
	assert.Equal(t, int64(2), low[0].ID)
}

func TestFilterProductsBySearch(t *testing.T) {
	products := sampleProducts()

	// Case-insensitive, matches across name, description, category and tags.
	assert.Len(t, FilterProducts(products, Filter{Search: "SILK"}), 1)
	assert.Len(t, FilterProducts(products, Filter{Search: "lavender"}), 1)
	assert.Len(t, FilterProducts(products, Filter{Search: "home"}), 2)
	assert.Empty(t, FilterProducts(products, Filter{Search: "nonexistent"}))
}

func TestFilterProductsByPriceRange(t *testing.T) {
	products := sampleProducts()

	filtered := FilterProducts(products, Filter{MinPrice: 15, MaxPrice: 30})
	assert.Len(t, filtered, 2)
	for _, p := range filtered {
		assert.GreaterOrEqual(t, p.Price, 15.0)
		assert.LessOrEqual(t, p.Price, 30.0)
	}
}

func TestFilterProductsCompose(t *testing.T) {
	products := sampleProducts()

	combined := Filter{Category: "home", MaxPrice: 15}

	// Applying two filters in sequence equals applying their intersection,
	// in either order.
	sequential := FilterProducts(FilterProducts(products, Filter{Category: "home"}), Filter{MaxPrice: 15})
	reversed := FilterProducts(FilterProducts(products, Filter{MaxPrice: 15}), Filter{Category: "home"})
	direct := FilterProducts(products, combined)

	assert.Equal(t, direct, sequential)
	assert.Equal(t, direct, reversed)
	assert.Len(t, direct, 1)
	assert.Equal(t, int64(2), direct[0].ID)
}

func TestFilterProductsZeroValueMatchesAll(t *testing.T) {
	products := sampleProducts()
	assert.Equal(t, products, FilterProducts(products, Filter{}))
}

func TestSortProducts(t *testing.T) {
	products := sampleProducts()

	byPrice := SortProducts(products, SortByPrice, false)
	assert.Equal(t, int64(2), byPrice[0].ID)
	assert.Equal(t, int64(1), byPrice[len(byPrice)-1].ID)

	byPriceDesc := SortProducts(products, SortByPrice, true)
	assert.Equal(t, int64(1), byPriceDesc[0].ID)

	byRating := SortProducts(products, SortByRating, true)
	assert.Equal(t, int64(3), byRating[0].ID)

	byDate := SortProducts(products, SortByDate, false)
	assert.Equal(t, int64(1), byDate[0].ID)

	// Sorting returns a copy; the input keeps its order.
	assert.Equal(t, int64(1), products[0].ID)
}

func TestSortProductsUnknownKeySortsByName(t *testing.T) {
	sorted := SortProducts(sampleProducts(), "bogus", false)
	assert.Equal(t, "Massage Oil", sorted[0].Name)
}

func TestLowStockThreshold(t *testing.T) {
	assert.Equal(t, defaultLowStock, lowStockThreshold(models.Product{}))
	assert.Equal(t, 10, lowStockThreshold(models.Product{MinStock: 10}))
}
