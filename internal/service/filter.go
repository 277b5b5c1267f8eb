package service

import (
	"sort"
	"strings"

	"storefront-service/internal/models"
)

// Filter narrows a product snapshot. Zero-value fields apply no constraint,
// so filters compose: applying f1 then f2 equals applying their
// intersection. Results keep the snapshot's iteration order.
type Filter struct {
	// Category matches product.Category exactly. "all" and "" mean any.
	Category string
	// Status is one of "new", "sale", "back" or "low"; "low" derives from
	// stock against the product's low-stock threshold. "all" and "" mean any.
	Status string
	// Search is a case-insensitive substring match against name,
	// description, category and tags.
	Search string
	// MinPrice and MaxPrice bound the price range when positive.
	MinPrice float64
	MaxPrice float64
}

// FilterProducts applies a filter to a product snapshot.
func FilterProducts(products []models.Product, f Filter) []models.Product {
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if matchesFilter(p, f) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func matchesFilter(p models.Product, f Filter) bool {
	if f.Category != "" && f.Category != "all" && p.Category != f.Category {
		return false
	}

	switch f.Status {
	case "", "all":
	case "low":
		if p.Stock == 0 || p.Stock > lowStockThreshold(p) {
			return false
		}
	default:
		if p.Status != f.Status {
			return false
		}
	}

	if f.Search != "" {
		query := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) &&
			!strings.Contains(strings.ToLower(p.Category), query) &&
			!strings.Contains(strings.ToLower(p.Tags), query) {
			return false
		}
	}

	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}

	return true
}

// defaultLowStock applies when a product carries no minStock of its own.
const defaultLowStock = 3

func lowStockThreshold(p models.Product) int {
	if p.MinStock > 0 {
		return p.MinStock
	}
	return defaultLowStock
}

// Sort keys
const (
	SortByName   = "name"
	SortByPrice  = "price"
	SortByStock  = "stock"
	SortByRating = "rating"
	SortByDate   = "date"
)

// SortProducts returns a sorted copy of the given products. Sorting is a
// separate, explicit operation from filtering. Unknown keys sort by name.
func SortProducts(products []models.Product, sortBy string, descending bool) []models.Product {
	sorted := make([]models.Product, len(products))
	copy(sorted, products)

	less := func(a, b models.Product) bool {
		switch sortBy {
		case SortByPrice:
			return a.Price < b.Price
		case SortByStock:
			return a.Stock < b.Stock
		case SortByRating:
			return a.AverageRating < b.AverageRating
		case SortByDate:
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.Name < b.Name
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})

	return sorted
}
