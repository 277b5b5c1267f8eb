package store

import (
	"context"
	"time"

	"storefront-service/internal/models"
)

const dateKeyLayout = "2006-01-02"

// salesDateKeys returns one key per day of the trailing window ending at now,
// oldest first. Every day is present so empty days render as zero.
func salesDateKeys(now time.Time, days int) []string {
	keys := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		keys = append(keys, now.AddDate(0, 0, -i).Format(dateKeyLayout))
	}
	return keys
}

// GetSalesByDate buckets order totals per day over the trailing window. The
// result holds exactly one entry per day, zero-filled where no orders exist.
// Days are UTC days on both sides, keys and grouping alike, so the session
// timezone of the database never shifts an order onto a missing key.
func (s *Store) GetSalesByDate(ctx context.Context, days int) (map[string]float64, error) {
	now := time.Now().UTC()
	sales := make(map[string]float64, days)
	for _, key := range salesDateKeys(now, days) {
		sales[key] = 0
	}

	windowStart := now.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	rows := []struct {
		Day   time.Time `db:"day"`
		Total float64   `db:"total"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT DATE_TRUNC('day', created_at AT TIME ZONE 'UTC') AS day, SUM(total) AS total
		FROM orders
		WHERE created_at >= $1
		GROUP BY day`, windowStart); err != nil {
		return nil, err
	}

	for _, row := range rows {
		key := row.Day.UTC().Format(dateKeyLayout)
		if _, ok := sales[key]; ok {
			sales[key] = row.Total
		}
	}

	return sales, nil
}

// GetTopProducts returns the best sellers by soldCount. Products that never
// sold are excluded.
func (s *Store) GetTopProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, `
		SELECT * FROM products
		WHERE sold_count > 0
		ORDER BY sold_count DESC
		LIMIT $1`, limit)
	return products, err
}

// GetRecentOrders returns the most recent orders, newest first.
func (s *Store) GetRecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC LIMIT $1", limit)
	return orders, err
}

// CountOrdersSince counts orders created at or after the given time.
func (s *Store) CountOrdersSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM orders WHERE created_at >= $1", since)
	return count, err
}

// GetTotalSales sums every order total.
func (s *Store) GetTotalSales(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(total), 0) FROM orders")
	return total, err
}

// CountActiveProducts counts sellable products: not inactive and in stock.
func (s *Store) CountActiveProducts(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM products WHERE status <> $1 AND stock > 0",
		models.ProductStatusInactive)
	return count, err
}

// CountLowStockProducts counts products at or below their low-stock
// threshold but not yet depleted. Products without a minStock of their own
// fall back to the shop-wide threshold.
func (s *Store) CountLowStockProducts(ctx context.Context, fallbackThreshold int) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM products
		WHERE stock > 0
		  AND stock <= CASE WHEN min_stock > 0 THEN min_stock ELSE $1 END`,
		fallbackThreshold)
	return count, err
}

// CountOutOfStockProducts counts depleted products.
func (s *Store) CountOutOfStockProducts(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM products WHERE stock = 0")
	return count, err
}
