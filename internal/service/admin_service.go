package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
)

// AdminService serves the read-only projections behind the admin dashboard:
// counters, inventory buckets and filtered order listings. It never writes.
type AdminService struct {
	store             *store.Store
	logger            *zap.Logger
	lowStockThreshold int
	salesWindowDays   int
}

// NewAdminService creates a new admin service
func NewAdminService(store *store.Store, lowStockThreshold, salesWindowDays int) *AdminService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = defaultLowStock
	}
	if salesWindowDays <= 0 {
		salesWindowDays = 7
	}
	return &AdminService{
		store:             store,
		logger:            util.GetLogger(),
		lowStockThreshold: lowStockThreshold,
		salesWindowDays:   salesWindowDays,
	}
}

// DashboardStats assembles the dashboard counters. The day-over-day deltas
// compare today's sales and order counts against yesterday's.
func (as *AdminService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	ctx, span := util.StartSpan(ctx, "AdminService.DashboardStats")
	defer span.End()

	stats := &models.DashboardStats{}
	var err error

	if stats.TotalProducts, err = as.store.CountProducts(ctx); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if stats.ActiveProducts, err = as.store.CountActiveProducts(ctx); err != nil {
		return nil, fmt.Errorf("failed to count active products: %w", err)
	}
	if stats.TotalOrders, err = as.store.CountOrders(ctx); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if stats.TotalUsers, err = as.store.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if stats.TotalSales, err = as.store.GetTotalSales(ctx); err != nil {
		return nil, fmt.Errorf("failed to sum sales: %w", err)
	}
	if stats.LowStockCount, err = as.store.CountLowStockProducts(ctx, as.lowStockThreshold); err != nil {
		return nil, fmt.Errorf("failed to count low stock: %w", err)
	}
	if stats.OutOfStockCount, err = as.store.CountOutOfStockProducts(ctx); err != nil {
		return nil, fmt.Errorf("failed to count out of stock: %w", err)
	}

	// Day boundaries are UTC to line up with the sales window's keys.
	now := time.Now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	yesterdayStart := todayStart.AddDate(0, 0, -1)

	if stats.TodayOrders, err = as.store.CountOrdersSince(ctx, todayStart); err != nil {
		return nil, fmt.Errorf("failed to count today orders: %w", err)
	}
	sinceYesterday, err := as.store.CountOrdersSince(ctx, yesterdayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count yesterday orders: %w", err)
	}
	yesterdayOrders := sinceYesterday - stats.TodayOrders

	sales, err := as.store.GetSalesByDate(ctx, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales window: %w", err)
	}
	todaySales := sales[todayStart.Format("2006-01-02")]
	yesterdaySales := sales[yesterdayStart.Format("2006-01-02")]

	stats.SalesChange = PercentChange(todaySales, yesterdaySales)
	stats.OrdersChange = PercentChange(float64(stats.TodayOrders), float64(yesterdayOrders))

	return stats, nil
}

// PercentChange computes the day-over-day percentage delta. A zero baseline
// maps to 0 when today is also zero and 100 otherwise.
func PercentChange(today, yesterday float64) float64 {
	if yesterday == 0 {
		if today == 0 {
			return 0
		}
		return 100
	}
	return (today - yesterday) / yesterday * 100
}

// InventoryBuckets groups products by stock condition.
type InventoryBuckets struct {
	OutOfStock  []models.Product `json:"out_of_stock"`
	LowStock    []models.Product `json:"low_stock"`
	New         []models.Product `json:"new"`
	BackInStock []models.Product `json:"back_in_stock"`
}

// Inventory loads the product collection and buckets it.
func (as *AdminService) Inventory(ctx context.Context) (*InventoryBuckets, error) {
	products, err := as.store.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	buckets := BucketInventory(products, time.Now())
	return &buckets, nil
}

// BucketInventory groups a product snapshot into inventory buckets:
// out-of-stock (stock 0), low-stock (0 < stock ≤ threshold), new (status
// "new"), and back-in-stock (restocked from zero within the last 7 days).
func BucketInventory(products []models.Product, now time.Time) InventoryBuckets {
	weekAgo := now.AddDate(0, 0, -7)
	var buckets InventoryBuckets

	for _, p := range products {
		switch {
		case p.Stock == 0:
			buckets.OutOfStock = append(buckets.OutOfStock, p)
		case p.Stock <= lowStockThreshold(p):
			buckets.LowStock = append(buckets.LowStock, p)
		}

		if p.Status == models.ProductStatusNew {
			buckets.New = append(buckets.New, p)
		}
		if p.Status == models.ProductStatusBack &&
			p.LastRestocked != nil && p.LastRestocked.After(weekAgo) &&
			p.Stock > 0 && p.PreviousStock == 0 {
			buckets.BackInStock = append(buckets.BackInStock, p)
		}
	}

	return buckets
}

// ListOrders retrieves orders newest-first, narrowed by an inclusive date
// range and status. The To bound is widened to the end of its day.
func (as *AdminService) ListOrders(ctx context.Context, from, to *time.Time, status string) ([]models.Order, error) {
	filter := store.OrderFilter{From: from, Status: status}
	if to != nil {
		endOfDay := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), to.Location())
		filter.To = &endOfDay
	}
	return as.store.GetOrders(ctx, filter)
}

// SalesByDate buckets order totals per day over the configured trailing
// window.
func (as *AdminService) SalesByDate(ctx context.Context, days int) (map[string]float64, error) {
	if days <= 0 {
		days = as.salesWindowDays
	}
	return as.store.GetSalesByDate(ctx, days)
}

// TopProducts lists the best sellers by soldCount.
func (as *AdminService) TopProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 5
	}
	return as.store.GetTopProducts(ctx, limit)
}

// RecentOrders lists the most recent orders.
func (as *AdminService) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	return as.store.GetRecentOrders(ctx, limit)
}
