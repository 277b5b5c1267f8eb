package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-service/internal/broker"
	"storefront-service/internal/errs"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
)

// CatalogService serves catalog reads from an in-memory snapshot of the
// product collection. The snapshot is a rebuildable cache; the store stays
// the only source of truth. Refreshes come from the snapshot worker, either
// on its periodic tick (the staleness bound) or on change events.
type CatalogService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger

	mu       sync.RWMutex
	snapshot []models.Product
	loadedAt time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, eventPublisher *broker.EventPublisher) *CatalogService {
	return &CatalogService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// Refresh reloads the product snapshot from the store.
func (cs *CatalogService) Refresh(ctx context.Context, trigger string) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.Refresh")
	defer span.End()

	products, err := cs.store.GetProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load product snapshot: %w", err)
	}

	cs.mu.Lock()
	cs.snapshot = products
	cs.loadedAt = time.Now()
	cs.mu.Unlock()

	util.CatalogRefreshTotal.WithLabelValues(trigger).Inc()
	cs.logger.Debug("Catalog snapshot refreshed",
		zap.String("trigger", trigger),
		zap.Int("products", len(products)))
	return nil
}

// Snapshot returns a copy of the current product snapshot.
func (cs *CatalogService) Snapshot() []models.Product {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	products := make([]models.Product, len(cs.snapshot))
	copy(products, cs.snapshot)
	return products
}

// SnapshotAge reports how long ago the snapshot was loaded.
func (cs *CatalogService) SnapshotAge() time.Duration {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	if cs.loadedAt.IsZero() {
		return 0
	}
	return time.Since(cs.loadedAt)
}

// ListProducts filters and sorts the snapshot.
func (cs *CatalogService) ListProducts(filter Filter, sortBy string, descending bool) []models.Product {
	products := FilterProducts(cs.Snapshot(), filter)
	if sortBy != "" {
		products = SortProducts(products, sortBy, descending)
	}
	return products
}

// ActiveProducts returns sellable products: not inactive and in stock.
func (cs *CatalogService) ActiveProducts() []models.Product {
	var active []models.Product
	for _, p := range cs.Snapshot() {
		if p.Status != models.ProductStatusInactive && p.Stock > 0 {
			active = append(active, p)
		}
	}
	return active
}

// FeaturedProducts returns active products flagged as featured.
func (cs *CatalogService) FeaturedProducts() []models.Product {
	var featured []models.Product
	for _, p := range cs.Snapshot() {
		if p.Featured && p.Status == models.ProductStatusActive {
			featured = append(featured, p)
		}
	}
	return featured
}

// GetProduct reads a single product from the store, not the snapshot, so
// stock-sensitive callers always see the live record.
func (cs *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return cs.store.GetProductByID(ctx, id)
}

// CreateProduct validates and inserts a product, then announces the change.
func (cs *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if err := validateProduct(p); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = models.ProductStatusActive
	}

	if err := cs.store.CreateProduct(ctx, p); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	cs.announceProductChange(ctx, p.ID, "created")
	return nil
}

// UpdateProduct validates and replaces a product, then announces the change.
func (cs *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	if err := validateProduct(p); err != nil {
		return err
	}

	if err := cs.store.UpdateProduct(ctx, p); err != nil {
		return err
	}

	cs.announceProductChange(ctx, p.ID, "updated")
	return nil
}

// DeleteProduct removes a product and announces the change.
func (cs *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := cs.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	cs.announceProductChange(ctx, id, "deleted")
	return nil
}

// RateProduct records a user's 1-5 rating for a product, replacing any
// earlier rating by the same user, and rewrites the product's denormalized
// rating aggregate. Fails when the ratings setting is disabled.
func (cs *CatalogService) RateProduct(ctx context.Context, productID, userID int64, rating int, comment string) (*models.Rating, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.RateProduct")
	defer span.End()

	allow, err := cs.store.GetSetting(ctx, models.SettingAllowRatings)
	if err == nil {
		if enabled, parseErr := strconv.ParseBool(allow); parseErr == nil && !enabled {
			return nil, errs.ErrRatingsDisabled
		}
	}

	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", errs.ErrValidation)
	}

	if _, err := cs.store.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}

	r := &models.Rating{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := cs.store.UpsertRating(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	if err := cs.store.UpdateProductRating(ctx, productID); err != nil {
		cs.logger.Error("Failed to update product rating aggregate",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}

	cs.announceProductChange(ctx, productID, "rated")
	return r, nil
}

// ProductRatings lists the ratings for a product.
func (cs *CatalogService) ProductRatings(ctx context.Context, productID int64) ([]models.Rating, error) {
	return cs.store.GetRatingsByProduct(ctx, productID)
}

// Categories lists the catalog categories.
func (cs *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return cs.store.GetCategories(ctx)
}

// CreateCategory inserts a catalog category.
func (cs *CatalogService) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.Name == "" {
		return fmt.Errorf("category name is required: %w", errs.ErrValidation)
	}
	return cs.store.CreateCategory(ctx, category)
}

// DeleteCategory removes a category. Products keep their category name;
// the collection is purely descriptive.
func (cs *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return cs.store.DeleteCategory(ctx, id)
}

func (cs *CatalogService) announceProductChange(ctx context.Context, productID int64, change string) {
	event := &models.ProductChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeProductChanged,
			Timestamp: time.Now(),
		},
		ProductID: productID,
		Change:    change,
	}
	if err := cs.eventPublisher.PublishProductChanged(ctx, event); err != nil {
		cs.logger.Error("Failed to publish ProductChanged event", zap.Error(err))
	}
}

func validateProduct(p *models.Product) error {
	if len(p.Name) < 2 {
		return fmt.Errorf("product name must be at least 2 characters: %w", errs.ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("product price must not be negative: %w", errs.ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("product stock must not be negative: %w", errs.ErrValidation)
	}
	return nil
}
