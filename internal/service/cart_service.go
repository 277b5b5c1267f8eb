package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront-service/internal/errs"
	"storefront-service/internal/models"
	"storefront-service/internal/util"
)

// cartStore is the slice of the store the cart service depends on.
type cartStore interface {
	GetCartItems(ctx context.Context, owner models.CartOwner) ([]models.CartItem, error)
	GetCartItemByID(ctx context.Context, id int64) (*models.CartItem, error)
	FindCartItem(ctx context.Context, owner models.CartOwner, productID int64) (*models.CartItem, error)
	AddCartItem(ctx context.Context, owner models.CartOwner, productID int64, quantity int) (*models.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteCartItem(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context, owner models.CartOwner) error
	MergeGuestCart(ctx context.Context, sessionID string, userID int64) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetShippingRuleByProvince(ctx context.Context, province string) (*models.ShippingRule, error)
}

// CartService owns cart reconciliation: line mutations guarded by live stock
// checks, total computation, and the guest-to-user migration on login.
type CartService struct {
	store  cartStore
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store cartStore) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CartLine joins a cart item with its product's live name, price and stock.
// LineTotal uses the price at query time, not the price when added.
type CartLine struct {
	models.CartItem
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	LineTotal float64 `json:"line_total"`
}

// CartSummary is a point-in-time snapshot of a cart with computed totals.
type CartSummary struct {
	Items    []CartLine `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Shipping float64    `json:"shipping"`
	Total    float64    `json:"total"`
}

// GetCart loads the owner's cart and computes totals. Shipping stays zero
// until a province is chosen; then the province's flat rule cost applies.
// Lines whose product has been deleted are dropped from the summary.
func (cs *CartService) GetCart(ctx context.Context, owner models.CartOwner, province string) (*CartSummary, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	items, err := cs.store.GetCartItems(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		product, err := cs.store.GetProductByID(ctx, item.ProductID)
		if err != nil {
			// Only a deleted product drops the line; a storage failure must
			// not shrink a cart that is about to be checked out.
			if !errors.Is(err, errs.ErrNotFound) {
				return nil, fmt.Errorf("failed to load cart line product: %w", err)
			}
			cs.logger.Warn("Cart line references missing product",
				zap.Int64("cart_item_id", item.ID),
				zap.Int64("product_id", item.ProductID))
			continue
		}
		lines = append(lines, CartLine{
			CartItem:  item,
			Name:      product.Name,
			Price:     product.Price,
			Stock:     product.Stock,
			LineTotal: product.Price * float64(item.Quantity),
		})
	}

	// A province without a rule, or with an inactive one, ships for free.
	shipping := 0.0
	if province != "" {
		rule, err := cs.store.GetShippingRuleByProvince(ctx, province)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		if rule != nil && rule.Status == models.ShippingStatusActive {
			shipping = rule.Cost
		}
	}

	summary := &CartSummary{Items: lines, Shipping: shipping}
	summary.Subtotal, summary.Total = ComputeTotals(lines, shipping)
	return summary, nil
}

// ComputeTotals computes a cart's subtotal and total from its lines and a
// flat shipping cost.
func ComputeTotals(lines []CartLine, shipping float64) (subtotal, total float64) {
	for _, line := range lines {
		subtotal += line.Price * float64(line.Quantity)
	}
	return subtotal, subtotal + shipping
}

// AddProduct creates or increments the owner's line for a product. A
// depleted product fails with ErrOutOfStock; a request that would push the
// line past live stock fails with ErrInsufficientStock and leaves the line
// untouched.
func (cs *CartService) AddProduct(ctx context.Context, owner models.CartOwner, productID int64, quantity int) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddProduct")
	defer span.End()

	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", errs.ErrValidation)
	}

	product, err := cs.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock == 0 {
		util.CartRejectionsTotal.WithLabelValues("out_of_stock").Inc()
		return nil, fmt.Errorf("product %d: %w", productID, errs.ErrOutOfStock)
	}

	existing, err := cs.store.FindCartItem(ctx, owner, productID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if existing.Quantity+quantity > product.Stock {
			util.CartRejectionsTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, fmt.Errorf("product %d: %w", productID, errs.ErrInsufficientStock)
		}
		if err := cs.store.UpdateCartItemQuantity(ctx, existing.ID, existing.Quantity+quantity); err != nil {
			return nil, err
		}
		existing.Quantity += quantity
		util.CartItemsAddedTotal.Inc()
		return existing, nil
	}

	if quantity > product.Stock {
		util.CartRejectionsTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, fmt.Errorf("product %d: %w", productID, errs.ErrInsufficientStock)
	}

	item, err := cs.store.AddCartItem(ctx, owner, productID, quantity)
	if err != nil {
		return nil, err
	}
	util.CartItemsAddedTotal.Inc()
	return item, nil
}

// UpdateQuantity sets a line's quantity. A non-positive quantity removes the
// line; a quantity above live stock fails with ErrInsufficientStock.
func (cs *CartService) UpdateQuantity(ctx context.Context, owner models.CartOwner, itemID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateQuantity")
	defer span.End()

	item, err := cs.store.GetCartItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if !ownsItem(owner, item) {
		return fmt.Errorf("cart item %d: %w", itemID, errs.ErrNotFound)
	}

	if quantity <= 0 {
		return cs.store.DeleteCartItem(ctx, itemID)
	}

	product, err := cs.store.GetProductByID(ctx, item.ProductID)
	if err != nil {
		return err
	}
	if quantity > product.Stock {
		util.CartRejectionsTotal.WithLabelValues("insufficient_stock").Inc()
		return fmt.Errorf("product %d: %w", item.ProductID, errs.ErrInsufficientStock)
	}

	return cs.store.UpdateCartItemQuantity(ctx, itemID, quantity)
}

// RemoveItem deletes a single line from the owner's cart.
func (cs *CartService) RemoveItem(ctx context.Context, owner models.CartOwner, itemID int64) error {
	item, err := cs.store.GetCartItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if !ownsItem(owner, item) {
		return fmt.Errorf("cart item %d: %w", itemID, errs.ErrNotFound)
	}
	return cs.store.DeleteCartItem(ctx, itemID)
}

// Clear empties the owner's cart.
func (cs *CartService) Clear(ctx context.Context, owner models.CartOwner) error {
	return cs.store.ClearCart(ctx, owner)
}

// MergeGuestCart folds a guest session's cart into a user's cart. Re-running
// it after the guest cart has emptied is a no-op.
func (cs *CartService) MergeGuestCart(ctx context.Context, sessionID string, userID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.MergeGuestCart")
	defer span.End()

	if err := cs.store.MergeGuestCart(ctx, sessionID, userID); err != nil {
		return fmt.Errorf("failed to merge guest cart: %w", err)
	}

	util.CartMergesTotal.Inc()
	cs.logger.Info("Guest cart merged",
		zap.String("session_id", sessionID),
		zap.Int64("user_id", userID))
	return nil
}

// UnavailableLine describes a cart line that live stock can no longer cover.
type UnavailableLine struct {
	Item      models.CartItem `json:"item"`
	Available int             `json:"available"`
}

// CheckAvailability reports the owner's cart lines whose product is missing
// or short on stock.
func (cs *CartService) CheckAvailability(ctx context.Context, owner models.CartOwner) ([]UnavailableLine, error) {
	items, err := cs.store.GetCartItems(ctx, owner)
	if err != nil {
		return nil, err
	}

	var unavailable []UnavailableLine
	for _, item := range items {
		product, err := cs.store.GetProductByID(ctx, item.ProductID)
		if err != nil {
			unavailable = append(unavailable, UnavailableLine{Item: item})
			continue
		}
		if product.Stock < item.Quantity {
			unavailable = append(unavailable, UnavailableLine{Item: item, Available: product.Stock})
		}
	}
	return unavailable, nil
}

func ownsItem(owner models.CartOwner, item *models.CartItem) bool {
	if owner.IsUser() {
		return item.UserID != nil && *item.UserID == owner.UserID
	}
	return item.SessionID != nil && *item.SessionID == owner.SessionID
}
