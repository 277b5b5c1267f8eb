package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/errs"
	"storefront-service/internal/models"
)

// fakeCartStore backs cart tests with in-memory maps. productErr, when set,
// is returned by every GetProductByID call to simulate storage failures.
type fakeCartStore struct {
	products   map[int64]*models.Product
	items      map[int64]*models.CartItem
	nextItemID int64
	productErr error
}

func newFakeCartStore(products ...*models.Product) *fakeCartStore {
	f := &fakeCartStore{
		products: map[int64]*models.Product{},
		items:    map[int64]*models.CartItem{},
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCartStore) GetCartItems(ctx context.Context, owner models.CartOwner) ([]models.CartItem, error) {
	var items []models.CartItem
	for _, item := range f.items {
		if itemBelongsTo(item, owner) {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (f *fakeCartStore) GetCartItemByID(ctx context.Context, id int64) (*models.CartItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("cart item %d: %w", id, errs.ErrNotFound)
	}
	copied := *item
	return &copied, nil
}

func (f *fakeCartStore) FindCartItem(ctx context.Context, owner models.CartOwner, productID int64) (*models.CartItem, error) {
	for _, item := range f.items {
		if item.ProductID == productID && itemBelongsTo(item, owner) {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeCartStore) AddCartItem(ctx context.Context, owner models.CartOwner, productID int64, quantity int) (*models.CartItem, error) {
	f.nextItemID++
	item := &models.CartItem{ID: f.nextItemID, ProductID: productID, Quantity: quantity}
	if owner.IsUser() {
		userID := owner.UserID
		item.UserID = &userID
	} else {
		sessionID := owner.SessionID
		item.SessionID = &sessionID
	}
	f.items[item.ID] = item
	copied := *item
	return &copied, nil
}

func (f *fakeCartStore) UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	item, ok := f.items[itemID]
	if !ok {
		return fmt.Errorf("cart item %d: %w", itemID, errs.ErrNotFound)
	}
	item.Quantity = quantity
	return nil
}

func (f *fakeCartStore) DeleteCartItem(ctx context.Context, itemID int64) error {
	delete(f.items, itemID)
	return nil
}

func (f *fakeCartStore) ClearCart(ctx context.Context, owner models.CartOwner) error {
	for id, item := range f.items {
		if itemBelongsTo(item, owner) {
			delete(f.items, id)
		}
	}
	return nil
}

func (f *fakeCartStore) MergeGuestCart(ctx context.Context, sessionID string, userID int64) error {
	return nil
}

func (f *fakeCartStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	if f.productErr != nil {
		return nil, f.productErr
	}
	product, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, errs.ErrNotFound)
	}
	copied := *product
	return &copied, nil
}

func (f *fakeCartStore) GetShippingRuleByProvince(ctx context.Context, province string) (*models.ShippingRule, error) {
	return nil, fmt.Errorf("shipping rule for %s: %w", province, errs.ErrNotFound)
}

func itemBelongsTo(item *models.CartItem, owner models.CartOwner) bool {
	if owner.IsUser() {
		return item.UserID != nil && *item.UserID == owner.UserID
	}
	return item.SessionID != nil && *item.SessionID == owner.SessionID
}

func TestComputeTotals(t *testing.T) {
	lines := []CartLine{
		{CartItem: models.CartItem{Quantity: 2}, Price: 10.00},
		{CartItem: models.CartItem{Quantity: 1}, Price: 5.50},
	}

	subtotal, total := ComputeTotals(lines, 4.00)

	assert.InDelta(t, 25.50, subtotal, 0.001)
	assert.InDelta(t, 29.50, total, 0.001)
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	subtotal, total := ComputeTotals(nil, 4.00)

	assert.Zero(t, subtotal)
	assert.InDelta(t, 4.00, total, 0.001)
}

func TestAddProductRejectsQuantityBeyondStock(t *testing.T) {
	fake := newFakeCartStore(&models.Product{ID: 1, Name: "Silk Robe", Price: 49.99, Stock: 5})
	cs := NewCartService(fake)
	owner := models.CartOwner{SessionID: "session_test"}
	ctx := context.Background()

	first, err := cs.AddProduct(ctx, owner, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Quantity)

	// 3 + 3 exceeds the 5 in stock; the existing line stays untouched.
	_, err = cs.AddProduct(ctx, owner, 1, 3)
	assert.ErrorIs(t, err, errs.ErrInsufficientStock)

	line, err := fake.GetCartItemByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
}

func TestAddProductMergesIntoExistingLine(t *testing.T) {
	fake := newFakeCartStore(&models.Product{ID: 1, Stock: 10})
	cs := NewCartService(fake)
	owner := models.CartOwner{SessionID: "session_test"}
	ctx := context.Background()

	first, err := cs.AddProduct(ctx, owner, 1, 2)
	require.NoError(t, err)

	second, err := cs.AddProduct(ctx, owner, 1, 3)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
}

func TestAddProductOutOfStock(t *testing.T) {
	fake := newFakeCartStore(&models.Product{ID: 1, Stock: 0})
	cs := NewCartService(fake)

	_, err := cs.AddProduct(context.Background(), models.CartOwner{SessionID: "s"}, 1, 1)

	assert.ErrorIs(t, err, errs.ErrOutOfStock)
}

func TestUpdateQuantityNonPositiveRemovesLine(t *testing.T) {
	fake := newFakeCartStore(&models.Product{ID: 1, Stock: 10})
	cs := NewCartService(fake)
	owner := models.CartOwner{SessionID: "session_test"}
	ctx := context.Background()

	item, err := cs.AddProduct(ctx, owner, 1, 2)
	require.NoError(t, err)

	require.NoError(t, cs.UpdateQuantity(ctx, owner, item.ID, 0))

	_, err = fake.GetCartItemByID(ctx, item.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateQuantityRejectsBeyondStock(t *testing.T) {
	fake := newFakeCartStore(&models.Product{ID: 1, Stock: 4})
	cs := NewCartService(fake)
	owner := models.CartOwner{SessionID: "session_test"}
	ctx := context.Background()

	item, err := cs.AddProduct(ctx, owner, 1, 2)
	require.NoError(t, err)

	err = cs.UpdateQuantity(ctx, owner, item.ID, 5)
	assert.ErrorIs(t, err, errs.ErrInsufficientStock)

	line, err := fake.GetCartItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
}

func TestGetCartDropsDeletedProductLines(t *testing.T) {
	fake := newFakeCartStore(&models.Product{ID: 1, Name: "Kept", Price: 10.00, Stock: 5})
	cs := NewCartService(fake)
	owner := models.CartOwner{SessionID: "session_test"}
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, owner, 1, 2)
	require.NoError(t, err)

	// A line whose product is gone disappears from the summary.
	orphanID := int64(99)
	_, err = fake.AddCartItem(ctx, owner, orphanID, 1)
	require.NoError(t, err)

	summary, err := cs.GetCart(ctx, owner, "")
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, int64(1), summary.Items[0].ProductID)
	assert.InDelta(t, 20.00, summary.Subtotal, 0.001)
}

func TestGetCartPropagatesStorageErrors(t *testing.T) {
	fake := newFakeCartStore(&models.Product{ID: 1, Stock: 5})
	cs := NewCartService(fake)
	owner := models.CartOwner{SessionID: "session_test"}
	ctx := context.Background()

	_, err := cs.AddProduct(ctx, owner, 1, 2)
	require.NoError(t, err)

	// A storage failure must reject the read, never shrink the cart.
	fake.productErr = errors.New("connection reset")

	_, err = cs.GetCart(ctx, owner, "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestOwnsItem(t *testing.T) {
	userID := int64(7)
	sessionID := "session_abc"

	userLine := &models.CartItem{UserID: &userID}
	guestLine := &models.CartItem{SessionID: &sessionID}

	assert.True(t, ownsItem(models.CartOwner{UserID: 7}, userLine))
	assert.False(t, ownsItem(models.CartOwner{UserID: 8}, userLine))
	assert.False(t, ownsItem(models.CartOwner{UserID: 7}, guestLine))

	assert.True(t, ownsItem(models.CartOwner{SessionID: "session_abc"}, guestLine))
	assert.False(t, ownsItem(models.CartOwner{SessionID: "session_xyz"}, guestLine))
	assert.False(t, ownsItem(models.CartOwner{SessionID: "session_abc"}, userLine))
}
