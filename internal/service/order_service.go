package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-service/internal/broker"
	"storefront-service/internal/errs"
	"storefront-service/internal/models"
	"storefront-service/internal/notifier"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
)

// OrderService owns checkout: it snapshots the cart into an immutable order,
// commits order insert, stock decrement and cart clearing as one
// transaction, and hands the summary to the outbound channel afterwards.
type OrderService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	notifier       notifier.OrderNotifier
	logger         *zap.Logger
	numberRetries  int
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, eventPublisher *broker.EventPublisher, orderNotifier notifier.OrderNotifier, numberRetries int) *OrderService {
	if numberRetries < 1 {
		numberRetries = 1
	}
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		notifier:       orderNotifier,
		logger:         util.GetLogger(),
		numberRetries:  numberRetries,
	}
}

// CreateOrderRequest carries the customer-supplied checkout fields.
type CreateOrderRequest struct {
	CustomerName     string `json:"customer_name"`
	CustomerPhone    string `json:"customer_phone" binding:"required"`
	CustomerAddress  string `json:"customer_address" binding:"required"`
	CustomerProvince string `json:"customer_province" binding:"required"`
	PaymentMethod    string `json:"payment_method" binding:"required"`
	Notes            string `json:"notes"`
}

// CreateOrder checks out the owner's cart. The order insert, per-product
// stock decrement, soldCount increment and cart clearing commit atomically;
// any failure, including a stock shortfall, rolls the whole checkout back.
// The deep-link hand-off happens after commit and its failure is logged
// only, never compensated.
func (os *OrderService) CreateOrder(ctx context.Context, owner models.CartOwner, cart *CartSummary, req CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	if len(cart.Items) == 0 {
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, fmt.Errorf("cart is empty: %w", errs.ErrValidation)
	}

	customerName := req.CustomerName
	if customerName == "" {
		customerName = "Anonymous customer"
	}

	order := &models.Order{
		CustomerName:     customerName,
		CustomerPhone:    req.CustomerPhone,
		CustomerAddress:  req.CustomerAddress,
		CustomerProvince: req.CustomerProvince,
		PaymentMethod:    req.PaymentMethod,
		Subtotal:         cart.Subtotal,
		ShippingCost:     cart.Shipping,
		Total:            cart.Total,
		Status:           models.OrderStatusPending,
		Notes:            req.Notes,
	}
	if owner.IsUser() {
		order.UserID = &owner.UserID
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	var units int
	for _, line := range cart.Items {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.Price,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
		units += line.Quantity
	}

	// The random suffix carries no uniqueness guarantee, so a collision on
	// the order-number index retries with a fresh number.
	var err error
	for attempt := 0; attempt < os.numberRetries; attempt++ {
		order.OrderNumber = GenerateOrderNumber(time.Now())
		err = os.store.CreateOrder(ctx, order, items, owner)
		if err == nil || !errors.Is(err, errs.ErrConflict) {
			break
		}
		os.logger.Warn("Order number collision, retrying",
			zap.String("order_number", order.OrderNumber))
	}
	if err != nil {
		if errors.Is(err, errs.ErrInsufficientStock) {
			util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
		} else {
			util.OrdersFailedTotal.WithLabelValues("storage_error").Inc()
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersPlacedTotal.Inc()
	util.StockDecrementedTotal.Add(float64(units))
	os.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", order.Total))

	os.publishOrderPlaced(ctx, order, items)
	os.sendOrderSummary(ctx, order, items)

	return order, nil
}

func (os *OrderService) publishOrderPlaced(ctx context.Context, order *models.Order, items []models.OrderItem) {
	eventItems := make([]models.OrderItemData, 0, len(items))
	for _, item := range items {
		eventItems = append(eventItems, models.OrderItemData{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
		Items:       eventItems,
	}
	if order.UserID != nil {
		event.UserID = *order.UserID
	}

	if err := os.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		os.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}
}

func (os *OrderService) sendOrderSummary(ctx context.Context, order *models.Order, items []models.OrderItem) {
	settings, err := os.store.GetSettings(ctx)
	if err != nil {
		os.logger.Error("Failed to load settings for order notification", zap.Error(err))
		util.NotificationsTotal.WithLabelValues(string(notifier.ResultFailed)).Inc()
		return
	}

	result := os.notifier.NotifyOrder(ctx, order, items, settings)
	util.NotificationsTotal.WithLabelValues(string(result)).Inc()
}

// GetOrder retrieves an order with its snapshot items.
func (os *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, []models.OrderItem, error) {
	order, err := os.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	items, err := os.store.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// ListUserOrders retrieves a user's orders newest-first.
func (os *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	return os.store.GetOrdersByUserID(ctx, userID)
}

// UpdateStatus moves an order through its lifecycle. Cancelling restores the
// stock the order consumed; other transitions must follow
// pending→processing→shipped→delivered.
func (os *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	order, err := os.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !validTransition(order.Status, status) {
		return fmt.Errorf("cannot move order from %s to %s: %w",
			order.Status, status, errs.ErrValidation)
	}

	if status == models.OrderStatusCancelled {
		err = os.store.CancelOrder(ctx, orderID)
	} else {
		err = os.store.UpdateOrderStatus(ctx, orderID, status)
	}
	if err != nil {
		return err
	}

	util.OrderStatusChangesTotal.WithLabelValues(status).Inc()

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:   orderID,
		OldStatus: order.Status,
		NewStatus: status,
	}
	if err := os.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		os.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return nil
}

// validTransition encodes the order lifecycle. Cancellation is allowed from
// any non-terminal state.
func validTransition(from, to string) bool {
	if from == models.OrderStatusDelivered || from == models.OrderStatusCancelled {
		return false
	}
	if to == models.OrderStatusCancelled {
		return true
	}

	next := map[string]string{
		models.OrderStatusPending:    models.OrderStatusProcessing,
		models.OrderStatusProcessing: models.OrderStatusShipped,
		models.OrderStatusShipped:    models.OrderStatusDelivered,
	}
	return next[from] == to
}

// GenerateOrderNumber builds a date-stamped human-readable order number with
// a random six-character suffix, e.g. ORD-240901-3FA2B1.
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.Format("060102"), suffix)
}
