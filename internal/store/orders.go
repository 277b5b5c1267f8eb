package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront-service/internal/errs"
	"storefront-service/internal/models"
)

// OrderFilter narrows admin order listings. Zero values mean no constraint;
// the date range is inclusive.
type OrderFilter struct {
	From   *time.Time
	To     *time.Time
	Status string
}

// CreateOrder commits a checkout as a single transaction: the order row, its
// denormalized item snapshot, the per-product stock decrement and soldCount
// increment, and the owning cart's removal either all land or none do. The
// stock guard keeps stock from ever going negative; a failed guard surfaces
// as errs.ErrInsufficientStock and rolls everything back.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem, owner models.CartOwner) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO orders
				(order_number, user_id, customer_name, customer_phone,
				 customer_address, customer_province, payment_method,
				 subtotal, shipping_cost, total, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at, updated_at`

		if err := tx.GetContext(ctx, order, query,
			order.OrderNumber, order.UserID, order.CustomerName,
			order.CustomerPhone, order.CustomerAddress, order.CustomerProvince,
			order.PaymentMethod, order.Subtotal, order.ShippingCost,
			order.Total, order.Status, order.Notes); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID

			if err := tx.GetContext(ctx, &items[i].ID, `
				INSERT INTO order_items (order_id, product_id, name, unit_price, quantity, line_total)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id`,
				items[i].OrderID, items[i].ProductID, items[i].Name,
				items[i].UnitPrice, items[i].Quantity, items[i].LineTotal); err != nil {
				return err
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock = stock - $1, sold_count = sold_count + $1
				WHERE id = $2 AND stock >= $1`,
				items[i].Quantity, items[i].ProductID)
			if err != nil {
				return err
			}
			rows, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if rows == 0 {
				return fmt.Errorf("product %d: %w", items[i].ProductID, errs.ErrInsufficientStock)
			}
		}

		clause, arg := ownerClause(owner)
		_, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE "+clause, arg)
		return err
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("order number %s: %w", order.OrderNumber, errs.ErrConflict)
	}
	return err
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItems retrieves the denormalized snapshot lines for an order.
func (s *Store) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// GetOrdersByUserID retrieves a user's orders newest-first.
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// GetOrders retrieves orders newest-first, optionally narrowed by an
// inclusive date range and a status.
func (s *Store) GetOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := "SELECT * FROM orders WHERE 1=1"
	args := []interface{}{}

	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, query, args...)
	return orders, err
}

// UpdateOrderStatus moves an order through its lifecycle.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("order %d: %w", orderID, errs.ErrNotFound)
	}
	return nil
}

// CancelOrder cancels an order and restores the stock its snapshot consumed,
// as one transaction.
func (s *Store) CancelOrder(ctx context.Context, orderID int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var status string
		err := tx.GetContext(ctx, &status,
			"SELECT status FROM orders WHERE id = $1 FOR UPDATE", orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("order %d: %w", orderID, errs.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if status == models.OrderStatusCancelled {
			return nil
		}

		var items []models.OrderItem
		if err := tx.SelectContext(ctx, &items,
			"SELECT * FROM order_items WHERE order_id = $1", orderID); err != nil {
			return err
		}

		for _, item := range items {
			if _, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock = stock + $1, sold_count = GREATEST(sold_count - $1, 0)
				WHERE id = $2`,
				item.Quantity, item.ProductID); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
			models.OrderStatusCancelled, orderID)
		return err
	})
}

// CountOrders returns the total number of orders.
func (s *Store) CountOrders(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM orders")
	return count, err
}
