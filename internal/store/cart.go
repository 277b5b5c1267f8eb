package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront-service/internal/errs"
	"storefront-service/internal/models"
)

func ownerClause(owner models.CartOwner) (string, interface{}) {
	if owner.IsUser() {
		return "user_id = $1", owner.UserID
	}
	return "session_id = $1", owner.SessionID
}

// GetCartItems retrieves the cart lines for an owner in the order they were
// added.
func (s *Store) GetCartItems(ctx context.Context, owner models.CartOwner) ([]models.CartItem, error) {
	clause, arg := ownerClause(owner)
	var items []models.CartItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM cart_items WHERE "+clause+" ORDER BY id", arg)
	return items, err
}

// GetCartItemByID retrieves a single cart line.
func (s *Store) GetCartItemByID(ctx context.Context, id int64) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM cart_items WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cart item %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindCartItem locates the owner's line for a product, or nil when absent.
// At most one line per (owner, product) pair exists; the cart service
// guarantees it with lookup-then-merge.
func (s *Store) FindCartItem(ctx context.Context, owner models.CartOwner, productID int64) (*models.CartItem, error) {
	clause, arg := ownerClause(owner)
	var item models.CartItem
	err := s.db.GetContext(ctx, &item,
		"SELECT * FROM cart_items WHERE "+clause+" AND product_id = $2", arg, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddCartItem inserts a new cart line for the owner.
func (s *Store) AddCartItem(ctx context.Context, owner models.CartOwner, productID int64, quantity int) (*models.CartItem, error) {
	item := models.CartItem{
		ProductID: productID,
		Quantity:  quantity,
	}
	if owner.IsUser() {
		item.UserID = &owner.UserID
	} else {
		sessionID := owner.SessionID
		item.SessionID = &sessionID
	}

	query := `
		INSERT INTO cart_items (product_id, quantity, user_id, session_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, added_at`

	if err := s.db.GetContext(ctx, &item, query,
		item.ProductID, item.Quantity, item.UserID, item.SessionID); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartItemQuantity sets a cart line's quantity.
func (s *Store) UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE id = $2", quantity, itemID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("cart item %d: %w", itemID, errs.ErrNotFound)
	}
	return nil
}

// DeleteCartItem removes a single cart line.
func (s *Store) DeleteCartItem(ctx context.Context, itemID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1", itemID)
	return err
}

// ClearCart removes every line owned by the given key.
func (s *Store) ClearCart(ctx context.Context, owner models.CartOwner) error {
	clause, arg := ownerClause(owner)
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE "+clause, arg)
	return err
}

// MergeGuestCart migrates every guest-session line into the user's cart in a
// single transaction: quantities are summed when the user already holds a
// line for the same product, otherwise the line's ownership is rewritten in
// place. Running it again with an emptied guest cart is a no-op.
func (s *Store) MergeGuestCart(ctx context.Context, sessionID string, userID int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var guestItems []models.CartItem
		if err := tx.SelectContext(ctx, &guestItems,
			"SELECT * FROM cart_items WHERE session_id = $1 ORDER BY id", sessionID); err != nil {
			return err
		}

		for _, guest := range guestItems {
			var existing models.CartItem
			err := tx.GetContext(ctx, &existing,
				"SELECT * FROM cart_items WHERE user_id = $1 AND product_id = $2",
				userID, guest.ProductID)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				if _, err := tx.ExecContext(ctx,
					"UPDATE cart_items SET user_id = $1, session_id = NULL WHERE id = $2",
					userID, guest.ID); err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if _, err := tx.ExecContext(ctx,
					"UPDATE cart_items SET quantity = quantity + $1 WHERE id = $2",
					guest.Quantity, existing.ID); err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx,
					"DELETE FROM cart_items WHERE id = $1", guest.ID); err != nil {
					return err
				}
			}
		}

		return nil
	})
}
