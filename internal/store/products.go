package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/errs"
	"storefront-service/internal/models"
)

// CreateProduct inserts a new product.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products
			(name, description, category, tags, price, stock, previous_stock,
			 min_stock, status, featured, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, p, query,
		p.Name, p.Description, p.Category, p.Tags, p.Price, p.Stock,
		p.PreviousStock, p.MinStock, p.Status, p.Featured, p.Image)
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves the full product collection in insertion order.
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// UpdateProduct replaces a product's mutable fields. When the update raises
// stock from zero, previous_stock and last_restocked record the restock so
// the back-in-stock bucket can find it.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	current, err := s.GetProductByID(ctx, p.ID)
	if err != nil {
		return err
	}

	if p.Stock > current.Stock {
		p.PreviousStock = current.Stock
		now := time.Now()
		p.LastRestocked = &now
	} else {
		p.PreviousStock = current.PreviousStock
		p.LastRestocked = current.LastRestocked
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE products SET
			name = $1, description = $2, category = $3, tags = $4, price = $5,
			stock = $6, previous_stock = $7, min_stock = $8, status = $9,
			featured = $10, image = $11, last_restocked = $12
		WHERE id = $13`,
		p.Name, p.Description, p.Category, p.Tags, p.Price, p.Stock,
		p.PreviousStock, p.MinStock, p.Status, p.Featured, p.Image,
		p.LastRestocked, p.ID)
	return err
}

// DeleteProduct removes a product from the catalog.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("product %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

// CountProducts returns the catalog size.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM products")
	return count, err
}

// UpdateProductRating rewrites the denormalized rating aggregate from the
// ratings collection.
func (s *Store) UpdateProductRating(ctx context.Context, productID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE products SET
			average_rating = COALESCE((SELECT AVG(rating) FROM ratings WHERE product_id = $1), 0),
			rating_count = (SELECT COUNT(*) FROM ratings WHERE product_id = $1)
		WHERE id = $1`, productID)
	return err
}
