package store

import (
	"context"

	"storefront-service/internal/models"
)

// GetRatingsByProduct retrieves every rating for a product.
func (s *Store) GetRatingsByProduct(ctx context.Context, productID int64) ([]models.Rating, error) {
	var ratings []models.Rating
	err := s.db.SelectContext(ctx, &ratings,
		"SELECT * FROM ratings WHERE product_id = $1 ORDER BY created_at DESC", productID)
	return ratings, err
}

// UpsertRating creates or replaces a user's rating for a product. The
// (product_id, user_id) unique index keeps one rating per pair even if two
// writers race the lookup.
func (s *Store) UpsertRating(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, user_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			comment = EXCLUDED.comment,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, rating, query,
		rating.ProductID, rating.UserID, rating.Rating, rating.Comment)
}
