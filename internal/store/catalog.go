package store

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/errs"
	"storefront-service/internal/models"
)

// GetCategories retrieves every category.
func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY id")
	return categories, err
}

// CreateCategory inserts a category. Names are unique.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (name, description, icon)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := s.db.GetContext(ctx, &c.ID, query, c.Name, c.Description, c.Icon)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %s: %w", c.Name, errs.ErrConflict)
	}
	return err
}

// DeleteCategory removes a category. Products keep their category name; the
// reference is a plain string, not a foreign key.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("category %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

// GetSocialLinks retrieves social links, optionally narrowed to a display
// location.
func (s *Store) GetSocialLinks(ctx context.Context, display string) ([]models.SocialLink, error) {
	var links []models.SocialLink
	if display == "" {
		err := s.db.SelectContext(ctx, &links, "SELECT * FROM social_links ORDER BY id")
		return links, err
	}
	err := s.db.SelectContext(ctx, &links,
		"SELECT * FROM social_links WHERE display = $1 ORDER BY id", display)
	return links, err
}

// UpsertSocialLink creates or updates a social link.
func (s *Store) UpsertSocialLink(ctx context.Context, link *models.SocialLink) error {
	if link.ID == 0 {
		query := `
			INSERT INTO social_links (platform, url, icon, display)
			VALUES ($1, $2, $3, $4)
			RETURNING id`
		return s.db.GetContext(ctx, &link.ID, query,
			link.Platform, link.URL, link.Icon, link.Display)
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE social_links SET platform = $1, url = $2, icon = $3, display = $4 WHERE id = $5`,
		link.Platform, link.URL, link.Icon, link.Display, link.ID)
	return err
}

// GetPromotions retrieves every promotion.
func (s *Store) GetPromotions(ctx context.Context) ([]models.Promotion, error) {
	var promotions []models.Promotion
	err := s.db.SelectContext(ctx, &promotions, "SELECT * FROM promotions ORDER BY id")
	return promotions, err
}

// GetActivePromotions retrieves promotions whose window covers now.
func (s *Store) GetActivePromotions(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	var promotions []models.Promotion
	err := s.db.SelectContext(ctx, &promotions, `
		SELECT * FROM promotions
		WHERE active = TRUE AND start_date <= $1 AND end_date >= $1
		ORDER BY id`, now)
	return promotions, err
}

// CreatePromotion inserts a promotion.
func (s *Store) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	query := `
		INSERT INTO promotions (title, message, image, type, active, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	return s.db.GetContext(ctx, &p.ID, query,
		p.Title, p.Message, p.Image, p.Type, p.Active, p.StartDate, p.EndDate)
}

// UpdatePromotion replaces a promotion's fields.
func (s *Store) UpdatePromotion(ctx context.Context, p *models.Promotion) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE promotions SET
			title = $1, message = $2, image = $3, type = $4, active = $5,
			start_date = $6, end_date = $7
		WHERE id = $8`,
		p.Title, p.Message, p.Image, p.Type, p.Active, p.StartDate, p.EndDate, p.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("promotion %d: %w", p.ID, errs.ErrNotFound)
	}
	return nil
}
