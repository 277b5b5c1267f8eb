package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-service/internal/errs"
	"storefront-service/internal/models"
)

// GetSettings loads the whole settings collection as a key→value map.
func (s *Store) GetSettings(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM settings"); err != nil {
		return nil, err
	}

	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// GetSetting retrieves a single setting value.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %s: %w", key, errs.ErrNotFound)
	}
	return value, err
}

// UpsertSetting creates or replaces a setting value.
func (s *Store) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	return err
}

// GetShippingRules retrieves every shipping rule.
func (s *Store) GetShippingRules(ctx context.Context) ([]models.ShippingRule, error) {
	var rules []models.ShippingRule
	err := s.db.SelectContext(ctx, &rules,
		"SELECT * FROM shipping_rules ORDER BY province")
	return rules, err
}

// GetShippingRuleByProvince looks a rule up via the province unique index.
func (s *Store) GetShippingRuleByProvince(ctx context.Context, province string) (*models.ShippingRule, error) {
	var rule models.ShippingRule
	err := s.db.GetContext(ctx, &rule,
		"SELECT * FROM shipping_rules WHERE province = $1", province)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("shipping rule for %s: %w", province, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// UpsertShippingRule creates or replaces the rule for a province.
func (s *Store) UpsertShippingRule(ctx context.Context, rule *models.ShippingRule) error {
	query := `
		INSERT INTO shipping_rules (province, cost, delivery_time, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (province) DO UPDATE SET
			cost = EXCLUDED.cost,
			delivery_time = EXCLUDED.delivery_time,
			status = EXCLUDED.status
		RETURNING id`

	return s.db.GetContext(ctx, &rule.ID, query,
		rule.Province, rule.Cost, rule.DeliveryTime, rule.Status)
}
