package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront-service/internal/models"
)

// schemaVersion is the current schema version. Migration steps run exactly
// once per version transition and must stay idempotent so a replay after a
// partial failure is harmless. Table and index names are part of the storage
// contract; renaming them breaks version transitions.
const schemaVersion = 3

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_login TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (email)`,
	`CREATE INDEX IF NOT EXISTS users_role_idx ON users (role)`,

	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '',
		price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		previous_stock INTEGER NOT NULL DEFAULT 0,
		min_stock INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		sold_count INTEGER NOT NULL DEFAULT 0,
		average_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		rating_count INTEGER NOT NULL DEFAULT 0,
		image TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_restocked TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS products_category_idx ON products (category)`,
	`CREATE INDEX IF NOT EXISTS products_status_idx ON products (status)`,
	`CREATE INDEX IF NOT EXISTS products_stock_idx ON products (stock)`,
	`CREATE INDEX IF NOT EXISTS products_featured_idx ON products (featured)`,
	`CREATE INDEX IF NOT EXISTS products_price_idx ON products (price)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS categories_name_idx ON categories (name)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		order_number TEXT NOT NULL,
		user_id BIGINT,
		customer_name TEXT NOT NULL,
		customer_phone TEXT NOT NULL DEFAULT '',
		customer_address TEXT NOT NULL DEFAULT '',
		customer_province TEXT NOT NULL DEFAULT '',
		payment_method TEXT NOT NULL DEFAULT '',
		subtotal DOUBLE PRECISION NOT NULL,
		shipping_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		total DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_order_number_idx ON orders (order_number)`,
	`CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id)`,
	`CREATE INDEX IF NOT EXISTS orders_status_idx ON orders (status)`,
	`CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders (created_at)`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id),
		product_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		unit_price DOUBLE PRECISION NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		line_total DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS order_items_order_id_idx ON order_items (order_id)`,

	`CREATE TABLE IF NOT EXISTS cart_items (
		id BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		user_id BIGINT,
		session_id TEXT,
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK ((user_id IS NULL) <> (session_id IS NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS cart_items_user_id_idx ON cart_items (user_id)`,
	`CREATE INDEX IF NOT EXISTS cart_items_session_id_idx ON cart_items (session_id)`,
	`CREATE INDEX IF NOT EXISTS cart_items_product_id_idx ON cart_items (product_id)`,

	`CREATE TABLE IF NOT EXISTS promotions (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT 'banner',
		active BOOLEAN NOT NULL DEFAULT FALSE,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS promotions_active_idx ON promotions (active)`,

	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS shipping_rules (
		id BIGSERIAL PRIMARY KEY,
		province TEXT NOT NULL,
		cost DOUBLE PRECISION NOT NULL CHECK (cost >= 0),
		delivery_time INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'active'
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS shipping_rules_province_idx ON shipping_rules (province)`,

	`CREATE TABLE IF NOT EXISTS social_links (
		id BIGSERIAL PRIMARY KEY,
		platform TEXT NOT NULL,
		url TEXT NOT NULL,
		icon TEXT NOT NULL DEFAULT '',
		display TEXT NOT NULL DEFAULT 'footer'
	)`,
	`CREATE INDEX IF NOT EXISTS social_links_platform_idx ON social_links (platform)`,

	`CREATE TABLE IF NOT EXISTS ratings (
		id BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ratings_product_user_idx ON ratings (product_id, user_id)`,
	`CREATE INDEX IF NOT EXISTS ratings_product_id_idx ON ratings (product_id)`,
}

// Migrate brings the schema up to the current version. Each version step is
// applied at most once; the schema_migrations counter records the transition.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.GetContext(ctx, &current,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for v := current + 1; v <= schemaVersion; v++ {
		if err := s.withTx(ctx, func(tx *sqlx.Tx) error {
			if err := applyMigration(ctx, tx, v); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version) VALUES ($1)`, v)
			return err
		}); err != nil {
			return fmt.Errorf("migration to version %d failed: %w", v, err)
		}
	}

	return nil
}

func applyMigration(ctx context.Context, tx *sqlx.Tx, version int) error {
	switch version {
	case 1:
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	case 2:
		return seedDefaults(ctx, tx)
	case 3:
		return seedAdminUser(ctx, tx)
	default:
		return fmt.Errorf("unknown schema version %d", version)
	}
}

// seedDefaults inserts the first-run categories, settings and shipping rules.
// ON CONFLICT DO NOTHING keeps a replay harmless.
func seedDefaults(ctx context.Context, tx *sqlx.Tx) error {
	categories := []models.Category{
		{Name: "Toys", Description: "Adult toys and accessories", Icon: "fas fa-gamepad"},
		{Name: "Lingerie", Description: "Intimate apparel", Icon: "fas fa-tshirt"},
		{Name: "Lubricants", Description: "Lubricants and intimate gels", Icon: "fas fa-oil-can"},
		{Name: "Oils & Massage", Description: "Sensual massage products", Icon: "fas fa-spa"},
		{Name: "Fantasy", Description: "Costumes and accessories", Icon: "fas fa-mask"},
		{Name: "Couples Games", Description: "Games for couples", Icon: "fas fa-heart"},
	}
	for _, c := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, description, icon) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO NOTHING`,
			c.Name, c.Description, c.Icon); err != nil {
			return err
		}
	}

	settings := map[string]string{
		models.SettingStoreName:       "Sensual Shop",
		models.SettingStorePhone:      "+1234567890",
		models.SettingStoreEmail:      "info@sensualshop.com",
		models.SettingCurrency:        "USD",
		models.SettingTaxPercentage:   "0",
		models.SettingRequireLogin:    "false",
		models.SettingAllowRatings:    "true",
		models.SettingShowStock:       "true",
		models.SettingThemeColor:      "#ff4081",
		models.SettingBackgroundImage: "assets/images/background.jpg",
		models.SettingOrderMessage:    "Hello, I would like to order the following products:",
	}
	for key, value := range settings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES ($1, $2)
			 ON CONFLICT (key) DO NOTHING`,
			key, value); err != nil {
			return err
		}
	}

	rules := []models.ShippingRule{
		{Province: "Santo Domingo", Cost: 5.00, DeliveryTime: 1, Status: models.ShippingStatusActive},
		{Province: "Distrito Nacional", Cost: 5.00, DeliveryTime: 1, Status: models.ShippingStatusActive},
		{Province: "Santiago", Cost: 8.00, DeliveryTime: 2, Status: models.ShippingStatusActive},
		{Province: "La Vega", Cost: 10.00, DeliveryTime: 2, Status: models.ShippingStatusActive},
		{Province: "San Cristóbal", Cost: 7.00, DeliveryTime: 2, Status: models.ShippingStatusActive},
	}
	for _, r := range rules {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO shipping_rules (province, cost, delivery_time, status)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (province) DO NOTHING`,
			r.Province, r.Cost, r.DeliveryTime, r.Status); err != nil {
			return err
		}
	}

	return nil
}

// seedAdminUser inserts the single seeded admin account.
func seedAdminUser(ctx context.Context, tx *sqlx.Tx) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, email, password, role)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO NOTHING`,
		"Administrator", "admin@sensualshop.com", "admin999", models.RoleAdmin)
	return err
}
