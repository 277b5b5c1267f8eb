package models

import "time"

// User represents a registered shop account.
type User struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	Password  string     `db:"password" json:"-"`
	Role      string     `db:"role" json:"role"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	LastLogin *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Product represents a catalog product. Category is a plain name, not a
// foreign key; the categories collection is purely descriptive.
type Product struct {
	ID            int64      `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Description   string     `db:"description" json:"description"`
	Category      string     `db:"category" json:"category"`
	Tags          string     `db:"tags" json:"tags,omitempty"`
	Price         float64    `db:"price" json:"price"`
	Stock         int        `db:"stock" json:"stock"`
	PreviousStock int        `db:"previous_stock" json:"previous_stock"`
	MinStock      int        `db:"min_stock" json:"min_stock"`
	Status        string     `db:"status" json:"status"`
	Featured      bool       `db:"featured" json:"featured"`
	SoldCount     int        `db:"sold_count" json:"sold_count"`
	AverageRating float64    `db:"average_rating" json:"average_rating"`
	RatingCount   int        `db:"rating_count" json:"rating_count"`
	Image         string     `db:"image" json:"image,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	LastRestocked *time.Time `db:"last_restocked" json:"last_restocked,omitempty"`
}

// Product statuses
const (
	ProductStatusActive   = "active"
	ProductStatusNew      = "new"
	ProductStatusSale     = "sale"
	ProductStatusBack     = "back"
	ProductStatusInactive = "inactive"
)

// Category is a descriptive catalog grouping. Products reference it by name.
type Category struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Icon        string `db:"icon" json:"icon"`
}

// CartItem is a cart line scoped to exactly one owner key: a user id or an
// anonymous session token.
type CartItem struct {
	ID        int64     `db:"id" json:"id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	UserID    *int64    `db:"user_id" json:"user_id,omitempty"`
	SessionID *string   `db:"session_id" json:"session_id,omitempty"`
	AddedAt   time.Time `db:"added_at" json:"added_at"`
}

// CartOwner identifies whose cart an operation targets. Exactly one field is
// set: UserID for authenticated users, SessionID for guests.
type CartOwner struct {
	UserID    int64
	SessionID string
}

// IsUser reports whether the owner is an authenticated user.
func (o CartOwner) IsUser() bool {
	return o.UserID != 0
}

// Order is an immutable record of a checkout. Items carry a denormalized
// snapshot of product name and price at order time so later catalog edits do
// not rewrite order history.
type Order struct {
	ID               int64     `db:"id" json:"id"`
	OrderNumber      string    `db:"order_number" json:"order_number"`
	UserID           *int64    `db:"user_id" json:"user_id,omitempty"`
	CustomerName     string    `db:"customer_name" json:"customer_name"`
	CustomerPhone    string    `db:"customer_phone" json:"customer_phone"`
	CustomerAddress  string    `db:"customer_address" json:"customer_address"`
	CustomerProvince string    `db:"customer_province" json:"customer_province"`
	PaymentMethod    string    `db:"payment_method" json:"payment_method"`
	Subtotal         float64   `db:"subtotal" json:"subtotal"`
	ShippingCost     float64   `db:"shipping_cost" json:"shipping_cost"`
	Total            float64   `db:"total" json:"total"`
	Status           string    `db:"status" json:"status"`
	Notes            string    `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem is one denormalized line of an order snapshot.
type OrderItem struct {
	ID        int64   `db:"id" json:"id"`
	OrderID   int64   `db:"order_id" json:"order_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Name      string  `db:"name" json:"name"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
	Quantity  int     `db:"quantity" json:"quantity"`
	LineTotal float64 `db:"line_total" json:"line_total"`
}

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Promotion is a time-windowed announcement shown in the storefront.
type Promotion struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Image     string    `db:"image" json:"image,omitempty"`
	Type      string    `db:"type" json:"type"`
	Active    bool      `db:"active" json:"active"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
}

// Setting is a flat key/value configuration pair. Values are stored as
// strings; callers parse booleans and numbers as needed.
type Setting struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}

// Well-known setting keys
const (
	SettingStoreName       = "storeName"
	SettingStorePhone      = "storePhone"
	SettingStoreEmail      = "storeEmail"
	SettingCurrency        = "currency"
	SettingTaxPercentage   = "taxPercentage"
	SettingRequireLogin    = "requireLogin"
	SettingAllowRatings    = "allowRatings"
	SettingShowStock       = "showStock"
	SettingThemeColor      = "themeColor"
	SettingOrderMessage    = "orderMessage"
	SettingBackgroundImage = "backgroundImage"
)

// ShippingRule is a flat per-province shipping cost.
type ShippingRule struct {
	ID           int64   `db:"id" json:"id"`
	Province     string  `db:"province" json:"province"`
	Cost         float64 `db:"cost" json:"cost"`
	DeliveryTime int     `db:"delivery_time" json:"delivery_time"`
	Status       string  `db:"status" json:"status"`
}

// Shipping rule statuses
const (
	ShippingStatusActive   = "active"
	ShippingStatusInactive = "inactive"
)

// SocialLink is an outbound link shown in one or more display locations
// (menu, footer, contact).
type SocialLink struct {
	ID       int64  `db:"id" json:"id"`
	Platform string `db:"platform" json:"platform"`
	URL      string `db:"url" json:"url"`
	Icon     string `db:"icon" json:"icon"`
	Display  string `db:"display" json:"display"`
}

// Rating is a per-user product rating, at most one per (product, user) pair.
type Rating struct {
	ID        int64     `db:"id" json:"id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DashboardStats aggregates the admin dashboard counters. SalesChange and
// OrdersChange are day-over-day percentage deltas.
type DashboardStats struct {
	TotalProducts   int     `json:"total_products"`
	ActiveProducts  int     `json:"active_products"`
	TotalOrders     int     `json:"total_orders"`
	TodayOrders     int     `json:"today_orders"`
	TotalUsers      int     `json:"total_users"`
	TotalSales      float64 `json:"total_sales"`
	LowStockCount   int     `json:"low_stock_count"`
	OutOfStockCount int     `json:"out_of_stock_count"`
	SalesChange     float64 `json:"sales_change"`
	OrdersChange    float64 `json:"orders_change"`
}
