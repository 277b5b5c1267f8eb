package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-service/internal/errs"
	"storefront-service/internal/models"
	"storefront-service/internal/notifier"
	"storefront-service/internal/service"
	"storefront-service/internal/util"
)

// SessionTokenHeader carries the caller's session token on every request.
const SessionTokenHeader = "X-Session-Token"

const (
	ctxKeyOwner = "cart_owner"
	ctxKeyUser  = "current_user"
)

// Handler contains HTTP handlers
type Handler struct {
	auth     *service.AuthService
	catalog  *service.CatalogService
	cart     *service.CartService
	orders   *service.OrderService
	settings *service.SettingsService
	admin    *service.AdminService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	auth *service.AuthService,
	catalog *service.CatalogService,
	cart *service.CartService,
	orders *service.OrderService,
	settings *service.SettingsService,
	admin *service.AdminService,
) *Handler {
	return &Handler{
		auth:     auth,
		catalog:  catalog,
		cart:     cart,
		orders:   orders,
		settings: settings,
		admin:    admin,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(h.sessionMiddleware())
	{
		v1.POST("/sessions", h.startSession)

		v1.POST("/auth/register", h.register)
		v1.POST("/auth/login", h.login)
		v1.POST("/auth/logout", h.logout)
		v1.GET("/auth/me", h.currentUser)
		v1.PUT("/auth/profile", h.updateProfile)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/featured", h.featuredProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/products/:id/ratings", h.listRatings)
		v1.POST("/products/:id/ratings", h.rateProduct)
		v1.GET("/categories", h.listCategories)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PUT("/cart/items/:id", h.updateCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)
		v1.GET("/cart/availability", h.checkAvailability)

		v1.POST("/orders", h.checkout)
		v1.GET("/orders", h.listMyOrders)
		v1.GET("/orders/:id", h.getOrder)

		v1.GET("/settings", h.getSettings)
		v1.GET("/shipping-rules", h.listShippingRules)
		v1.GET("/social-links", h.listSocialLinks)
		v1.GET("/promotions/active", h.activePromotions)

		admin := v1.Group("/admin")
		admin.Use(h.requireAdmin())
		{
			admin.GET("/dashboard", h.dashboard)
			admin.GET("/inventory", h.inventory)
			admin.GET("/sales", h.salesByDate)
			admin.GET("/top-products", h.topProducts)
			admin.GET("/recent-orders", h.recentOrders)

			admin.GET("/orders", h.listOrders)
			admin.PUT("/orders/:id/status", h.updateOrderStatus)

			admin.POST("/products", h.createProduct)
			admin.PUT("/products/:id", h.updateProduct)
			admin.DELETE("/products/:id", h.deleteProduct)
			admin.POST("/categories", h.createCategory)
			admin.DELETE("/categories/:id", h.deleteCategory)

			admin.PUT("/settings/:key", h.updateSetting)
			admin.PUT("/shipping-rules", h.upsertShippingRule)
			admin.PUT("/social-links", h.saveSocialLink)

			admin.GET("/promotions", h.listPromotions)
			admin.POST("/promotions", h.createPromotion)
			admin.PUT("/promotions/:id", h.updatePromotion)
		}
	}
}

// sessionMiddleware resolves the session token to a cart owner and, when the
// token is bound, the current user. Requests without a token pass through
// unidentified; handlers that need an owner reject them individually.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionTokenHeader)
		if token == "" {
			c.Next()
			return
		}

		owner, user, err := h.auth.Identify(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(ctxKeyOwner, owner)
		if user != nil {
			c.Set(ctxKeyUser, user)
		}
		c.Next()
	}
}

// requireAdmin rejects requests whose session is not bound to an admin user.
func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			respondError(c, errs.ErrNotAuthenticated)
			c.Abort()
			return
		}
		if user.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ready",
		"snapshot_age": h.catalog.SnapshotAge().Seconds(),
		"time":         time.Now().Unix(),
	})
}

// startSession mints a fresh anonymous session token
func (h *Handler) startSession(c *gin.Context) {
	token, err := h.auth.StartSession(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// register handles account creation
func (h *Handler) register(c *gin.Context) {
	token, ok := requireToken(c)
	if !ok {
		return
	}

	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), token, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// login handles authentication
func (h *Handler) login(c *gin.Context) {
	token, ok := requireToken(c)
	if !ok {
		return
	}

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), token, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// logout drops the session binding and returns a fresh anonymous token
func (h *Handler) logout(c *gin.Context) {
	token, ok := requireToken(c)
	if !ok {
		return
	}

	fresh, err := h.auth.Logout(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": fresh})
}

// currentUser returns the user bound to the session
func (h *Handler) currentUser(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, errs.ErrNotAuthenticated)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// updateProfile changes the authenticated user's details
func (h *Handler) updateProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, errs.ErrNotAuthenticated)
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.auth.UpdateProfile(c.Request.Context(), user.ID, req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": updated})
}

// listProducts serves the filtered, sorted catalog snapshot
func (h *Handler) listProducts(c *gin.Context) {
	filter := service.Filter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	}
	if v := c.Query("min_price"); v != "" {
		filter.MinPrice, _ = strconv.ParseFloat(v, 64)
	}
	if v := c.Query("max_price"); v != "" {
		filter.MaxPrice, _ = strconv.ParseFloat(v, 64)
	}

	descending := c.Query("order") == "desc"
	products := h.catalog.ListProducts(filter, c.Query("sort"), descending)

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// featuredProducts serves the featured subset of the snapshot
func (h *Handler) featuredProducts(c *gin.Context) {
	products := h.catalog.FeaturedProducts()
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct serves a single live product record
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// listRatings serves a product's ratings
func (h *Handler) listRatings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ratings, err := h.catalog.ProductRatings(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

// rateProduct records the authenticated user's rating
func (h *Handler) rateProduct(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, errs.ErrNotAuthenticated)
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	rating, err := h.catalog.RateProduct(c.Request.Context(), id, user.ID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"rating": rating})
}

// listCategories serves the catalog categories
func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// getCart serves the owner's cart with computed totals
func (h *Handler) getCart(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	summary, err := h.cart.GetCart(c.Request.Context(), owner, c.Query("province"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// addCartItem adds or increments a cart line
func (h *Handler) addCartItem(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
		Quantity  int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.cart.AddProduct(c.Request.Context(), owner, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// updateCartItem sets a cart line's quantity
func (h *Handler) updateCartItem(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.cart.UpdateQuantity(c.Request.Context(), owner, id, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// removeCartItem deletes a cart line
func (h *Handler) removeCartItem(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.cart.RemoveItem(c.Request.Context(), owner, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// clearCart empties the owner's cart
func (h *Handler) clearCart(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	if err := h.cart.Clear(c.Request.Context(), owner); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// checkAvailability reports cart lines the live stock can no longer cover
func (h *Handler) checkAvailability(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	unavailable, err := h.cart.CheckAvailability(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unavailable": unavailable})
}

// checkout converts the owner's cart into an order and returns the
// WhatsApp deep link for the order summary
func (h *Handler) checkout(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	cart, err := h.cart.GetCart(c.Request.Context(), owner, req.CustomerProvince)
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), owner, cart, req)
	if err != nil {
		respondError(c, err)
		return
	}

	_, items, err := h.orders.GetOrder(c.Request.Context(), order.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"order": order,
		"items": items,
	}
	if settings, err := h.settings.Settings(c.Request.Context()); err == nil {
		message := notifier.BuildOrderMessage(order, items, settings[models.SettingOrderMessage])
		resp["whatsapp_url"] = notifier.DeepLink(settings[models.SettingStorePhone], message)
	}

	c.JSON(http.StatusCreated, resp)
}

// listMyOrders serves the authenticated user's order history
func (h *Handler) listMyOrders(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, errs.ErrNotAuthenticated)
		return
	}

	orders, err := h.orders.ListUserOrders(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getOrder serves a single order with its snapshot items
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, items, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	// A user's order is only visible to that user or an admin.
	if order.UserID != nil {
		user := currentUser(c)
		if user == nil || (user.ID != *order.UserID && user.Role != models.RoleAdmin) {
			respondError(c, errs.ErrNotFound)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"items": items,
	})
}

// getSettings serves the shop configuration map
func (h *Handler) getSettings(c *gin.Context) {
	settings, err := h.settings.Settings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// listShippingRules serves the shipping rules available at checkout
func (h *Handler) listShippingRules(c *gin.Context) {
	rules, err := h.settings.ActiveShippingRules(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipping_rules": rules})
}

// listSocialLinks serves social links, optionally narrowed by display
func (h *Handler) listSocialLinks(c *gin.Context) {
	links, err := h.settings.SocialLinks(c.Request.Context(), c.Query("display"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"social_links": links})
}

// activePromotions serves the promotions whose window covers now
func (h *Handler) activePromotions(c *gin.Context) {
	promotions, err := h.settings.ActivePromotions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promotions": promotions})
}

// dashboard serves the admin dashboard counters
func (h *Handler) dashboard(c *gin.Context) {
	stats, err := h.admin.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// inventory serves the bucketed inventory view
func (h *Handler) inventory(c *gin.Context) {
	buckets, err := h.admin.Inventory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// salesByDate serves per-day sales totals over a trailing window
func (h *Handler) salesByDate(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))
	sales, err := h.admin.SalesByDate(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

// topProducts serves the best sellers
func (h *Handler) topProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.admin.TopProducts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// recentOrders serves the most recent orders
func (h *Handler) recentOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	orders, err := h.admin.RecentOrders(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// listOrders serves orders narrowed by date range and status
func (h *Handler) listOrders(c *gin.Context) {
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
			return
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
			return
		}
		to = &t
	}

	orders, err := h.admin.ListOrders(c.Request.Context(), from, to, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// updateOrderStatus moves an order through its lifecycle
func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// createProduct inserts a catalog product
func (h *Handler) createProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.catalog.CreateProduct(c.Request.Context(), &product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// updateProduct replaces a catalog product
func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	product.ID = id

	if err := h.catalog.UpdateProduct(c.Request.Context(), &product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// deleteProduct removes a catalog product
func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// createCategory inserts a catalog category
func (h *Handler) createCategory(c *gin.Context) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.catalog.CreateCategory(c.Request.Context(), &category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// deleteCategory removes a catalog category
func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// updateSetting creates or replaces one setting value
func (h *Handler) updateSetting(c *gin.Context) {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	key := c.Param("key")
	if err := h.settings.UpdateSetting(c.Request.Context(), key, req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}

// upsertShippingRule creates or replaces a province's shipping rule
func (h *Handler) upsertShippingRule(c *gin.Context) {
	var rule models.ShippingRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.settings.UpsertShippingRule(c.Request.Context(), &rule); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipping_rule": rule})
}

// saveSocialLink creates or updates a social link
func (h *Handler) saveSocialLink(c *gin.Context) {
	var link models.SocialLink
	if err := c.ShouldBindJSON(&link); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.settings.SaveSocialLink(c.Request.Context(), &link); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"social_link": link})
}

// listPromotions serves every promotion for the admin view
func (h *Handler) listPromotions(c *gin.Context) {
	promotions, err := h.settings.Promotions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promotions": promotions})
}

// createPromotion inserts a promotion
func (h *Handler) createPromotion(c *gin.Context) {
	var promotion models.Promotion
	if err := c.ShouldBindJSON(&promotion); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.settings.CreatePromotion(c.Request.Context(), &promotion); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"promotion": promotion})
}

// updatePromotion replaces a promotion
func (h *Handler) updatePromotion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var promotion models.Promotion
	if err := c.ShouldBindJSON(&promotion); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	promotion.ID = id

	if err := h.settings.UpdatePromotion(c.Request.Context(), &promotion); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promotion": promotion})
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxKeyUser); ok {
		return v.(*models.User)
	}
	return nil
}

func requireToken(c *gin.Context) (string, bool) {
	token := c.GetHeader(SessionTokenHeader)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing " + SessionTokenHeader + " header",
		})
		return "", false
	}
	return token, true
}

func requireOwner(c *gin.Context) (models.CartOwner, bool) {
	if v, ok := c.Get(ctxKeyOwner); ok {
		return v.(models.CartOwner), true
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "Missing " + SessionTokenHeader + " header",
	})
	return models.CartOwner{}, false
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	c.JSON(errs.StatusCode(err), gin.H{"error": err.Error()})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
