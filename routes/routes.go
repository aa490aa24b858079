package routes

import (
	"time"

	"shopnow-backend/handlers"
	"shopnow-backend/middleware"
	"shopnow-backend/realtime"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, hub *realtime.Hub) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	productHandler := &handlers.ProductHandler{DB: db}
	categoryHandler := &handlers.CategoryHandler{DB: db}
	cartHandler := &handlers.CartHandler{DB: db, Hub: hub}
	wishlistHandler := &handlers.WishlistHandler{DB: db, Hub: hub}
	orderHandler := &handlers.OrderHandler{DB: db, Hub: hub}
	shippingHandler := &handlers.ShippingHandler{DB: db}
	contactHandler := &handlers.ContactHandler{}

	// Login and password endpoints get a tighter bucket than the rest of
	// the API
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		auth.Use(authLimiter.Middleware())
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.POST("/refresh", authHandler.RefreshTokenHandler)

		// Public catalog routes
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/:id", productHandler.GetProduct)
		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/categories/:id", categoryHandler.GetCategory)

		// Shipping rates shown at checkout
		api.GET("/shipping-costs", shippingHandler.GetShippingCosts)

		// Contact form
		api.POST("/contact", contactHandler.SubmitContact)

		// Live cart feed. Auth happens inside the handler because the
		// browser cannot set headers on a websocket handshake.
		api.GET("/ws/cart", realtime.ServeWS(hub))
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		// User profile
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.PUT("/auth/profile", authHandler.UpdateProfile)
		protected.PUT("/auth/password", authHandler.ChangePassword)

		// Cart routes
		protected.GET("/cart", cartHandler.GetCart)
		protected.GET("/cart/count", cartHandler.GetCartCount)
		protected.POST("/cart", cartHandler.AddToCart)
		protected.PUT("/cart/:id", cartHandler.UpdateCartItem)
		protected.DELETE("/cart/:id", cartHandler.RemoveFromCart)
		protected.DELETE("/cart", cartHandler.ClearCart)

		// Wishlist routes
		protected.GET("/wishlist", wishlistHandler.GetWishlist)
		protected.POST("/wishlist/toggle", wishlistHandler.ToggleWishlist)
		protected.POST("/wishlist/move-to-cart", wishlistHandler.MoveAllToCart)
		protected.DELETE("/wishlist/:id", wishlistHandler.RemoveFromWishlist)
		protected.DELETE("/wishlist", wishlistHandler.ClearWishlist)

		// Order routes
		protected.POST("/orders", orderHandler.CreateOrder)
		protected.GET("/orders", orderHandler.GetOrders)
		protected.GET("/orders/:id", orderHandler.GetOrder)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Dashboard
		admin.GET("/dashboard", orderHandler.GetAdminDashboard)

		// Product management
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)

		// Category management
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

		// Order management
		admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)

		// Shipping rate management
		admin.GET("/shipping-costs", shippingHandler.ListShippingCosts)
		admin.POST("/shipping-costs", shippingHandler.CreateShippingCost)
		admin.PUT("/shipping-costs/:id", shippingHandler.UpdateShippingCost)
		admin.DELETE("/shipping-costs/:id", shippingHandler.DeleteShippingCost)

		// User management
		admin.GET("/users", authHandler.ListUsers)
		admin.GET("/users/:id", authHandler.GetUser)
		admin.PUT("/users/:id", authHandler.UpdateUser)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
