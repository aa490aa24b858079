package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"shopnow-backend/middleware"
	"shopnow-backend/models"
	"shopnow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")

	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	// Limit to 1 open connection to prevent SQLite concurrent access issues
	// with in-memory databases.
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)

	// Create tables using raw SQLite-compatible SQL instead of AutoMigrate,
	// because the GORM model tags use PostgreSQL-specific defaults like gen_random_uuid().
	if err := createSQLiteTables(testDB); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}

	code := m.Run()
	os.Exit(code)
}

// freshDB returns a clean database for each test by deleting all rows.
func freshDB() *gorm.DB {
	// Delete in correct order to respect foreign keys
	testDB.Exec("DELETE FROM order_items")
	testDB.Exec("DELETE FROM orders")
	testDB.Exec("DELETE FROM cart_items")
	testDB.Exec("DELETE FROM wishlist_items")
	testDB.Exec("DELETE FROM product_images")
	testDB.Exec("DELETE FROM products")
	testDB.Exec("DELETE FROM categories")
	testDB.Exec("DELETE FROM shipping_costs")
	testDB.Exec("DELETE FROM password_reset_tokens")
	testDB.Exec("DELETE FROM refresh_tokens")
	testDB.Exec("DELETE FROM users")
	return testDB
}

func createSQLiteTables(db *gorm.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS "users" (
			"id" TEXT PRIMARY KEY,
			"email" TEXT NOT NULL UNIQUE,
			"password" TEXT NOT NULL,
			"name" TEXT,
			"role" TEXT DEFAULT 'customer',
			"phone" TEXT,
			"is_blocked" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_deleted_at ON "users"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "categories" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL UNIQUE,
			"description" TEXT,
			"image_url" TEXT,
			"is_active" INTEGER DEFAULT 1,
			"created_by" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_deleted_at ON "categories"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "products" (
			"id" TEXT PRIMARY KEY,
			"title" TEXT NOT NULL,
			"description" TEXT,
			"price" REAL NOT NULL,
			"stock" INTEGER DEFAULT 0,
			"sales" INTEGER DEFAULT 0,
			"category_id" TEXT,
			"category_name" TEXT,
			"image_url" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_deleted_at ON "products"("deleted_at")`,
		`CREATE INDEX IF NOT EXISTS idx_products_category_id ON "products"("category_id")`,

		`CREATE TABLE IF NOT EXISTS "product_images" (
			"id" TEXT PRIMARY KEY,
			"product_id" TEXT NOT NULL,
			"image_url" TEXT NOT NULL,
			"sort_order" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_product_images_product_id ON "product_images"("product_id")`,

		`CREATE TABLE IF NOT EXISTS "cart_items" (
			"id" TEXT PRIMARY KEY,
			"user_id" TEXT NOT NULL,
			"product_id" TEXT NOT NULL,
			"quantity" INTEGER DEFAULT 1,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_user_product ON "cart_items"("user_id","product_id")`,

		`CREATE TABLE IF NOT EXISTS "wishlist_items" (
			"id" TEXT PRIMARY KEY,
			"user_id" TEXT NOT NULL,
			"product_id" TEXT NOT NULL,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_wishlist_user_product ON "wishlist_items"("user_id","product_id")`,

		`CREATE TABLE IF NOT EXISTS "orders" (
			"id" TEXT PRIMARY KEY,
			"user_id" TEXT NOT NULL,
			"order_number" TEXT NOT NULL UNIQUE,
			"status" TEXT DEFAULT 'Pending',
			"customer_name" TEXT NOT NULL,
			"customer_email" TEXT NOT NULL,
			"shipping_address" TEXT NOT NULL,
			"shipping_city" TEXT,
			"shipping_governorate" TEXT NOT NULL,
			"shipping_phone" TEXT,
			"subtotal" REAL NOT NULL,
			"shipping_cost" REAL DEFAULT 0,
			"total" REAL NOT NULL,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON "orders"("user_id")`,
		`CREATE INDEX IF NOT EXISTS idx_orders_deleted_at ON "orders"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "order_items" (
			"id" TEXT PRIMARY KEY,
			"order_id" TEXT NOT NULL,
			"product_id" TEXT,
			"title" TEXT NOT NULL,
			"image_url" TEXT,
			"quantity" INTEGER NOT NULL,
			"price" REAL NOT NULL,
			"subtotal" REAL NOT NULL,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON "order_items"("order_id")`,

		`CREATE TABLE IF NOT EXISTS "shipping_costs" (
			"id" TEXT PRIMARY KEY,
			"governorate" TEXT NOT NULL UNIQUE,
			"governorate_ar" TEXT,
			"cost" REAL NOT NULL,
			"delivery_days" INTEGER DEFAULT 3,
			"is_active" INTEGER DEFAULT 1,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS "password_reset_tokens" (
			"id" TEXT PRIMARY KEY,
			"user_id" TEXT NOT NULL,
			"token" TEXT NOT NULL UNIQUE,
			"expires_at" DATETIME NOT NULL,
			"used_at" DATETIME,
			"created_at" DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS "refresh_tokens" (
			"id" TEXT PRIMARY KEY,
			"user_id" TEXT NOT NULL,
			"token" TEXT NOT NULL UNIQUE,
			"expires_at" DATETIME NOT NULL,
			"revoked_at" DATETIME,
			"created_at" DATETIME
		)`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedTestUser creates a user and returns it with a valid bearer token.
func seedTestUser(db *gorm.DB, email, role string) (models.User, string) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashed),
		Name:     "Test User",
		Role:     role,
	}
	db.Create(&user)

	token, _ := utils.GenerateToken(user.ID, user.Email, user.Role)
	return user, token
}

func seedCategory(db *gorm.DB, name string) models.Category {
	cat := models.Category{
		ID:       uuid.New(),
		Name:     name,
		IsActive: true,
	}
	db.Create(&cat)
	return cat
}

// seedProduct creates a product in the given category. A nil categoryID
// creates an uncategorized product.
func seedProduct(db *gorm.DB, title string, categoryID *uuid.UUID, price float64, stock int) models.Product {
	categoryName := models.UncategorizedLabel
	if categoryID != nil {
		var cat models.Category
		if err := db.Where("id = ?", categoryID).First(&cat).Error; err == nil {
			categoryName = cat.Name
		}
	}

	prod := models.Product{
		ID:           uuid.New(),
		Title:        title,
		Price:        price,
		Stock:        stock,
		CategoryID:   categoryID,
		CategoryName: categoryName,
	}
	db.Omit("Category", "Images").Create(&prod)
	return prod
}

func seedCartItem(db *gorm.DB, userID, productID uuid.UUID, quantity int) models.CartItem {
	item := models.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	db.Omit("User", "Product").Create(&item)
	return item
}

func seedWishlistItem(db *gorm.DB, userID, productID uuid.UUID) models.WishlistItem {
	item := models.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
	}
	db.Omit("User", "Product").Create(&item)
	return item
}

func seedShippingCost(db *gorm.DB, governorate string, cost float64, active bool) models.ShippingCost {
	rate := models.ShippingCost{
		ID:          uuid.New(),
		Governorate: governorate,
		Cost:        cost,
		IsActive:    active,
	}
	db.Create(&rate)
	// Explicitly update is_active so false survives GORM's zero-value skip
	db.Model(&rate).Update("is_active", active)
	return rate
}

func seedOrder(db *gorm.DB, userID uuid.UUID, status models.OrderStatus) models.Order {
	order := models.Order{
		ID:                  uuid.New(),
		UserID:              userID,
		Status:              status,
		CustomerName:        "Test Customer",
		CustomerEmail:       "customer@test.com",
		ShippingAddress:     "1 Test Street",
		ShippingGovernorate: "Cairo",
		Subtotal:            100,
		ShippingCost:        50,
		Total:               150,
	}
	db.Omit("User", "Items").Create(&order)
	return order
}

func setupAuthRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	authHandler := &AuthHandler{DB: db}

	api := r.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)
	api.POST("/auth/refresh", authHandler.RefreshTokenHandler)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/auth/profile", authHandler.GetProfile)
	protected.PUT("/auth/profile", authHandler.UpdateProfile)
	protected.PUT("/auth/password", authHandler.ChangePassword)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.GET("/users", authHandler.ListUsers)
	admin.GET("/users/:id", authHandler.GetUser)
	admin.PUT("/users/:id", authHandler.UpdateUser)

	return r
}

func setupProductRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	productHandler := &ProductHandler{DB: db}

	api := r.Group("/api")
	api.GET("/products", productHandler.GetProducts)
	api.GET("/products/:id", productHandler.GetProduct)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.POST("/products", productHandler.CreateProduct)
	admin.PUT("/products/:id", productHandler.UpdateProduct)
	admin.DELETE("/products/:id", productHandler.DeleteProduct)

	return r
}

func setupCategoryRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	categoryHandler := &CategoryHandler{DB: db}

	api := r.Group("/api")
	api.GET("/categories", categoryHandler.GetCategories)
	api.GET("/categories/:id", categoryHandler.GetCategory)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.POST("/categories", categoryHandler.CreateCategory)
	admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
	admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	return r
}

func setupCartRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	cartHandler := &CartHandler{DB: db}

	api := r.Group("/api")
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/cart", cartHandler.GetCart)
	protected.GET("/cart/count", cartHandler.GetCartCount)
	protected.POST("/cart", cartHandler.AddToCart)
	protected.PUT("/cart/:id", cartHandler.UpdateCartItem)
	protected.DELETE("/cart/:id", cartHandler.RemoveFromCart)
	protected.DELETE("/cart", cartHandler.ClearCart)

	return r
}

func setupWishlistRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	wishlistHandler := &WishlistHandler{DB: db}

	api := r.Group("/api")
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/wishlist", wishlistHandler.GetWishlist)
	protected.POST("/wishlist/toggle", wishlistHandler.ToggleWishlist)
	protected.POST("/wishlist/move-to-cart", wishlistHandler.MoveAllToCart)
	protected.DELETE("/wishlist/:id", wishlistHandler.RemoveFromWishlist)
	protected.DELETE("/wishlist", wishlistHandler.ClearWishlist)

	return r
}

func setupOrderRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	orderHandler := &OrderHandler{DB: db}

	api := r.Group("/api")
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	protected.POST("/orders", orderHandler.CreateOrder)
	protected.GET("/orders", orderHandler.GetOrders)
	protected.GET("/orders/:id", orderHandler.GetOrder)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
	admin.GET("/dashboard", orderHandler.GetAdminDashboard)

	return r
}

func setupShippingRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	shippingHandler := &ShippingHandler{DB: db}

	api := r.Group("/api")
	api.GET("/shipping-costs", shippingHandler.GetShippingCosts)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.GET("/shipping-costs", shippingHandler.ListShippingCosts)
	admin.POST("/shipping-costs", shippingHandler.CreateShippingCost)
	admin.PUT("/shipping-costs/:id", shippingHandler.UpdateShippingCost)
	admin.DELETE("/shipping-costs/:id", shippingHandler.DeleteShippingCost)

	return r
}

func setupContactRouter() *gin.Engine {
	r := gin.New()
	contactHandler := &ContactHandler{}

	api := r.Group("/api")
	api.POST("/contact", contactHandler.SubmitContact)

	return r
}

func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authRequest(method, url string, body interface{}, token string) *http.Request {
	req := jsonRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func parseResponseArray(w *httptest.ResponseRecorder) []map[string]interface{} {
	var resp []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}
