package handlers

import (
	"fmt"
	"net/http"
	"time"

	"shopnow-backend/models"
	"shopnow-backend/realtime"
	"shopnow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultShippingCost applies when no rate row matches the governorate.
const DefaultShippingCost = 50.00

type OrderHandler struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

func (h *OrderHandler) notifyCartChanged(userID uuid.UUID) {
	if h.Hub != nil {
		h.Hub.PublishCartChanged(userID)
	}
}

// CreateOrder turns the caller's live cart into an order. Stock is checked
// and decremented under row locks, the order totals are snapshots of the
// cart at this moment, and the cart is cleared in the same transaction.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	uid := userID.(uuid.UUID)

	var req struct {
		CustomerName    string `json:"customer_name" binding:"required"`
		CustomerEmail   string `json:"customer_email" binding:"required,email"`
		ShippingAddress string `json:"shipping_address" binding:"required,min=10"`
		City            string `json:"city" binding:"required"`
		Governorate     string `json:"governorate" binding:"required"`
		Phone           string `json:"phone" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if !utils.IsValidEgyptianPhone(req.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone must be a valid Egyptian mobile number (01xxxxxxxxx)"})
		return
	}

	// The order is always built from the live cart, never from a payload
	var cartItems []models.CartItem
	if err := h.DB.Preload("Product").Where("user_id = ?", uid).Find(&cartItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	if len(cartItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	shippingCost := DefaultShippingCost
	var rate models.ShippingCost
	if err := h.DB.Where("governorate = ? AND is_active = ?", req.Governorate, true).First(&rate).Error; err == nil {
		shippingCost = rate.Cost
	}

	tx := h.DB.Begin()

	var subtotal float64
	var orderItems []models.OrderItem

	for _, item := range cartItems {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", item.ProductID).
			First(&product).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "A product in your cart is no longer available"})
			return
		}
		if product.Stock < item.Quantity {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock for " + product.Title})
			return
		}

		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
			"stock": gorm.Expr("stock - ?", item.Quantity),
			"sales": gorm.Expr("sales + ?", item.Quantity),
		}).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reserve stock"})
			return
		}

		lineTotal := product.Price * float64(item.Quantity)
		subtotal += lineTotal

		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			ImageURL:  product.ImageURL,
			Quantity:  item.Quantity,
			Price:     product.Price,
			Subtotal:  lineTotal,
		})
	}

	order := models.Order{
		ID:                  uuid.New(),
		UserID:              uid,
		Status:              models.OrderStatusPending,
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		ShippingAddress:     req.ShippingAddress,
		ShippingCity:        req.City,
		ShippingGovernorate: req.Governorate,
		ShippingPhone:       req.Phone,
		Subtotal:            subtotal,
		ShippingCost:        shippingCost,
		Total:               subtotal + shippingCost,
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}
	if err := tx.Omit("Order").CreateInBatches(&orderItems, 100).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order items"})
		return
	}

	if err := tx.Where("user_id = ?", uid).Delete(&models.CartItem{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete order"})
		return
	}

	h.DB.Preload("Items").First(&order, "id = ?", order.ID)

	// Send order confirmation email (non-blocking)
	utils.SendOrderConfirmation(req.CustomerEmail, req.CustomerName, order.OrderNumber, order.Total)

	h.notifyCartChanged(uid)
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, exists := c.Get("user_id")
	userRole, _ := c.Get("user_role")

	var orders []models.Order
	query := h.DB.Preload("Items")

	roleStr, _ := userRole.(string)

	if roleStr == "admin" {
		// Admin sees all orders, optionally filtered by status
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
	} else {
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id := c.Param("id")
	userID, _ := c.Get("user_id")
	userRole, _ := c.Get("user_role")

	var order models.Order
	query := h.DB.Preload("Items").Preload("User")

	roleStr, _ := userRole.(string)
	if roleStr == "admin" {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("id = ? AND user_id = ?", id, userID)
	}

	if err := query.First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus sets the order to any of the known statuses. There is no
// transition graph, the back-office may move an order from Pending straight
// to Shipped or back again.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if !models.IsValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Unknown order status '%s'", req.Status),
		})
		return
	}

	var order models.Order
	if err := h.DB.Where("id = ?", id).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	order.Status = req.Status
	if err := h.DB.Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	h.DB.Preload("Items").First(&order, "id = ?", order.ID)

	// Send status update email (non-blocking)
	if order.CustomerEmail != "" {
		utils.SendOrderStatusUpdate(order.CustomerEmail, order.CustomerName, order.OrderNumber, string(req.Status))
	}

	c.JSON(http.StatusOK, order)
}

// GetAdminDashboard returns pre-computed stats for the admin console.
func (h *OrderHandler) GetAdminDashboard(c *gin.Context) {
	var productCount int64
	h.DB.Model(&models.Product{}).Count(&productCount)

	var totalOrders int64
	h.DB.Model(&models.Order{}).Count(&totalOrders)

	var totalRevenue float64
	h.DB.Model(&models.Order{}).Where("status <> ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(total), 0)").Scan(&totalRevenue)

	// Revenue over the last 7 days
	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	var recentRevenue float64
	h.DB.Model(&models.Order{}).
		Where("created_at >= ? AND status <> ?", sevenDaysAgo, models.OrderStatusCancelled).
		Select("COALESCE(SUM(total), 0)").Scan(&recentRevenue)

	var pendingOrders int64
	h.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&pendingOrders)

	var categoryCount int64
	h.DB.Model(&models.Category{}).Count(&categoryCount)

	var customerCount int64
	h.DB.Model(&models.User{}).Where("role = ?", "customer").Count(&customerCount)

	var recentOrders []models.Order
	h.DB.Preload("Items").Order("created_at DESC").Limit(10).Find(&recentOrders)

	var bestSellers []models.Product
	h.DB.Order("sales DESC").Limit(5).Find(&bestSellers)

	c.JSON(http.StatusOK, gin.H{
		"total_products":   productCount,
		"total_orders":     totalOrders,
		"total_revenue":    totalRevenue,
		"recent_revenue":   recentRevenue,
		"pending_orders":   pendingOrders,
		"total_categories": categoryCount,
		"total_customers":  customerCount,
		"recent_orders":    recentOrders,
		"best_sellers":     bestSellers,
	})
}
