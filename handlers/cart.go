package handlers

import (
	"net/http"

	"shopnow-backend/models"
	"shopnow-backend/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartHandler struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

// notifyCartChanged pushes the advisory cart_changed event when a hub is
// wired. Tests construct the handler without one.
func (h *CartHandler) notifyCartChanged(userID uuid.UUID) {
	if h.Hub != nil {
		h.Hub.PublishCartChanged(userID)
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var cartItems []models.CartItem
	if err := h.DB.Preload("Product").Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&cartItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	var subtotal float64
	var itemCount int
	for i := range cartItems {
		subtotal += cartItems[i].Subtotal()
		itemCount += cartItems[i].Quantity
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      cartItems,
		"subtotal":   subtotal,
		"item_count": itemCount,
	})
}

// GetCartCount serves the badge counter in the storefront header.
func (h *CartHandler) GetCartCount(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var count int64
	if err := h.DB.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  int       `json:"quantity" binding:"omitempty,min=1"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.DB.Where("id = ?", req.ProductID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if product.Stock < req.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock"})
		return
	}

	// Adding a product already in the cart merges into the existing row
	var cartItem models.CartItem
	err := h.DB.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&cartItem).Error

	if err == nil {
		cartItem.Quantity += req.Quantity
		if cartItem.Quantity > product.Stock {
			cartItem.Quantity = product.Stock
		}
		if err := h.DB.Save(&cartItem).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
	} else {
		cartItem = models.CartItem{
			ID:        uuid.New(),
			UserID:    userID.(uuid.UUID),
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}
		if err := h.DB.Create(&cartItem).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
			return
		}
	}

	h.DB.Preload("Product").Preload("Product.Category").First(&cartItem, "id = ?", cartItem.ID)
	h.notifyCartChanged(userID.(uuid.UUID))
	c.JSON(http.StatusOK, cartItem)
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")

	// Quantity is a pointer so zero survives binding, a quantity below one
	// removes the row instead of updating it.
	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var cartItem models.CartItem
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&cartItem).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}

	if *req.Quantity < 1 {
		if err := h.DB.Delete(&cartItem).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item from cart"})
			return
		}
		h.notifyCartChanged(userID.(uuid.UUID))
		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
		return
	}

	var product models.Product
	h.DB.Where("id = ?", cartItem.ProductID).First(&product)
	if product.Stock < *req.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock"})
		return
	}

	cartItem.Quantity = *req.Quantity
	if err := h.DB.Save(&cartItem).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
		return
	}

	h.DB.Preload("Product").Preload("Product.Category").First(&cartItem, "id = ?", cartItem.ID)
	h.notifyCartChanged(userID.(uuid.UUID))
	c.JSON(http.StatusOK, cartItem)
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item from cart"})
		return
	}

	h.notifyCartChanged(userID.(uuid.UUID))
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	h.notifyCartChanged(userID.(uuid.UUID))
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
