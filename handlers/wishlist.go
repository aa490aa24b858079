package handlers

import (
	"net/http"

	"shopnow-backend/models"
	"shopnow-backend/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WishlistHandler struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

func (h *WishlistHandler) notifyCartChanged(userID uuid.UUID) {
	if h.Hub != nil {
		h.Hub.PublishCartChanged(userID)
	}
}

func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var items []models.WishlistItem
	if err := h.DB.Preload("Product").Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wishlist"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// ToggleWishlist adds the product if absent and removes it if present, the
// storefront heart button is a single endpoint.
func (h *WishlistHandler) ToggleWishlist(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.WishlistItem
	err := h.DB.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing).Error
	if err == nil {
		if err := h.DB.Delete(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"in_wishlist": false})
		return
	}

	var product models.Product
	if err := h.DB.Where("id = ?", req.ProductID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	item := models.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID.(uuid.UUID),
		ProductID: req.ProductID,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"in_wishlist": true})
}

func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.WishlistItem{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item from wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from wishlist"})
}

func (h *WishlistHandler) ClearWishlist(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.DB.Where("user_id = ?", userID).Delete(&models.WishlistItem{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Wishlist cleared"})
}

// MoveAllToCart transfers every wishlist item into the cart. Items merge
// into existing cart rows, out-of-stock products stay on the wishlist and
// are reported in the failed counter.
func (h *WishlistHandler) MoveAllToCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	uid := userID.(uuid.UUID)

	var items []models.WishlistItem
	if err := h.DB.Preload("Product").Where("user_id = ?", uid).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wishlist"})
		return
	}

	moved := 0
	failed := 0
	for _, item := range items {
		if item.Product.Stock < 1 {
			failed++
			continue
		}

		var cartItem models.CartItem
		err := h.DB.Where("user_id = ? AND product_id = ?", uid, item.ProductID).First(&cartItem).Error
		if err == nil {
			if cartItem.Quantity < item.Product.Stock {
				cartItem.Quantity++
			}
			if err := h.DB.Save(&cartItem).Error; err != nil {
				failed++
				continue
			}
		} else {
			cartItem = models.CartItem{
				ID:        uuid.New(),
				UserID:    uid,
				ProductID: item.ProductID,
				Quantity:  1,
			}
			if err := h.DB.Create(&cartItem).Error; err != nil {
				failed++
				continue
			}
		}

		if err := h.DB.Delete(&models.WishlistItem{}, "id = ?", item.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move wishlist items"})
			return
		}
		moved++
	}

	if moved > 0 {
		h.notifyCartChanged(uid)
	}
	c.JSON(http.StatusOK, gin.H{"moved": moved, "failed": failed})
}
