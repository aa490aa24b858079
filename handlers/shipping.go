package handlers

import (
	"net/http"

	"shopnow-backend/models"
	"shopnow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShippingHandler struct {
	DB *gorm.DB
}

// GetShippingCosts is the public rate table shown on the checkout page.
// Only active governorates are listed.
func (h *ShippingHandler) GetShippingCosts(c *gin.Context) {
	var costs []models.ShippingCost
	if err := h.DB.Where("is_active = ?", true).Order("governorate ASC").Find(&costs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shipping costs"})
		return
	}

	c.JSON(http.StatusOK, costs)
}

// ListShippingCosts is the admin view including inactive rows.
func (h *ShippingHandler) ListShippingCosts(c *gin.Context) {
	var costs []models.ShippingCost
	if err := h.DB.Order("governorate ASC").Find(&costs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shipping costs"})
		return
	}

	c.JSON(http.StatusOK, costs)
}

func (h *ShippingHandler) CreateShippingCost(c *gin.Context) {
	var req struct {
		Governorate   string  `json:"governorate" binding:"required"`
		GovernorateAr string  `json:"governorate_ar"`
		Cost          float64 `json:"cost" binding:"min=0"`
		DeliveryDays  int     `json:"delivery_days" binding:"omitempty,min=1"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if req.DeliveryDays == 0 {
		req.DeliveryDays = 3
	}

	cost := models.ShippingCost{
		ID:            uuid.New(),
		Governorate:   req.Governorate,
		GovernorateAr: req.GovernorateAr,
		Cost:          req.Cost,
		DeliveryDays:  req.DeliveryDays,
		IsActive:      true,
	}

	if err := h.DB.Create(&cost).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A rate for this governorate already exists"})
		return
	}

	c.JSON(http.StatusCreated, cost)
}

func (h *ShippingHandler) UpdateShippingCost(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		GovernorateAr *string  `json:"governorate_ar"`
		Cost          *float64 `json:"cost"`
		DeliveryDays  *int     `json:"delivery_days"`
		IsActive      *bool    `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var cost models.ShippingCost
	if err := h.DB.Where("id = ?", id).First(&cost).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shipping rate not found"})
		return
	}

	if req.GovernorateAr != nil {
		cost.GovernorateAr = *req.GovernorateAr
	}
	if req.Cost != nil {
		if *req.Cost < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cost cannot be negative"})
			return
		}
		cost.Cost = *req.Cost
	}
	if req.DeliveryDays != nil {
		if *req.DeliveryDays < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Delivery days must be at least 1"})
			return
		}
		cost.DeliveryDays = *req.DeliveryDays
	}
	if req.IsActive != nil {
		cost.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&cost).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update shipping rate"})
		return
	}

	c.JSON(http.StatusOK, cost)
}

func (h *ShippingHandler) DeleteShippingCost(c *gin.Context) {
	id := c.Param("id")

	var cost models.ShippingCost
	if err := h.DB.Where("id = ?", id).First(&cost).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shipping rate not found"})
		return
	}

	if err := h.DB.Delete(&cost).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete shipping rate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Shipping rate deleted successfully"})
}
