package handlers

import (
	"net/http"

	"shopnow-backend/utils"

	"github.com/gin-gonic/gin"
)

// ContactHandler relays contact form submissions, it owns no storage.
type ContactHandler struct{}

// SubmitContact relays the storefront contact form to the shop inbox over
// SMTP. Nothing is persisted.
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required,email"`
		Subject string `json:"subject" binding:"required"`
		Message string `json:"message" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	utils.SendContactMessage(req.Name, req.Email, req.Subject, req.Message)

	c.JSON(http.StatusOK, gin.H{"message": "Thanks for reaching out, we will get back to you soon."})
}
