// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sellasticpots/shop-backend/internal/domain/cart"
	"github.com/sellasticpots/shop-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cart *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cart: cartService}
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	summary, err := h.cart.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Add handles POST /cart/items
func (h *CartHandler) Add(c *gin.Context) {
	var req cart.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cart.Add(c.Request.Context(), middleware.UserID(c), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "added to cart"})
}

// SetQuantity handles PUT /cart/items/:id
func (h *CartHandler) SetQuantity(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req cart.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cart.SetQuantity(c.Request.Context(), middleware.UserID(c), productID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart updated"})
}

// Remove handles DELETE /cart/items/:id
func (h *CartHandler) Remove(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.cart.Remove(c.Request.Context(), middleware.UserID(c), productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed from cart"})
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

// Count handles GET /cart/count
func (h *CartHandler) Count(c *gin.Context) {
	count, err := h.cart.Count(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
