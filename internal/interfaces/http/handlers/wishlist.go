// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sellasticpots/shop-backend/internal/domain/wishlist"
	"github.com/sellasticpots/shop-backend/internal/interfaces/http/middleware"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlist *wishlist.Service
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService *wishlist.Service) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlistService}
}

// List handles GET /wishlist
func (h *WishlistHandler) List(c *gin.Context) {
	items, err := h.wishlist.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Add handles POST /wishlist/items
func (h *WishlistHandler) Add(c *gin.Context) {
	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.wishlist.Add(c.Request.Context(), middleware.UserID(c), req.ProductID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "added to wishlist"})
}

// Remove handles DELETE /wishlist/items/:id
func (h *WishlistHandler) Remove(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.wishlist.Remove(c.Request.Context(), middleware.UserID(c), productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed from wishlist"})
}

// Toggle handles POST /wishlist/items/:id/toggle
func (h *WishlistHandler) Toggle(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.wishlist.Toggle(c.Request.Context(), middleware.UserID(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// IsMember handles GET /wishlist/items/:id
func (h *WishlistHandler) IsMember(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	member, err := h.wishlist.IsMember(c.Request.Context(), middleware.UserID(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": productID, "in_wishlist": member})
}

// Count handles GET /wishlist/count
func (h *WishlistHandler) Count(c *gin.Context) {
	count, err := h.wishlist.Count(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Clear handles DELETE /wishlist
func (h *WishlistHandler) Clear(c *gin.Context) {
	if err := h.wishlist.Clear(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "wishlist cleared"})
}
