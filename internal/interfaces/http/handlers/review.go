// internal/interfaces/http/handlers/review.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sellasticpots/shop-backend/internal/domain/review"
	"github.com/sellasticpots/shop-backend/internal/interfaces/http/middleware"
)

// ReviewHandler handles product review endpoints
type ReviewHandler struct {
	reviews *review.Service
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *review.Service) *ReviewHandler {
	return &ReviewHandler{reviews: reviewService}
}

// Submit handles POST /products/:id/reviews
func (h *ReviewHandler) Submit(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req review.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.reviews.Submit(middleware.UserID(c), middleware.DisplayName(c), productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// List handles GET /products/:id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.reviews.List(productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Summary handles GET /products/:id/reviews/summary
func (h *ReviewHandler) Summary(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.reviews.Summary(productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
