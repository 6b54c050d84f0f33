// internal/interfaces/http/handlers/order.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sellasticpots/shop-backend/internal/domain/order"
	"github.com/sellasticpots/shop-backend/internal/interfaces/http/middleware"
	"github.com/sellasticpots/shop-backend/internal/pkg/pdf"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orders *order.Service
	pdf    *pdf.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, pdfService *pdf.Service) *OrderHandler {
	return &OrderHandler{orders: orderService, pdf: pdfService}
}

// Place handles POST /orders
func (h *OrderHandler) Place(c *gin.Context) {
	var req order.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.orders.PlaceOrder(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.List(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get handles GET /orders/:number
func (h *OrderHandler) Get(c *gin.Context) {
	resp, err := h.orders.Get(middleware.UserID(c), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel handles POST /orders/:number/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	resp, err := h.orders.Cancel(middleware.UserID(c), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Receipt handles GET /orders/:number/receipt
func (h *OrderHandler) Receipt(c *gin.Context) {
	resp, err := h.orders.Get(middleware.UserID(c), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := h.pdf.GenerateReceipt(resp)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("receipt-%s.pdf", resp.DisplayID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// UpdateStatus handles PUT /admin/orders/:number/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.orders.UpdateStatus(c.Param("number"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
