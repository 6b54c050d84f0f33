// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sellasticpots/shop-backend/internal/config"
	"github.com/sellasticpots/shop-backend/internal/domain/cart"
	"github.com/sellasticpots/shop-backend/internal/pkg/apperr"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var pincodePattern = regexp.MustCompile(`^\d{6}$`)

// ConfirmationSender sends order confirmation mail. Implementations
// must be safe to call best-effort; failures never fail the order.
type ConfirmationSender interface {
	SendOrderConfirmation(o *Order) error
}

// Service handles order business logic
type Service struct {
	db     *gorm.DB
	cart   *cart.Service
	mailer ConfirmationSender
	cfg    *config.Config
	logger *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cartService *cart.Service, mailer ConfirmationSender, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		cart:   cartService,
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
	}
}

// PlaceOrderRequest carries the shipping details for checkout
type PlaceOrderRequest struct {
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
}

// OrderResponse is an order enriched with its display label
type OrderResponse struct {
	Order
	DisplayID string `json:"display_id"`
}

// UpdateStatusRequest carries an admin status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func toResponse(o *Order) *OrderResponse {
	return &OrderResponse{Order: *o, DisplayID: o.DisplayOrderID()}
}

// ValidateShipping checks the shipping details field by field and
// returns the first failing field.
func ValidateShipping(req *PlaceOrderRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return apperr.NewValidation("customer_name", "name is required")
	}
	if digitCount(req.Phone) < 10 {
		return apperr.NewValidation("phone", "phone number must have at least 10 digits")
	}
	if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		return apperr.NewValidation("email", "invalid email address")
	}
	if strings.TrimSpace(req.Address) == "" {
		return apperr.NewValidation("address", "address is required")
	}
	if strings.TrimSpace(req.City) == "" {
		return apperr.NewValidation("city", "city is required")
	}
	if strings.TrimSpace(req.State) == "" {
		return apperr.NewValidation("state", "state is required")
	}
	if !pincodePattern.MatchString(strings.TrimSpace(req.Pincode)) {
		return apperr.NewValidation("pincode", "pincode must be exactly 6 digits")
	}
	return nil
}

func digitCount(s string) int {
	count := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}

// PlaceOrder validates the shipping details, snapshots the user's cart
// into a new order and clears the cart. The cart is only cleared after
// the order has been committed.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, req *PlaceOrderRequest) (*OrderResponse, error) {
	if err := ValidateShipping(req); err != nil {
		return nil, err
	}

	summary, err := s.cart.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(summary.Items) == 0 {
		return nil, apperr.NewValidation("cart", "cart is empty")
	}

	now := time.Now().UTC()
	order := &Order{
		OrderNumber:       uuid.New().String(),
		UserID:            userID,
		Status:            StatusPending,
		CustomerName:      strings.TrimSpace(req.CustomerName),
		Phone:             strings.TrimSpace(req.Phone),
		Email:             strings.TrimSpace(req.Email),
		Address:           strings.TrimSpace(req.Address),
		City:              strings.TrimSpace(req.City),
		State:             strings.TrimSpace(req.State),
		Pincode:           strings.TrimSpace(req.Pincode),
		Subtotal:          summary.Subtotal,
		DeliveryFee:       summary.DeliveryFee,
		TotalAmount:       summary.Total,
		OrderDate:         now,
		EstimatedDelivery: now.AddDate(0, 0, s.cfg.Shipping.DeliveryEstimateDays),
	}
	for _, line := range summary.Items {
		order.Items = append(order.Items, OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Price:       line.Price,
			ImageURL:    line.ImageURL,
			Quantity:    line.Quantity,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return apperr.NewBackend("create order", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cart.Clear(ctx, userID); err != nil {
		s.logger.WithError(err).WithField("order_number", order.OrderNumber).
			Warn("Order placed but cart could not be cleared")
	}

	if s.mailer != nil {
		if err := s.mailer.SendOrderConfirmation(order); err != nil {
			s.logger.WithError(err).WithField("order_number", order.OrderNumber).
				Warn("Failed to send order confirmation email")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"total":        order.TotalAmount,
	}).Info("Order placed")

	return toResponse(order), nil
}

// List returns the user's orders, newest first
func (s *Service) List(userID uint) ([]OrderResponse, error) {
	var orders []Order
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.NewBackend("list orders", err)
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, *toResponse(&orders[i]))
	}
	return responses, nil
}

// Get returns a single order owned by the user
func (s *Service) Get(userID uint, orderNumber string) (*OrderResponse, error) {
	order, err := s.find(userID, orderNumber)
	if err != nil {
		return nil, err
	}
	return toResponse(order), nil
}

// Cancel cancels a pending order. Orders that have shipped can no
// longer be cancelled.
func (s *Service) Cancel(userID uint, orderNumber string) (*OrderResponse, error) {
	order, err := s.find(userID, orderNumber)
	if err != nil {
		return nil, err
	}

	if order.Status != StatusPending {
		return nil, apperr.NewValidation("status", fmt.Sprintf("cannot cancel order in status %q", order.Status))
	}

	order.Status = StatusCancelled
	if err := s.db.Save(order).Error; err != nil {
		return nil, apperr.NewBackend("cancel order", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"user_id":      userID,
	}).Info("Order cancelled")

	return toResponse(order), nil
}

// UpdateStatus moves an order to a new status. Intended for admin use;
// transitions are restricted to the allowed status flow.
func (s *Service) UpdateStatus(orderNumber, status string) (*OrderResponse, error) {
	if !IsValidStatus(status) {
		return nil, apperr.NewValidation("status", fmt.Sprintf("unknown status %q", status))
	}

	var order Order
	err := s.db.Preload("Items").Where("order_number = ?", orderNumber).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.NewBackend("get order", err)
	}

	if !order.CanTransitionTo(status) {
		return nil, apperr.NewValidation("status", fmt.Sprintf("cannot move order from %q to %q", order.Status, status))
	}

	order.Status = status
	if err := s.db.Save(&order).Error; err != nil {
		return nil, apperr.NewBackend("update order status", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"status":       status,
	}).Info("Order status updated")

	return toResponse(&order), nil
}

// HasPurchased reports whether the user has a non-cancelled order
// containing the product
func (s *Service) HasPurchased(userID, productID uint) (bool, error) {
	var count int64
	err := s.db.Model(&OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status <> ? AND order_items.product_id = ?",
			userID, StatusCancelled, productID).
		Count(&count).Error
	if err != nil {
		return false, apperr.NewBackend("check purchase history", err)
	}
	return count > 0, nil
}

func (s *Service) find(userID uint, orderNumber string) (*Order, error) {
	var order Order
	err := s.db.Preload("Items").
		Where("order_number = ? AND user_id = ?", orderNumber, userID).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.NewBackend("get order", err)
	}
	return &order, nil
}
