// internal/domain/order/entity.go
package order

import (
	"fmt"
	"hash/fnv"
	"time"

	"gorm.io/gorm"
)

// Order statuses
const (
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Order represents a placed customer order
type Order struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	OrderNumber string `json:"order_number" gorm:"uniqueIndex;not null"`
	UserID      uint   `json:"user_id" gorm:"not null;index"`
	Status      string `json:"status" gorm:"not null;default:'pending';index"`

	// Shipping details captured at checkout
	CustomerName string `json:"customer_name" gorm:"not null"`
	Phone        string `json:"phone" gorm:"not null"`
	Email        string `json:"email" gorm:"not null"`
	Address      string `json:"address" gorm:"not null"`
	City         string `json:"city" gorm:"not null"`
	State        string `json:"state" gorm:"not null"`
	Pincode      string `json:"pincode" gorm:"not null"`

	Subtotal    int64 `json:"subtotal" gorm:"not null"`     // Items total in cents
	DeliveryFee int64 `json:"delivery_fee" gorm:"not null"` // In cents
	TotalAmount int64 `json:"total_amount" gorm:"not null"` // In cents

	OrderDate         time.Time `json:"order_date" gorm:"not null;index"`
	EstimatedDelivery time.Time `json:"estimated_delivery" gorm:"not null"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// OrderItem is a snapshot of a product line at the time the order was placed
type OrderItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OrderID     uint      `json:"order_id" gorm:"not null;index"`
	ProductID   uint      `json:"product_id" gorm:"not null"`
	ProductName string    `json:"product_name" gorm:"not null"`
	Price       int64     `json:"price" gorm:"not null"` // Unit price in cents at purchase time
	ImageURL    string    `json:"image_url"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// LineTotal returns the extended price for an order line
func (i OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// TableName returns the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName returns the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// DisplayOrderID returns the short customer-facing order label.
// It is derived from the order number and stable across calls.
func (o *Order) DisplayOrderID() string {
	return DisplayOrderID(o.OrderNumber)
}

// DisplayOrderID derives the short "ORD-XXXXX" label from an order number.
// The label is display-only; lookups always use the full order number.
func DisplayOrderID(orderNumber string) string {
	h := fnv.New32a()
	h.Write([]byte(orderNumber))
	return fmt.Sprintf("ORD-%05d", h.Sum32()%100000)
}

// CanTransitionTo reports whether the order status may move to the target status
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := statusTransitions[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

var statusTransitions = map[string][]string{
	StatusPending:   {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// IsValidStatus reports whether s is a known order status
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}
