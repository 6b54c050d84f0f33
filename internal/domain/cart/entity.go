// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// CartItem represents a product entry in a user's cart
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_cart_user_product"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for CartItem
func (CartItem) TableName() string {
	return "cart_items"
}
