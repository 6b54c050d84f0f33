// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"
)

// WishlistItem represents a product saved to a user's wishlist
type WishlistItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_wishlist_user_product"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_wishlist_user_product"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for WishlistItem
func (WishlistItem) TableName() string {
	return "wishlist_items"
}
