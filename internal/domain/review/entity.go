// internal/domain/review/entity.go
package review

import (
	"time"
)

// Review represents a customer review for a product
type Review struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	ProductID          uint      `json:"product_id" gorm:"not null;index"`
	UserID             uint      `json:"user_id" gorm:"not null;index"`
	UserName           string    `json:"user_name" gorm:"not null"`
	Rating             float64   `json:"rating" gorm:"not null"`
	Comment            string    `json:"comment" gorm:"type:text;not null"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase" gorm:"default:false"`
	CreatedAt          time.Time `json:"created_at" gorm:"index"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName returns the table name for Review
func (Review) TableName() string {
	return "reviews"
}
