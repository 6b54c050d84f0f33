// internal/domain/catalog/entity.go
package catalog

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Product represents a product in the catalog
type Product struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null;index"`
	Description  string         `json:"description" gorm:"type:text"`
	Price        int64          `json:"price" gorm:"not null"` // Price in cents
	Category     string         `json:"category" gorm:"index"`
	ImageURL     string         `json:"image_url"`
	Tags         string         `json:"-" gorm:"type:text"` // Comma-separated
	Rating       float64        `json:"rating" gorm:"default:0"`
	ReviewCount  int            `json:"review_count" gorm:"default:0"`
	FreeDelivery bool           `json:"free_delivery" gorm:"default:false"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	Images       []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// ProductImage represents an additional image for a product
type ProductImage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"product_id" gorm:"not null;index"`
	URL       string    `json:"url" gorm:"not null"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for Product
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for ProductImage
func (ProductImage) TableName() string {
	return "product_images"
}

// TagList returns the product tags as a slice
func (p *Product) TagList() []string {
	if p.Tags == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
