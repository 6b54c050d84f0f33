// internal/domain/catalog/service.go
package catalog

import (
	"strings"

	"gorm.io/gorm"

	"github.com/sellasticpots/shop-backend/internal/pkg/apperr"
)

// Service handles catalog business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new catalog service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListRequest represents the product listing query
type ListRequest struct {
	Category     string `form:"category"`
	Search       string `form:"search"`
	Tag          string `form:"tag"`
	FreeDelivery *bool  `form:"free_delivery"`
	SortBy       string `form:"sort_by"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

// ListResponse represents the product listing result
type ListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination holds paging metadata
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// List returns active products matching the request filters
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Product{}).Where("is_active = ?", true)

	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}
	if req.Tag != "" {
		query = query.Where("tags LIKE ?", "%"+req.Tag+"%")
	}
	if req.FreeDelivery != nil {
		query = query.Where("free_delivery = ?", *req.FreeDelivery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperr.NewBackend("count products", err)
	}

	switch req.SortBy {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	case "rating":
		query = query.Order("rating DESC")
	case "newest":
		query = query.Order("created_at DESC")
	default:
		query = query.Order("name ASC")
	}

	var products []Product
	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("Images").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, apperr.NewBackend("list products", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// Get returns a single active product by ID
func (s *Service) Get(productID uint) (*Product, error) {
	var product Product
	err := s.db.Preload("Images").Where("id = ? AND is_active = ?", productID, true).First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.NewBackend("get product", err)
	}
	return &product, nil
}

// GetMany returns the active products for the given IDs, keyed by ID
func (s *Service) GetMany(productIDs []uint) (map[uint]*Product, error) {
	if len(productIDs) == 0 {
		return map[uint]*Product{}, nil
	}

	var products []Product
	if err := s.db.Where("id IN ? AND is_active = ?", productIDs, true).Find(&products).Error; err != nil {
		return nil, apperr.NewBackend("get products", err)
	}

	result := make(map[uint]*Product, len(products))
	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}

// Categories returns the distinct categories of active products
func (s *Service) Categories() ([]string, error) {
	var categories []string
	err := s.db.Model(&Product{}).
		Where("is_active = ?", true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, apperr.NewBackend("list categories", err)
	}
	return categories, nil
}

// RefreshRatingStats recalculates and stores the aggregate rating for a product
func (s *Service) RefreshRatingStats(productID uint, average float64, count int) error {
	err := s.db.Model(&Product{}).Where("id = ?", productID).Updates(map[string]interface{}{
		"rating":       average,
		"review_count": count,
	}).Error
	if err != nil {
		return apperr.NewBackend("update product rating", err)
	}
	return nil
}
