// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sellasticpots/shop-backend/internal/config"
	"github.com/sellasticpots/shop-backend/internal/domain/catalog"
	"github.com/sellasticpots/shop-backend/internal/pkg/apperr"
)

const cartCountCacheTTL = 10 * time.Minute

// Service handles cart business logic
type Service struct {
	db      *gorm.DB
	redis   *redis.Client
	catalog *catalog.Service
	cfg     *config.Config
	logger  *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:      db,
		redis:   redisClient,
		catalog: catalog.NewService(db),
		cfg:     cfg,
		logger:  logger,
	}
}

// AddRequest represents a request to add a product to the cart
type AddRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// SetQuantityRequest represents a request to set the quantity of a cart line
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// Line is a cart item joined with live product data
type Line struct {
	ProductID    uint   `json:"product_id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	ImageURL     string `json:"image_url"`
	FreeDelivery bool   `json:"free_delivery"`
	Quantity     int    `json:"quantity"`
	LineTotal    int64  `json:"line_total"`
}

// Summary represents the full cart with totals
type Summary struct {
	Items       []Line `json:"items"`
	ItemCount   int    `json:"item_count"`
	Subtotal    int64  `json:"subtotal"`
	DeliveryFee int64  `json:"delivery_fee"`
	Total       int64  `json:"total"`
}

// Add adds a product to the user's cart. If the product is already in
// the cart the quantities are merged.
func (s *Service) Add(ctx context.Context, userID uint, req *AddRequest) error {
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	if _, err := s.catalog.Get(req.ProductID); err != nil {
		return err
	}

	var item CartItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&item).Error
	switch err {
	case nil:
		item.Quantity += req.Quantity
		if err := s.db.Save(&item).Error; err != nil {
			return apperr.NewBackend("update cart item", err)
		}
	case gorm.ErrRecordNotFound:
		item = CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return apperr.NewBackend("add cart item", err)
		}
	default:
		return apperr.NewBackend("look up cart item", err)
	}

	s.invalidateCountCache(ctx, userID)
	return nil
}

// SetQuantity sets the quantity of a cart line. A quantity of zero or
// less removes the line.
func (s *Service) SetQuantity(ctx context.Context, userID, productID uint, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, userID, productID)
	}

	result := s.db.Model(&CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if result.Error != nil {
		return apperr.NewBackend("set cart quantity", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}

	s.invalidateCountCache(ctx, userID)
	return nil
}

// Remove removes a product from the cart. Removing an absent product
// is not an error.
func (s *Service) Remove(ctx context.Context, userID, productID uint) error {
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&CartItem{}).Error
	if err != nil {
		return apperr.NewBackend("remove cart item", err)
	}
	s.invalidateCountCache(ctx, userID)
	return nil
}

// Clear removes all items from the user's cart
func (s *Service) Clear(ctx context.Context, userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return apperr.NewBackend("clear cart", err)
	}
	s.invalidateCountCache(ctx, userID)
	return nil
}

// Get returns the user's cart joined with live product data. Lines
// whose products are no longer available are skipped.
func (s *Service) Get(ctx context.Context, userID uint) (*Summary, error) {
	items, err := s.items(userID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.catalog.GetMany(productIDs)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Items: []Line{}}
	allFreeDelivery := true
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		line := Line{
			ProductID:    product.ID,
			Name:         product.Name,
			Price:        product.Price,
			ImageURL:     product.ImageURL,
			FreeDelivery: product.FreeDelivery,
			Quantity:     item.Quantity,
			LineTotal:    product.Price * int64(item.Quantity),
		}
		summary.Items = append(summary.Items, line)
		summary.ItemCount += item.Quantity
		summary.Subtotal += line.LineTotal
		if !product.FreeDelivery {
			allFreeDelivery = false
		}
	}

	if len(summary.Items) > 0 && !allFreeDelivery {
		summary.DeliveryFee = s.cfg.Shipping.DeliveryFee
	}
	summary.Total = summary.Subtotal + summary.DeliveryFee

	return summary, nil
}

// Count returns the total quantity of items in the user's cart. The
// count is cached in Redis and recomputed on a miss.
func (s *Service) Count(ctx context.Context, userID uint) (int, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, s.countCacheKey(userID)).Result()
		if err == nil {
			if count, err := strconv.Atoi(cached); err == nil {
				return count, nil
			}
		}
	}

	var count int64
	err := s.db.Model(&CartItem{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&count).Error
	if err != nil {
		return 0, apperr.NewBackend("count cart items", err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, s.countCacheKey(userID), count, cartCountCacheTTL).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to cache cart count")
		}
	}

	return int(count), nil
}

func (s *Service) items(userID uint) ([]CartItem, error) {
	var items []CartItem
	err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error
	if err != nil {
		return nil, apperr.NewBackend("load cart items", err)
	}
	return items, nil
}

func (s *Service) countCacheKey(userID uint) string {
	return fmt.Sprintf("cart:count:%d", userID)
}

func (s *Service) invalidateCountCache(ctx context.Context, userID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.countCacheKey(userID)).Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate cart count cache")
	}
}
