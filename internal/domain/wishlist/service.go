// internal/domain/wishlist/service.go
package wishlist

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sellasticpots/shop-backend/internal/domain/catalog"
	"github.com/sellasticpots/shop-backend/internal/pkg/apperr"
)

const membershipCacheTTL = 30 * time.Minute

// Service handles wishlist business logic
type Service struct {
	db      *gorm.DB
	redis   *redis.Client
	catalog *catalog.Service
	logger  *logrus.Logger
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *Service {
	return &Service{
		db:      db,
		redis:   redisClient,
		catalog: catalog.NewService(db),
		logger:  logger,
	}
}

// Item is a wishlist entry joined with live product data
type Item struct {
	ProductID    uint      `json:"product_id"`
	Name         string    `json:"name"`
	Price        int64     `json:"price"`
	ImageURL     string    `json:"image_url"`
	Rating       float64   `json:"rating"`
	FreeDelivery bool      `json:"free_delivery"`
	AddedAt      time.Time `json:"added_at"`
}

// ToggleResponse reports the membership state after a toggle
type ToggleResponse struct {
	ProductID  uint `json:"product_id"`
	InWishlist bool `json:"in_wishlist"`
}

// Add adds a product to the user's wishlist. Adding a product that is
// already present is an error.
func (s *Service) Add(ctx context.Context, userID, productID uint) error {
	if _, err := s.catalog.Get(productID); err != nil {
		return err
	}

	var count int64
	err := s.db.Model(&WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return apperr.NewBackend("check wishlist", err)
	}
	if count > 0 {
		return apperr.ErrDuplicate
	}

	item := &WishlistItem{UserID: userID, ProductID: productID}
	if err := s.db.Create(item).Error; err != nil {
		return apperr.NewBackend("add wishlist item", err)
	}

	s.cacheAdd(ctx, userID, productID)
	return nil
}

// Remove removes a product from the wishlist. Removing an absent
// product is not an error.
func (s *Service) Remove(ctx context.Context, userID, productID uint) error {
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&WishlistItem{}).Error
	if err != nil {
		return apperr.NewBackend("remove wishlist item", err)
	}

	s.cacheRemove(ctx, userID, productID)
	return nil
}

// Toggle flips the product's wishlist membership and returns the
// resulting state.
func (s *Service) Toggle(ctx context.Context, userID, productID uint) (*ToggleResponse, error) {
	member, err := s.IsMember(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if member {
		if err := s.Remove(ctx, userID, productID); err != nil {
			return nil, err
		}
		return &ToggleResponse{ProductID: productID, InWishlist: false}, nil
	}

	if err := s.Add(ctx, userID, productID); err != nil {
		return nil, err
	}
	return &ToggleResponse{ProductID: productID, InWishlist: true}, nil
}

// IsMember reports whether the product is in the user's wishlist. The
// membership set is mirrored in Redis and primed lazily from the
// database.
func (s *Service) IsMember(ctx context.Context, userID, productID uint) (bool, error) {
	if s.redis != nil {
		key := s.cacheKey(userID)
		exists, err := s.redis.Exists(ctx, key).Result()
		if err == nil && exists > 0 {
			member, err := s.redis.SIsMember(ctx, key, strconv.FormatUint(uint64(productID), 10)).Result()
			if err == nil {
				return member, nil
			}
		}
		s.primeCache(ctx, userID)
	}

	var count int64
	err := s.db.Model(&WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, apperr.NewBackend("check wishlist", err)
	}
	return count > 0, nil
}

// List returns the wishlist joined with live product data, newest
// first. Entries whose products are no longer available are skipped.
func (s *Service) List(ctx context.Context, userID uint) ([]Item, error) {
	var entries []WishlistItem
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&entries).Error
	if err != nil {
		return nil, apperr.NewBackend("load wishlist", err)
	}

	productIDs := make([]uint, 0, len(entries))
	for _, entry := range entries {
		productIDs = append(productIDs, entry.ProductID)
	}

	products, err := s.catalog.GetMany(productIDs)
	if err != nil {
		return nil, err
	}

	items := []Item{}
	for _, entry := range entries {
		product, ok := products[entry.ProductID]
		if !ok {
			continue
		}
		items = append(items, Item{
			ProductID:    product.ID,
			Name:         product.Name,
			Price:        product.Price,
			ImageURL:     product.ImageURL,
			Rating:       product.Rating,
			FreeDelivery: product.FreeDelivery,
			AddedAt:      entry.CreatedAt,
		})
	}
	return items, nil
}

// Count returns the number of products in the user's wishlist
func (s *Service) Count(ctx context.Context, userID uint) (int, error) {
	var count int64
	err := s.db.Model(&WishlistItem{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, apperr.NewBackend("count wishlist", err)
	}
	return int(count), nil
}

// Clear removes all products from the user's wishlist
func (s *Service) Clear(ctx context.Context, userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&WishlistItem{}).Error; err != nil {
		return apperr.NewBackend("clear wishlist", err)
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, s.cacheKey(userID)).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to clear wishlist cache")
		}
	}
	return nil
}

func (s *Service) cacheKey(userID uint) string {
	return fmt.Sprintf("wishlist:%d", userID)
}

func (s *Service) cacheAdd(ctx context.Context, userID, productID uint) {
	if s.redis == nil {
		return
	}
	key := s.cacheKey(userID)
	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return
	}
	if err := s.redis.SAdd(ctx, key, strconv.FormatUint(uint64(productID), 10)).Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to update wishlist cache")
	}
}

func (s *Service) cacheRemove(ctx context.Context, userID, productID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.SRem(ctx, s.cacheKey(userID), strconv.FormatUint(uint64(productID), 10)).Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to update wishlist cache")
	}
}

// primeCache mirrors the user's wishlist into a Redis set. Empty
// wishlists are not mirrored since an empty set cannot be stored.
func (s *Service) primeCache(ctx context.Context, userID uint) {
	var entries []WishlistItem
	if err := s.db.Where("user_id = ?", userID).Find(&entries).Error; err != nil {
		s.logger.WithError(err).Warn("Failed to prime wishlist cache")
		return
	}
	if len(entries) == 0 {
		return
	}

	members := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		members = append(members, strconv.FormatUint(uint64(entry.ProductID), 10))
	}

	key := s.cacheKey(userID)
	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, membershipCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to prime wishlist cache")
	}
}
