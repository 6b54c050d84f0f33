// internal/domain/review/service.go
package review

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sellasticpots/shop-backend/internal/domain/catalog"
	"github.com/sellasticpots/shop-backend/internal/domain/order"
	"github.com/sellasticpots/shop-backend/internal/domain/user"
	"github.com/sellasticpots/shop-backend/internal/pkg/apperr"
)

// Service handles review business logic
type Service struct {
	db      *gorm.DB
	catalog *catalog.Service
	orders  *order.Service
	logger  *logrus.Logger
}

// NewService creates a new review service
func NewService(db *gorm.DB, catalogService *catalog.Service, orderService *order.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:      db,
		catalog: catalogService,
		orders:  orderService,
		logger:  logger,
	}
}

// SubmitRequest carries a new review submission
type SubmitRequest struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// ListResponse holds a product's reviews together with aggregates
type ListResponse struct {
	Reviews []Review        `json:"reviews"`
	Summary SummaryResponse `json:"summary"`
}

// SummaryResponse holds aggregate rating data for a product
type SummaryResponse struct {
	Average      float64     `json:"average"`
	Count        int         `json:"count"`
	Distribution map[int]int `json:"distribution"`
}

// Submit validates and stores a new review, then refreshes the
// product's aggregate rating.
func (s *Service) Submit(userID uint, tokenDisplayName string, productID uint, req *SubmitRequest) (*Review, error) {
	if req.Rating == 0 {
		return nil, apperr.NewValidation("rating", "rating is required")
	}
	if req.Rating < 0 || req.Rating > 5 {
		return nil, apperr.NewValidation("rating", "rating must be between 1 and 5")
	}
	if strings.TrimSpace(req.Comment) == "" {
		return nil, apperr.NewValidation("review", "review text is required")
	}

	if _, err := s.catalog.Get(productID); err != nil {
		return nil, err
	}

	verified, err := s.orders.HasPurchased(userID, productID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to check purchase history for review")
		verified = false
	}

	review := &Review{
		ProductID:          productID,
		UserID:             userID,
		UserName:           s.resolveUserName(userID, tokenDisplayName),
		Rating:             req.Rating,
		Comment:            strings.TrimSpace(req.Comment),
		IsVerifiedPurchase: verified,
	}

	if err := s.db.Create(review).Error; err != nil {
		return nil, apperr.NewBackend("create review", err)
	}

	if err := s.refreshProductRating(productID); err != nil {
		s.logger.WithError(err).WithField("product_id", productID).
			Warn("Failed to refresh product rating")
	}

	return review, nil
}

// List returns the reviews for a product, newest first, with aggregates
func (s *Service) List(productID uint) (*ListResponse, error) {
	reviews, err := s.reviewsFor(productID)
	if err != nil {
		return nil, err
	}

	return &ListResponse{
		Reviews: reviews,
		Summary: SummaryResponse{
			Average:      AverageRating(reviews),
			Count:        len(reviews),
			Distribution: RatingDistribution(reviews),
		},
	}, nil
}

// Summary returns only the aggregate rating data for a product
func (s *Service) Summary(productID uint) (*SummaryResponse, error) {
	reviews, err := s.reviewsFor(productID)
	if err != nil {
		return nil, err
	}
	return &SummaryResponse{
		Average:      AverageRating(reviews),
		Count:        len(reviews),
		Distribution: RatingDistribution(reviews),
	}, nil
}

// AverageRating returns the arithmetic mean of the ratings, or zero
// for an empty slice.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(len(reviews))
}

// RatingDistribution counts the reviews per whole-star bucket. The
// rating is truncated, so 4.9 counts toward the 4-star bucket.
func RatingDistribution(reviews []Review) map[int]int {
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range reviews {
		bucket := int(r.Rating)
		if bucket >= 1 && bucket <= 5 {
			dist[bucket]++
		}
	}
	return dist
}

// resolveUserName picks the best available display name for the
// reviewer. If the profile cannot be read only the token display name
// remains as a source.
func (s *Service) resolveUserName(userID uint, tokenDisplayName string) string {
	tokenDisplayName = strings.TrimSpace(tokenDisplayName)

	var u user.User
	if err := s.db.First(&u, userID).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", userID).
			Warn("Failed to load user profile for review name")
		if tokenDisplayName != "" {
			return tokenDisplayName
		}
		return "Anonymous User"
	}

	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	if tokenDisplayName != "" {
		return tokenDisplayName
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return "Anonymous User"
}

func (s *Service) reviewsFor(productID uint) ([]Review, error) {
	if _, err := s.catalog.Get(productID); err != nil {
		return nil, err
	}

	var reviews []Review
	err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, apperr.NewBackend("list reviews", err)
	}
	return reviews, nil
}

func (s *Service) refreshProductRating(productID uint) error {
	var reviews []Review
	if err := s.db.Where("product_id = ?", productID).Find(&reviews).Error; err != nil {
		return apperr.NewBackend("load reviews", err)
	}
	return s.catalog.RefreshRatingStats(productID, AverageRating(reviews), len(reviews))
}
