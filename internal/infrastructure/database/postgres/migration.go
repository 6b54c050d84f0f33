// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sellasticpots/shop-backend/internal/domain/cart"
	"github.com/sellasticpots/shop-backend/internal/domain/catalog"
	"github.com/sellasticpots/shop-backend/internal/domain/order"
	"github.com/sellasticpots/shop-backend/internal/domain/review"
	"github.com/sellasticpots/shop-backend/internal/domain/user"
	"github.com/sellasticpots/shop-backend/internal/domain/wishlist"
)

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB, logger *logrus.Logger) error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&user.User{},
		&catalog.Product{},
		&catalog.ProductImage{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
		&review.Review{},
		&wishlist.WishlistItem{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database migrations completed")
	return nil
}

// SeedData seeds the database with initial data for development
func SeedData(db *gorm.DB, logger *logrus.Logger) error {
	if err := seedAdminUser(db, logger); err != nil {
		return err
	}
	if err := seedProducts(db, logger); err != nil {
		return err
	}
	return nil
}

func seedAdminUser(db *gorm.DB, logger *logrus.Logger) error {
	var count int64
	if err := db.Model(&user.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123456"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &user.User{
		Email:    "admin@sellasticpots.com",
		Password: string(hash),
		Username: "admin",
		FullName: "Shop Administrator",
		IsAdmin:  true,
		IsActive: true,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	logger.WithField("email", admin.Email).Info("Seeded admin user")
	return nil
}

func seedProducts(db *gorm.DB, logger *logrus.Logger) error {
	var count int64
	if err := db.Model(&catalog.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check products: %w", err)
	}
	if count > 0 {
		return nil
	}

	products := []catalog.Product{
		{
			Name:         "Terracotta Planter Pot",
			Description:  "Hand-thrown terracotta pot with drainage hole, ideal for succulents and herbs.",
			Price:        129900,
			Category:     "Planters",
			ImageURL:     "/images/terracotta-planter.jpg",
			Tags:         "terracotta,planter,outdoor",
			FreeDelivery: true,
			IsActive:     true,
		},
		{
			Name:         "Glazed Ceramic Bowl Set",
			Description:  "Set of four glazed stoneware bowls, dishwasher and microwave safe.",
			Price:        249900,
			Category:     "Tableware",
			ImageURL:     "/images/glazed-bowl-set.jpg",
			Tags:         "bowl,glazed,tableware",
			FreeDelivery: false,
			IsActive:     true,
		},
		{
			Name:         "Matte Black Vase",
			Description:  "Minimal matte black ceramic vase, 25cm tall.",
			Price:        189900,
			Category:     "Decor",
			ImageURL:     "/images/matte-black-vase.jpg",
			Tags:         "vase,decor,matte",
			FreeDelivery: true,
			IsActive:     true,
		},
		{
			Name:         "Hanging Herb Pot",
			Description:  "Wall-mounted ceramic pot with jute rope, perfect for kitchen herbs.",
			Price:        89900,
			Category:     "Planters",
			ImageURL:     "/images/hanging-herb-pot.jpg",
			Tags:         "hanging,herb,planter",
			FreeDelivery: false,
			IsActive:     true,
		},
		{
			Name:         "Speckled Clay Mug",
			Description:  "350ml speckled clay mug with natural finish handle.",
			Price:        59900,
			Category:     "Tableware",
			ImageURL:     "/images/speckled-clay-mug.jpg",
			Tags:         "mug,clay,tableware",
			FreeDelivery: false,
			IsActive:     true,
		},
	}

	if err := db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	logger.WithField("count", len(products)).Info("Seeded products")
	return nil
}
