// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/sellasticpots/shop-backend/internal/config"
	"github.com/sellasticpots/shop-backend/internal/domain/cart"
	"github.com/sellasticpots/shop-backend/internal/domain/catalog"
	"github.com/sellasticpots/shop-backend/internal/domain/order"
	"github.com/sellasticpots/shop-backend/internal/domain/review"
	"github.com/sellasticpots/shop-backend/internal/domain/user"
	"github.com/sellasticpots/shop-backend/internal/domain/wishlist"
	"github.com/sellasticpots/shop-backend/internal/infrastructure/database/postgres"
	"github.com/sellasticpots/shop-backend/internal/infrastructure/database/redis"
	"github.com/sellasticpots/shop-backend/internal/interfaces/http/handlers"
	"github.com/sellasticpots/shop-backend/internal/interfaces/http/routes"
	"github.com/sellasticpots/shop-backend/internal/pkg/auth"
	"github.com/sellasticpots/shop-backend/internal/pkg/email"
	"github.com/sellasticpots/shop-backend/internal/pkg/pdf"
)

// Server is the HTTP server for the shop API
type Server struct {
	httpServer *http.Server
	logger     *logrus.Logger
}

// NewServer wires the services and handlers and returns a ready server
func NewServer(cfg *config.Config, db *postgres.DB, redisClient *redis.Client, logger *logrus.Logger) (*Server, error) {
	jwtManager := auth.NewJWTManager(cfg)
	passwordManager := auth.NewPasswordManager(cfg.Security.BcryptCost)

	pdfService, err := pdf.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf service: %w", err)
	}
	emailService := email.NewService(cfg, logger)

	catalogService := catalog.NewService(db.DB)
	cartService := cart.NewService(db.DB, redisClient.Client, cfg, logger)
	orderService := order.NewService(db.DB, cartService, emailService, cfg, logger)
	reviewService := review.NewService(db.DB, catalogService, orderService, logger)
	wishlistService := wishlist.NewService(db.DB, redisClient.Client, logger)
	userService := user.NewService(db.DB, passwordManager, jwtManager, logger)

	h := &routes.Handlers{
		Auth:     handlers.NewAuthHandler(userService),
		Catalog:  handlers.NewCatalogHandler(catalogService),
		Cart:     handlers.NewCartHandler(cartService),
		Order:    handlers.NewOrderHandler(orderService, pdfService),
		Review:   handlers.NewReviewHandler(reviewService),
		Wishlist: handlers.NewWishlistHandler(wishlistService),
		Health:   handlers.NewHealthHandler(db, redisClient, cfg.App.Version),
	}

	router := routes.Setup(cfg, redisClient, jwtManager, h, logger)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		logger: logger,
	}, nil
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
