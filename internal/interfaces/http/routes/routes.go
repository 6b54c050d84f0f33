// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sellasticpots/shop-backend/internal/config"
	"github.com/sellasticpots/shop-backend/internal/infrastructure/database/redis"
	"github.com/sellasticpots/shop-backend/internal/interfaces/http/handlers"
	"github.com/sellasticpots/shop-backend/internal/interfaces/http/middleware"
	"github.com/sellasticpots/shop-backend/internal/pkg/auth"
)

// Handlers collects the handlers wired into the router
type Handlers struct {
	Auth     *handlers.AuthHandler
	Catalog  *handlers.CatalogHandler
	Cart     *handlers.CartHandler
	Order    *handlers.OrderHandler
	Review   *handlers.ReviewHandler
	Wishlist *handlers.WishlistHandler
	Health   *handlers.HealthHandler
}

// Setup builds the gin engine with all middleware and routes
func Setup(cfg *config.Config, redisClient *redis.Client, jwtManager *auth.JWTManager, h *Handlers, logger *logrus.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RequestSizeLimit(1 << 20))
	router.Use(middleware.Timeout(cfg.Server.WriteTimeout))
	router.Use(middleware.RateLimit(redisClient.Client, cfg.Security.RateLimitPerMinute, logger))

	router.GET("/health", h.Health.Health)
	router.GET("/ready", h.Health.Ready)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)

		profile := authGroup.Group("")
		profile.Use(middleware.Auth(jwtManager))
		{
			profile.GET("/profile", h.Auth.GetProfile)
			profile.PUT("/profile", h.Auth.UpdateProfile)
		}
	}

	products := v1.Group("/products")
	{
		products.GET("", h.Catalog.List)
		products.GET("/categories", h.Catalog.Categories)
		products.GET("/:id", h.Catalog.Get)
		products.GET("/:id/reviews", h.Review.List)
		products.GET("/:id/reviews/summary", h.Review.Summary)

		products.POST("/:id/reviews", middleware.Auth(jwtManager), h.Review.Submit)
	}

	cart := v1.Group("/cart")
	cart.Use(middleware.Auth(jwtManager))
	{
		cart.GET("", h.Cart.Get)
		cart.DELETE("", h.Cart.Clear)
		cart.GET("/count", h.Cart.Count)
		cart.POST("/items", h.Cart.Add)
		cart.PUT("/items/:id", h.Cart.SetQuantity)
		cart.DELETE("/items/:id", h.Cart.Remove)
	}

	orders := v1.Group("/orders")
	orders.Use(middleware.Auth(jwtManager))
	{
		orders.POST("", h.Order.Place)
		orders.GET("", h.Order.List)
		orders.GET("/:number", h.Order.Get)
		orders.POST("/:number/cancel", h.Order.Cancel)
		orders.GET("/:number/receipt", h.Order.Receipt)
	}

	wishlist := v1.Group("/wishlist")
	wishlist.Use(middleware.Auth(jwtManager))
	{
		wishlist.GET("", h.Wishlist.List)
		wishlist.DELETE("", h.Wishlist.Clear)
		wishlist.GET("/count", h.Wishlist.Count)
		wishlist.POST("/items", h.Wishlist.Add)
		wishlist.GET("/items/:id", h.Wishlist.IsMember)
		wishlist.DELETE("/items/:id", h.Wishlist.Remove)
		wishlist.POST("/items/:id/toggle", h.Wishlist.Toggle)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(jwtManager), middleware.AdminOnly())
	{
		admin.PUT("/orders/:number/status", h.Order.UpdateStatus)
	}

	return router
}
