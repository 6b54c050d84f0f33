// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sellasticpots/shop-backend/internal/config"
	"github.com/sellasticpots/shop-backend/internal/infrastructure/database/postgres"
	"github.com/sellasticpots/shop-backend/internal/infrastructure/database/redis"
	httpserver "github.com/sellasticpots/shop-backend/internal/interfaces/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := newLogger(cfg)

	logger.WithFields(logrus.Fields{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting application")

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to redis")
	}
	defer redisClient.Close()

	if err := postgres.RunMigrations(db.DB, logger); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}
	if cfg.IsDevelopment() {
		if err := postgres.SeedData(db.DB, logger); err != nil {
			logger.WithError(err).Fatal("Failed to seed data")
		}
	}

	server, err := httpserver.NewServer(cfg, db, redisClient, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create server")
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
