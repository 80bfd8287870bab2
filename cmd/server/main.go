package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/developia-II/catalog-api/internal/adapters/repository"
	"github.com/developia-II/catalog-api/internal/config"
	"github.com/developia-II/catalog-api/internal/database"
	"github.com/developia-II/catalog-api/internal/events"
	"github.com/developia-II/catalog-api/internal/handlers"
	"github.com/developia-II/catalog-api/internal/logger"
	"github.com/developia-II/catalog-api/internal/middleware"
	"github.com/developia-II/catalog-api/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

// run owns every resource it opens, so its defers always release them
// before main exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Setup(cfg.Logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	client, err := database.NewMongoConnection(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logrus.WithError(err).Error("Failed to disconnect from MongoDB")
		}
	}()
	db := client.Database(cfg.Mongo.Database)

	if cfg.Mongo.EnsureIndexes {
		indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := repository.EnsureIndexes(indexCtx, db)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to ensure indexes: %w", err)
		}
	}

	publisher := newPublisher(cfg.Events)
	defer func() {
		if err := publisher.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close event publisher")
		}
	}()

	rateLimit, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to set up rate limiter: %w", err)
	}

	deps := handlers.Dependencies{
		Config:     cfg,
		Categories: repository.NewCategoryRepository(db),
		Products:   repository.NewProductRepository(db),
		Events:     publisher,
	}
	if cfg.Media.CloudinaryURL != "" {
		uploader, err := utils.NewCloudinaryUploader(cfg.Media.CloudinaryURL, cfg.Media.Folder)
		if err != nil {
			return fmt.Errorf("failed to set up image uploads: %w", err)
		}
		deps.Uploader = uploader
	} else {
		logrus.Warn("CLOUDINARY_URL not set - image uploads disabled")
	}

	router := gin.New()
	middleware.Use(router, middleware.Stages(cfg, rateLimit))
	handlers.SetupRoutes(router, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logrus.Infof("Server running in %s mode on port %s", cfg.Server.AppEnv, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shut down: %w", err)
	}
	logrus.Info("Server gracefully stopped")
	return nil
}

// newPublisher connects to RabbitMQ when configured. A broker that cannot be
// reached disables events rather than stopping the API.
func newPublisher(cfg config.EventsConfig) events.Publisher {
	if cfg.RabbitMQURL == "" {
		logrus.Info("RABBITMQ_URL not set - catalog events disabled")
		return events.NoopPublisher{}
	}
	publisher, err := events.NewRabbitPublisher(cfg)
	if err != nil {
		logrus.WithError(err).Warn("RabbitMQ unavailable - catalog events disabled")
		return events.NoopPublisher{}
	}
	return publisher
}
