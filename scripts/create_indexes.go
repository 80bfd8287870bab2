package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/developia-II/catalog-api/internal/adapters/repository"
	"github.com/developia-II/catalog-api/internal/config"
	"github.com/developia-II/catalog-api/internal/database"
	"github.com/developia-II/catalog-api/internal/logger"
)

// Run this script once to create the catalog indexes.
// Usage: go run scripts/create_indexes.go
func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("Index creation failed")
		os.Exit(1)
	}
	logrus.Info("All indexes created successfully")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Setup(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := database.NewMongoConnection(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	return repository.EnsureIndexes(ctx, client.Database(cfg.Mongo.Database))
}
