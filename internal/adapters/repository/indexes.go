package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryIndexes back the unique category name constraint.
func CategoryIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_name").SetUnique(true),
		},
	}
}

// ProductIndexes back listing, reporting and the global SKU uniqueness.
func ProductIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("idx_text_name_description"),
		},
		{
			Keys:    bson.D{{Key: "price", Value: 1}},
			Options: options.Index().SetName("idx_price"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("idx_category"),
		},
		{
			Keys:    bson.D{{Key: "isActive", Value: 1}},
			Options: options.Index().SetName("idx_isActive"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_createdAt"),
		},
		{
			// Products without variants have no SKU and must not collide.
			Keys: bson.D{{Key: "variants.sku", Value: 1}},
			Options: options.Index().
				SetName("idx_variants_sku").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"variants.sku": bson.M{"$exists": true}}),
		},
	}
}

// EnsureIndexes creates the catalog indexes. Existing identical indexes are
// left untouched by the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, indexes := range map[string][]mongo.IndexModel{
		categoriesCollection: CategoryIndexes(),
		productsCollection:   ProductIndexes(),
	} {
		names, err := db.Collection(coll).Indexes().CreateMany(ctx, indexes)
		if err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
		logrus.WithField("collection", coll).Infof("Ensured indexes: %v", names)
	}
	return nil
}
