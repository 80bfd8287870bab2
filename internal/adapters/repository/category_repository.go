package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/developia-II/catalog-api/internal/apifeatures"
	"github.com/developia-II/catalog-api/internal/models"
)

const categoriesCollection = "categories"

type CategoryRepository interface {
	Find(ctx context.Context, q apifeatures.Query) ([]models.Category, error)
	// FindByID returns nil when no category has the id.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	// FindByIDWithProducts also loads the products referencing the category.
	FindByIDWithProducts(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	Create(ctx context.Context, category *models.Category) error
	// Update returns the updated category, or nil when none has the id.
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Category, error)
	// Delete removes only the category. Products keep their reference.
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type MongoCategoryRepository struct {
	DB *mongo.Database
}

func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	return &MongoCategoryRepository{DB: db}
}

func (r *MongoCategoryRepository) collection() *mongo.Collection {
	return r.DB.Collection(categoriesCollection)
}

func (r *MongoCategoryRepository) Find(ctx context.Context, q apifeatures.Query) ([]models.Category, error) {
	cursor, err := r.collection().Find(ctx, q.Filter, q.FindOptions())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *MongoCategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *MongoCategoryRepository) FindByIDWithProducts(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	category, err := r.FindByID(ctx, id)
	if err != nil || category == nil {
		return category, err
	}

	products, err := findProducts(ctx, r.DB, bson.M{"category": id}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	summary := &models.CategorySummary{ID: category.ID, Name: category.Name}
	for i := range products {
		products[i].Category = summary
	}
	category.Products = products
	return category, nil
}

func (r *MongoCategoryRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	res, err := r.collection().InsertOne(ctx, category)
	if err != nil {
		return err
	}
	category.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoCategoryRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Category, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var category models.Category
	err := r.collection().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *MongoCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
