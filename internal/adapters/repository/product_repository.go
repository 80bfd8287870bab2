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

const productsCollection = "products"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
)

type ProductRepository interface {
	Find(ctx context.Context, q apifeatures.Query) ([]models.Product, error)
	// FindByID returns nil when no product has the id.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update returns the updated product, or nil when none has the id.
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	// UpdateVariantStock sets one variant's stock in a single atomic write and
	// returns the updated product. It fails with ErrProductNotFound or
	// ErrVariantNotFound when nothing matches.
	UpdateVariantStock(ctx context.Context, productID, variantID primitive.ObjectID, stock int) (*models.Product, error)
	FindLowStock(ctx context.Context, threshold int) ([]models.Product, error)
	FindActiveByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Product, error)
	FindDiscounted(ctx context.Context, minDiscount float64) ([]models.Product, error)
}

type MongoProductRepository struct {
	DB *mongo.Database
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &MongoProductRepository{DB: db}
}

func (r *MongoProductRepository) collection() *mongo.Collection {
	return r.DB.Collection(productsCollection)
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
}

func (r *MongoProductRepository) Find(ctx context.Context, q apifeatures.Query) ([]models.Product, error) {
	return findProducts(ctx, r.DB, q.Filter, q.FindOptions())
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	if err := populateCategories(ctx, r.DB, []*models.Product{&product}); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	res, err := r.collection().InsertOne(ctx, product)
	if err != nil {
		return err
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return populateCategories(ctx, r.DB, []*models.Product{product})
}

func (r *MongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoProductRepository) UpdateVariantStock(ctx context.Context, productID, variantID primitive.ObjectID, stock int) (*models.Product, error) {
	filter := bson.M{"_id": productID, "variants._id": variantID}
	update := bson.M{"$set": bson.M{"variants.$.stockCount": stock}}

	product, err := r.findOneAndUpdate(ctx, filter, update)
	if err != nil || product != nil {
		return product, err
	}

	count, err := r.collection().CountDocuments(ctx, bson.M{"_id": productID}, options.Count().SetLimit(1))
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrProductNotFound
	}
	return nil, ErrVariantNotFound
}

func (r *MongoProductRepository) FindLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return findProducts(ctx, r.DB, LowStockFilter(threshold), newestFirst())
}

func (r *MongoProductRepository) FindActiveByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Product, error) {
	return findProducts(ctx, r.DB, bson.M{"category": categoryID, "isActive": true}, newestFirst())
}

func (r *MongoProductRepository) FindDiscounted(ctx context.Context, minDiscount float64) ([]models.Product, error) {
	return findProducts(ctx, r.DB, DiscountedFilter(minDiscount), newestFirst())
}

// LowStockFilter matches active products with at least one variant whose
// stock is at or below threshold. Products without variants carry no stock
// figure and never match.
func LowStockFilter(threshold int) bson.M {
	return bson.M{
		"isActive": true,
		"variants": bson.M{"$elemMatch": bson.M{"stockCount": bson.M{"$lte": threshold}}},
	}
}

func DiscountedFilter(minDiscount float64) bson.M {
	return bson.M{
		"isActive": true,
		"discount": bson.M{"$gte": minDiscount},
	}
}

func (r *MongoProductRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	if err := r.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	if err := populateCategories(ctx, r.DB, []*models.Product{&product}); err != nil {
		return nil, err
	}
	return &product, nil
}

func findProducts(ctx context.Context, db *mongo.Database, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cursor, err := db.Collection(productsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	refs := make([]*models.Product, len(products))
	for i := range products {
		refs[i] = &products[i]
	}
	if err := populateCategories(ctx, db, refs); err != nil {
		return nil, err
	}
	return products, nil
}

// populateCategories resolves each product's category reference to its
// name with one query. Dangling references stay unpopulated.
func populateCategories(ctx context.Context, db *mongo.Database, products []*models.Product) error {
	seen := map[primitive.ObjectID]struct{}{}
	ids := bson.A{}
	for _, p := range products {
		if p.CategoryID.IsZero() {
			continue
		}
		if _, ok := seen[p.CategoryID]; !ok {
			seen[p.CategoryID] = struct{}{}
			ids = append(ids, p.CategoryID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1})
	cursor, err := db.Collection(categoriesCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var summaries []models.CategorySummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]*models.CategorySummary, len(summaries))
	for i := range summaries {
		byID[summaries[i].ID] = &summaries[i]
	}
	for _, p := range products {
		p.Category = byID[p.CategoryID]
	}
	return nil
}
