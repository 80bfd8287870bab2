package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/developia-II/catalog-api/internal/apifeatures"
	"github.com/developia-II/catalog-api/internal/models"
)

const (
	productsNS   = "test.products"
	categoriesNS = "test.categories"
)

func productDoc(id, categoryID, variantID primitive.ObjectID, stock int) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Desk Lamp"},
		{Key: "description", Value: "LED lamp"},
		{Key: "price", Value: 40.0},
		{Key: "category", Value: categoryID},
		{Key: "variants", Value: bson.A{
			bson.D{
				{Key: "_id", Value: variantID},
				{Key: "name", Value: "Black"},
				{Key: "sku", Value: "LAMP-BLK"},
				{Key: "additionalCost", Value: 0.0},
				{Key: "stockCount", Value: stock},
			},
		}},
		{Key: "images", Value: bson.A{}},
		{Key: "isActive", Value: true},
		{Key: "discount", Value: 25.0},
		{Key: "createdAt", Value: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func categoryDoc(id primitive.ObjectID, name string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "name", Value: name}}
}

func TestCategoryRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("FindByID returns the category", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, categoriesNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Books"},
			{Key: "isActive", Value: true},
		}))

		category, err := NewCategoryRepository(mt.DB).FindByID(ctx, id)
		require.NoError(mt, err)
		require.NotNil(mt, category)
		assert.Equal(mt, "Books", category.Name)
		assert.True(mt, category.IsActive)
	})

	mt.Run("FindByID returns nil when missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, categoriesNS, mtest.FirstBatch))

		category, err := NewCategoryRepository(mt.DB).FindByID(ctx, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Nil(mt, category)
	})

	mt.Run("FindByIDWithProducts populates the back reference", func(mt *mtest.T) {
		categoryID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, categoriesNS, mtest.FirstBatch, categoryDoc(categoryID, "Lighting")),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
				productDoc(primitive.NewObjectID(), categoryID, primitive.NewObjectID(), 3)),
			mtest.CreateCursorResponse(0, categoriesNS, mtest.FirstBatch, categoryDoc(categoryID, "Lighting")),
		)

		category, err := NewCategoryRepository(mt.DB).FindByIDWithProducts(ctx, categoryID)
		require.NoError(mt, err)
		require.Len(mt, category.Products, 1)
		assert.Equal(mt, "Lighting", category.Products[0].Category.Name)
	})

	mt.Run("Create assigns the id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		category := &models.Category{Name: "Garden", IsActive: true, CreatedAt: time.Now()}
		require.NoError(mt, NewCategoryRepository(mt.DB).Create(ctx, category))
		assert.False(mt, category.ID.IsZero())
	})

	mt.Run("Create surfaces duplicate names", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: test.categories index: idx_name dup key",
		}))

		err := NewCategoryRepository(mt.DB).Create(ctx, &models.Category{Name: "Garden"})
		assert.True(mt, mongo.IsDuplicateKeyError(err))
	})

	mt.Run("Update returns the post image", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: categoryDoc(id, "Outdoor")}))

		category, err := NewCategoryRepository(mt.DB).Update(ctx, id, bson.M{"name": "Outdoor"})
		require.NoError(mt, err)
		assert.Equal(mt, "Outdoor", category.Name)
	})

	mt.Run("Update returns nil when missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		category, err := NewCategoryRepository(mt.DB).Update(ctx, primitive.NewObjectID(), bson.M{"name": "x"})
		require.NoError(mt, err)
		assert.Nil(mt, category)
	})

	mt.Run("Delete reports whether a document went away", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		repo := NewCategoryRepository(mt.DB)

		deleted, err := repo.Delete(ctx, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.True(mt, deleted)

		deleted, err = repo.Delete(ctx, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.False(mt, deleted)
	})

	mt.Run("Exists counts the id", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, categoriesNS, mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
			mtest.CreateCursorResponse(0, categoriesNS, mtest.FirstBatch),
		)
		repo := NewCategoryRepository(mt.DB)

		ok, err := repo.Exists(ctx, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.True(mt, ok)

		ok, err = repo.Exists(ctx, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}

func TestProductRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("FindByID populates the category name", func(mt *mtest.T) {
		id, categoryID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch, productDoc(id, categoryID, primitive.NewObjectID(), 4)),
			mtest.CreateCursorResponse(0, categoriesNS, mtest.FirstBatch, categoryDoc(categoryID, "Lighting")),
		)

		product, err := NewProductRepository(mt.DB).FindByID(ctx, id)
		require.NoError(mt, err)
		require.NotNil(mt, product.Category)
		assert.Equal(mt, "Lighting", product.Category.Name)
		assert.Equal(mt, 30.0, product.DiscountedPrice())
		require.Len(mt, product.Variants, 1)
		assert.Equal(mt, 4, product.Variants[0].StockCount)
	})

	mt.Run("FindByID leaves dangling category references unpopulated", func(mt *mtest.T) {
		id, categoryID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch, productDoc(id, categoryID, primitive.NewObjectID(), 4)),
			mtest.CreateCursorResponse(0, categoriesNS, mtest.FirstBatch),
		)

		product, err := NewProductRepository(mt.DB).FindByID(ctx, id)
		require.NoError(mt, err)
		assert.Nil(mt, product.Category)
		assert.Equal(mt, categoryID, product.CategoryID)
	})

	mt.Run("Find applies the composed query", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch))

		q := apifeatures.Query{
			Filter: bson.M{"price": bson.M{"$gte": 10.0}},
			Sort:   bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
			Skip:   5,
			Limit:  5,
		}
		products, err := NewProductRepository(mt.DB).Find(ctx, q)
		require.NoError(mt, err)
		assert.Empty(mt, products)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, 10.0, cmd.Lookup("filter", "price", "$gte").Double())
		assert.Equal(mt, int64(5), cmd.Lookup("skip").AsInt64())
		assert.Equal(mt, int64(5), cmd.Lookup("limit").AsInt64())
		assert.Equal(mt, int64(-1), cmd.Lookup("sort", "createdAt").AsInt64())
	})

	mt.Run("UpdateVariantStock targets the variant atomically", func(mt *mtest.T) {
		id, categoryID, variantID := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: productDoc(id, categoryID, variantID, 0)}),
			mtest.CreateCursorResponse(0, categoriesNS, mtest.FirstBatch, categoryDoc(categoryID, "Lighting")),
		)

		product, err := NewProductRepository(mt.DB).UpdateVariantStock(ctx, id, variantID, 0)
		require.NoError(mt, err)
		variant, ok := product.Variant(variantID)
		require.True(mt, ok)
		assert.Equal(mt, 0, variant.StockCount)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "findAndModify", cmd.Index(0).Key())
		assert.Equal(mt, variantID, cmd.Lookup("query", "variants._id").ObjectID())
		assert.Equal(mt, int64(0), cmd.Lookup("update", "$set", "variants.$.stockCount").AsInt64())
	})

	mt.Run("UpdateVariantStock distinguishes a missing variant", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		_, err := NewProductRepository(mt.DB).UpdateVariantStock(ctx, primitive.NewObjectID(), primitive.NewObjectID(), 3)
		assert.ErrorIs(mt, err, ErrVariantNotFound)
	})

	mt.Run("UpdateVariantStock distinguishes a missing product", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch),
		)

		_, err := NewProductRepository(mt.DB).UpdateVariantStock(ctx, primitive.NewObjectID(), primitive.NewObjectID(), 3)
		assert.ErrorIs(mt, err, ErrProductNotFound)
	})

	mt.Run("FindLowStock sends the low stock filter", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch))

		_, err := NewProductRepository(mt.DB).FindLowStock(ctx, 5)
		require.NoError(mt, err)

		cmd := mt.GetStartedEvent().Command
		assert.True(mt, cmd.Lookup("filter", "isActive").Boolean())
		assert.Equal(mt, int64(5), cmd.Lookup("filter", "variants", "$elemMatch", "stockCount", "$lte").AsInt64())
	})

	mt.Run("Delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		deleted, err := NewProductRepository(mt.DB).Delete(ctx, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.True(mt, deleted)
	})
}

func TestLowStockFilterSemantics(t *testing.T) {
	filter := LowStockFilter(5)
	assert.Equal(t, true, filter["isActive"])
	assert.Equal(t, bson.M{"$elemMatch": bson.M{"stockCount": bson.M{"$lte": 5}}}, filter["variants"])
	assert.NotContains(t, filter, "stockCount")
}

// matchesLowStock evaluates the low stock filter against p the way the
// server would. Keys or operators it does not know fail the test.
func matchesLowStock(t *testing.T, filter bson.M, p models.Product) bool {
	t.Helper()
	for key, cond := range filter {
		switch key {
		case "isActive":
			if p.IsActive != cond.(bool) {
				return false
			}
		case "variants":
			elem := cond.(bson.M)["$elemMatch"].(bson.M)
			limit := elem["stockCount"].(bson.M)["$lte"].(int)
			require.Len(t, elem, 1)
			matched := false
			for _, v := range p.Variants {
				if v.StockCount <= limit {
					matched = true
				}
			}
			if !matched {
				return false
			}
		default:
			t.Fatalf("unexpected filter key %q", key)
		}
	}
	return true
}

func TestLowStockFilterBoundary(t *testing.T) {
	withStock := func(active bool, stocks ...int) models.Product {
		p := models.Product{IsActive: active}
		for _, n := range stocks {
			p.Variants = append(p.Variants, models.Variant{ID: primitive.NewObjectID(), StockCount: n})
		}
		return p
	}

	tests := []struct {
		name    string
		product models.Product
		want    bool
	}{
		{"stock at threshold", withStock(true, 5), true},
		{"stock above threshold", withStock(true, 6), false},
		{"one low variant among many", withStock(true, 40, 2), true},
		{"inactive with no stock", withStock(false, 0), false},
		{"no variants", withStock(true), false},
	}

	filter := LowStockFilter(5)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesLowStock(t, filter, tt.product))
		})
	}
}

func TestDiscountedFilter(t *testing.T) {
	assert.Equal(t, bson.M{"isActive": true, "discount": bson.M{"$gte": 10.0}}, DiscountedFilter(10))
}

func TestProductIndexes(t *testing.T) {
	var sku *mongo.IndexModel
	indexes := ProductIndexes()
	for i := range indexes {
		if indexes[i].Keys.(bson.D)[0].Key == "variants.sku" {
			sku = &indexes[i]
		}
	}
	require.NotNil(t, sku)
	require.NotNil(t, sku.Options.Unique)
	assert.True(t, *sku.Options.Unique)
	assert.NotNil(t, sku.Options.PartialFilterExpression)

	category := CategoryIndexes()[0]
	assert.True(t, *category.Options.Unique)
}
