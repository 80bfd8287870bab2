package handlers

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/developia-II/catalog-api/internal/apifeatures"
	"github.com/developia-II/catalog-api/internal/events"
	"github.com/developia-II/catalog-api/internal/models"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Find(ctx context.Context, q apifeatures.Query) ([]models.Category, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByIDWithProducts(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Category, error) {
	args := m.Called(ctx, id, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) products(args mock.Arguments) ([]models.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) product(args mock.Arguments) (*models.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Find(ctx context.Context, q apifeatures.Query) ([]models.Product, error) {
	return m.products(m.Called(ctx, q))
}

func (m *MockProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	return m.product(m.Called(ctx, id, set))
}

func (m *MockProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) UpdateVariantStock(ctx context.Context, productID, variantID primitive.ObjectID, stock int) (*models.Product, error) {
	return m.product(m.Called(ctx, productID, variantID, stock))
}

func (m *MockProductRepository) FindLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return m.products(m.Called(ctx, threshold))
}

func (m *MockProductRepository) FindActiveByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Product, error) {
	return m.products(m.Called(ctx, categoryID))
}

func (m *MockProductRepository) FindDiscounted(ctx context.Context, minDiscount float64) ([]models.Product, error) {
	return m.products(m.Called(ctx, minDiscount))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fakeUploader struct {
	filename string
	body     []byte
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, filename string) (string, error) {
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.filename, f.body = filename, body
	return "https://res.cloudinary.com/demo/image/upload/" + filename, nil
}
