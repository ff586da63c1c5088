package api

import (
	"context"

	"catalog-service/internal/catalog"
	"catalog-service/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockCatalog is a mock implementation of Catalog.
type MockCatalog struct {
	mock.Mock
}

// ret returns the first mocked value as T, or the zero T when it is nil.
func ret[T any](args mock.Arguments, i int) T {
	var zero T
	if v := args.Get(i); v != nil {
		return v.(T)
	}
	return zero
}

func (m *MockCatalog) CategoryTree(ctx context.Context, level *int) ([]*catalog.CategoryNode, error) {
	args := m.Called(ctx, level)
	return ret[[]*catalog.CategoryNode](args, 0), args.Error(1)
}

func (m *MockCatalog) CategoryProducts(ctx context.Context, categoryID string, q catalog.CategoryPageQuery) (*catalog.CategoryPage, error) {
	args := m.Called(ctx, categoryID, q)
	return ret[*catalog.CategoryPage](args, 0), args.Error(1)
}

func (m *MockCatalog) CreateCategory(ctx context.Context, in catalog.CategoryInput) (*domain.Category, error) {
	args := m.Called(ctx, in)
	return ret[*domain.Category](args, 0), args.Error(1)
}

func (m *MockCatalog) UpdateCategory(ctx context.Context, id string, in catalog.CategoryUpdateInput) (*domain.Category, error) {
	args := m.Called(ctx, id, in)
	return ret[*domain.Category](args, 0), args.Error(1)
}

func (m *MockCatalog) DeleteCategory(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalog) ListProducts(ctx context.Context, f catalog.ProductFilter) (*catalog.ProductPage, error) {
	args := m.Called(ctx, f)
	return ret[*catalog.ProductPage](args, 0), args.Error(1)
}

func (m *MockCatalog) ProductDetail(ctx context.Context, id string) (*catalog.ProductDetail, error) {
	args := m.Called(ctx, id)
	return ret[*catalog.ProductDetail](args, 0), args.Error(1)
}

func (m *MockCatalog) CreateProduct(ctx context.Context, in catalog.CreateProductInput) (*catalog.ProductRef, error) {
	args := m.Called(ctx, in)
	return ret[*catalog.ProductRef](args, 0), args.Error(1)
}

func (m *MockCatalog) UpdateProduct(ctx context.Context, id string, in catalog.UpdateProductInput) (*catalog.ProductRef, error) {
	args := m.Called(ctx, id, in)
	return ret[*catalog.ProductRef](args, 0), args.Error(1)
}

func (m *MockCatalog) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalog) SoftDeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalog) AddProductImages(ctx context.Context, productID string, in catalog.AddImagesInput) ([]domain.ProductImage, error) {
	args := m.Called(ctx, productID, in)
	return ret[[]domain.ProductImage](args, 0), args.Error(1)
}

func (m *MockCatalog) ListReviews(ctx context.Context, productID string, q catalog.ReviewQuery) (*catalog.ReviewPage, error) {
	args := m.Called(ctx, productID, q)
	return ret[*catalog.ReviewPage](args, 0), args.Error(1)
}

func (m *MockCatalog) CreateReview(ctx context.Context, productID string, userID *string, in catalog.ReviewInput) (*domain.Review, error) {
	args := m.Called(ctx, productID, userID, in)
	return ret[*domain.Review](args, 0), args.Error(1)
}

func (m *MockCatalog) UpdateReview(ctx context.Context, reviewID string, userID *string, in catalog.ReviewUpdateInput) (*domain.Review, error) {
	args := m.Called(ctx, reviewID, userID, in)
	return ret[*domain.Review](args, 0), args.Error(1)
}

func (m *MockCatalog) DeleteReview(ctx context.Context, reviewID string, userID *string) error {
	return m.Called(ctx, reviewID, userID).Error(0)
}

func (m *MockCatalog) CreateOption(ctx context.Context, in catalog.CreateOptionInput) (*domain.ProductOption, error) {
	args := m.Called(ctx, in)
	return ret[*domain.ProductOption](args, 0), args.Error(1)
}

func (m *MockCatalog) UpdateOption(ctx context.Context, id string, in catalog.UpdateOptionInput) (*domain.ProductOption, error) {
	args := m.Called(ctx, id, in)
	return ret[*domain.ProductOption](args, 0), args.Error(1)
}

func (m *MockCatalog) DeleteOption(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
