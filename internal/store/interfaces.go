package store

import (
	"context"

	"catalog-service/internal/domain"

	"github.com/shopspring/decimal"
)

// ListCategoriesParams filters the category listing. A nil Level returns every level.
type ListCategoriesParams struct {
	Level *int
}

// CategoryStorer defines the database operations for categories.
type CategoryStorer interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	GetCategoryParent(ctx context.Context, id string) (*domain.CategoryRef, error) // nil when the category is a root
	ListCategories(ctx context.Context, params ListCategoriesParams) ([]domain.Category, error) // ordered by level ascending
	ListChildCategoryIDs(ctx context.Context, parentID string) ([]string, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// ListProductsParams holds parameters for listing products. Nil pointers and
// empty slices disable the corresponding filter. Without a Status filter,
// DELETED products are excluded.
type ListProductsParams struct {
	Limit       int
	Offset      int
	SortOrder   string // "ASC" or "DESC" on created_at
	Status      *domain.ProductStatus
	MinPrice    *decimal.Decimal // effective price, sale price when present
	MaxPrice    *decimal.Decimal
	CategoryIDs []string
	BrandID     *string
	SellerID    *string
	SearchQuery *string
}

// ProductStorer defines the database operations for products and the rows
// they own.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error) // excludes DELETED
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	LockProduct(ctx context.Context, id string) (*domain.Product, error) // FOR UPDATE, excludes DELETED
	ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, int, error)
	ListProductsBySlugSuffix(ctx context.Context, suffix, excludeSlug string) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	SetProductStatus(ctx context.Context, id string, status domain.ProductStatus) error
	DeleteProduct(ctx context.Context, id string) error

	GetSeller(ctx context.Context, id string) (*domain.Seller, error) // nil, nil when absent
	GetBrand(ctx context.Context, id string) (*domain.Brand, error)   // nil, nil when absent

	ListPrices(ctx context.Context, productIDs []string) ([]domain.ProductPrice, error)
	LockPrice(ctx context.Context, productID string) (*domain.ProductPrice, error) // nil, nil when absent
	SavePrice(ctx context.Context, price *domain.ProductPrice) error
	ListDetails(ctx context.Context, productID string) ([]domain.ProductDetail, error)
	LockDetail(ctx context.Context, productID string) (*domain.ProductDetail, error) // nil, nil when absent
	SaveDetail(ctx context.Context, detail *domain.ProductDetail) error

	ListImages(ctx context.Context, productIDs []string) ([]domain.ProductImage, error)
	AddImages(ctx context.Context, productID string, images []domain.ProductImage) error
	ReplaceImages(ctx context.Context, productID string, images []domain.ProductImage) error
	ListOptionGroups(ctx context.Context, productIDs []string) ([]domain.ProductOptionGroup, error) // options nested
	ReplaceOptionGroups(ctx context.Context, productID string, groups []domain.ProductOptionGroup) error
	ListCategoryLinks(ctx context.Context, productID string) ([]domain.ProductCategoryLink, error)
	ReplaceCategoryLinks(ctx context.Context, productID string, links []domain.ProductCategory) error
	ListTags(ctx context.Context, productID string) ([]domain.Tag, error)
	ReplaceTags(ctx context.Context, productID string, tagIDs []string) error
	ListRatings(ctx context.Context, productIDs []string) ([]domain.ProductRating, error)
}

// ListReviewsParams holds parameters for a product's review page.
type ListReviewsParams struct {
	ProductID string
	Rating    *int
	SortOrder string // "ASC" or "DESC" on created_at
	Limit     int
	Offset    int
}

// ReviewStorer defines the database operations for reviews.
type ReviewStorer interface {
	ListReviews(ctx context.Context, params ListReviewsParams) ([]domain.Review, int, error)
	CreateReview(ctx context.Context, review *domain.Review) (*domain.Review, error)
	LockReview(ctx context.Context, id string) (*domain.Review, error) // FOR UPDATE
	UpdateReview(ctx context.Context, review *domain.Review) (*domain.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// OptionStorer defines the database operations for single product options.
type OptionStorer interface {
	GetOptionGroup(ctx context.Context, id string) (*domain.ProductOptionGroup, error)
	CreateOption(ctx context.Context, option *domain.ProductOption) (*domain.ProductOption, error)
	LockOption(ctx context.Context, id string) (*domain.ProductOption, error) // FOR UPDATE
	UpdateOption(ctx context.Context, option *domain.ProductOption) (*domain.ProductOption, error)
	DeleteOption(ctx context.Context, id string) error
}

var (
	_ CategoryStorer = (*PostgresStore)(nil)
	_ ProductStorer  = (*PostgresStore)(nil)
	_ ReviewStorer   = (*PostgresStore)(nil)
	_ OptionStorer   = (*PostgresStore)(nil)
	_ Transactor     = (*UnitOfWork)(nil)
)
