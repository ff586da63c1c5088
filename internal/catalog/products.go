package catalog

import (
	"context"

	"catalog-service/internal/cache"
	"catalog-service/internal/domain"
	"catalog-service/internal/store"

	"github.com/shopspring/decimal"
)

// ProductFilter selects one page of the product listing. Nil pointers and an
// empty CategoryIDs disable the corresponding filter.
type ProductFilter struct {
	Page        int                   `validate:"omitempty,min=1"`
	Limit       int                   `validate:"omitempty,min=1,max=100"`
	Sort        string                `validate:"omitempty,oneof=ASC DESC asc desc"`
	Status      *domain.ProductStatus `validate:"omitempty,oneof=SELLING SOLD_OUT DELETED"`
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	CategoryIDs []string
	BrandID     *string
	SellerID    *string
	InStock     bool
	Search      *string `validate:"omitempty,max=100"`
}

func (f ProductFilter) cacheKey(page, limit int, sort string) string {
	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	return cache.Key(cache.PrefixProducts,
		cache.Int("page", page),
		cache.Int("pages", limit),
		cache.String("sort", sort),
		cache.OptString("status", status),
		cache.OptString("seller", f.SellerID),
		cache.OptString("brand", f.BrandID),
		cache.OptString("minPrice", decimalString(f.MinPrice)),
		cache.OptString("maxPrice", decimalString(f.MaxPrice)),
		cache.Bool("inStock", f.InStock),
		cache.Set("category", f.CategoryIDs),
		cache.OptString("search", f.Search),
	)
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// ListProducts returns one cached page of the product listing.
//
// With InStock set every row carries its stock flag; no row is dropped.
func (s *Service) ListProducts(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	page, limit, offset := pageWindow(f.Page, f.Limit)
	sort := normalizeSort(f.Sort)

	return cache.Fetch(ctx, s.cache, f.cacheKey(page, limit, sort), s.ttl.ProductList, func(ctx context.Context) (*ProductPage, error) {
		products, total, err := s.products.ListProducts(ctx, store.ListProductsParams{
			Limit:       limit,
			Offset:      offset,
			SortOrder:   sort,
			Status:      f.Status,
			MinPrice:    f.MinPrice,
			MaxPrice:    f.MaxPrice,
			CategoryIDs: f.CategoryIDs,
			BrandID:     f.BrandID,
			SellerID:    f.SellerID,
			SearchQuery: f.Search,
		})
		if err != nil {
			return nil, err
		}

		items, err := s.listItems(ctx, products, f.InStock)
		if err != nil {
			return nil, err
		}
		return &ProductPage{Items: items, Pagination: newPagination(total, page, limit)}, nil
	})
}

// listItems batch-loads the rows a listing page needs and joins them per
// product.
func (s *Service) listItems(ctx context.Context, products []domain.Product, withStock bool) ([]ProductListItem, error) {
	if len(products) == 0 {
		return []ProductListItem{}, nil
	}
	ids := productIDs(products)

	in := listInputs{withStock: withStock}
	var err error
	if in.prices, err = s.products.ListPrices(ctx, ids); err != nil {
		return nil, err
	}
	if in.images, err = s.products.ListImages(ctx, ids); err != nil {
		return nil, err
	}
	if in.ratings, err = s.products.ListRatings(ctx, ids); err != nil {
		return nil, err
	}
	if withStock {
		if in.groups, err = s.products.ListOptionGroups(ctx, ids); err != nil {
			return nil, err
		}
		sortGroups(in.groups)
	}
	return buildListItems(products, in), nil
}

// ProductDetail returns the cached detail payload of a product.
func (s *Service) ProductDetail(ctx context.Context, id string) (*ProductDetail, error) {
	key := cache.Key(cache.PrefixProduct, cache.String("productId", id))
	return cache.Fetch(ctx, s.cache, key, s.ttl.ProductDetail, func(ctx context.Context) (*ProductDetail, error) {
		return s.LoadProductDetail(ctx, id)
	})
}

// LoadProductDetail assembles the detail payload from the store, bypassing
// the cache. Deleted products are not found.
func (s *Service) LoadProductDetail(ctx context.Context, id string) (*ProductDetail, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{
		ID:               product.ID,
		Name:             product.Name,
		Slug:             product.Slug,
		ShortDescription: product.ShortDescription,
		FullDescription:  product.FullDescription,
		Status:           product.Status,
		CreatedAt:        product.CreatedAt,
		UpdatedAt:        product.UpdatedAt,
	}

	if product.SellerID != nil {
		if detail.Seller, err = s.products.GetSeller(ctx, *product.SellerID); err != nil {
			return nil, err
		}
	}
	if product.BrandID != nil {
		if detail.Brand, err = s.products.GetBrand(ctx, *product.BrandID); err != nil {
			return nil, err
		}
	}

	details, err := s.products.ListDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		detail.Detail = &details[0]
	}

	prices, err := s.products.ListPrices(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	detail.Price = buildPriceView(prices)

	categories, err := s.products.ListCategoryLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Categories = orEmpty(categories)

	groups, err := s.products.ListOptionGroups(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	sortGroups(groups)
	for i := range groups {
		groups[i].Options = orEmpty(groups[i].Options)
	}
	detail.OptionGroups = orEmpty(groups)

	images, err := s.products.ListImages(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	detail.Images = orEmpty(images)

	tags, err := s.products.ListTags(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Tags = orEmpty(tags)

	ratings, err := s.products.ListRatings(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	values := make([]int, 0, len(ratings))
	for _, r := range ratings {
		values = append(values, r.Rating)
	}
	detail.Rating = summarizeRatings(values)

	if detail.RelatedProducts, err = s.relatedProducts(ctx, product.Slug); err != nil {
		return nil, err
	}
	return detail, nil
}

// relatedProducts finds the non-deleted products sharing the last slug word
// of slug.
func (s *Service) relatedProducts(ctx context.Context, slug string) ([]RelatedProduct, error) {
	keyword := relatedKeyword(slug)
	if keyword == "" {
		return []RelatedProduct{}, nil
	}
	products, err := s.products.ListProductsBySlugSuffix(ctx, keyword, slug)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []RelatedProduct{}, nil
	}

	ids := productIDs(products)
	prices, err := s.products.ListPrices(ctx, ids)
	if err != nil {
		return nil, err
	}
	images, err := s.products.ListImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	return buildRelated(products, prices, images), nil
}
