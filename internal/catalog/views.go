package catalog

import (
	"time"

	"catalog-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Pagination describes the page a listing returned.
type Pagination struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
}

func newPagination(total, page, limit int) Pagination {
	totalPages := 0
	if total > 0 && limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{TotalItems: total, TotalPages: totalPages, CurrentPage: page, PerPage: limit}
}

type ImageRef struct {
	URL     string  `json:"url"`
	AltText *string `json:"alt_text,omitempty"`
}

type PartyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductListItem is one row of a product listing or a category product page.
type ProductListItem struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Slug             string               `json:"slug"`
	ShortDescription *string              `json:"short_description,omitempty"`
	BasePrice        *decimal.Decimal     `json:"base_price"`
	SalePrice        *decimal.Decimal     `json:"sale_price"`
	Currency         string               `json:"currency,omitempty"`
	PrimaryImage     []ImageRef           `json:"primary_image"`
	Brand            *PartyRef            `json:"brand"`
	Seller           *PartyRef            `json:"seller"`
	Rating           float64              `json:"rating"`
	ReviewCount      int                  `json:"review_count"`
	InStock          *bool                `json:"in_stock,omitempty"`
	Status           domain.ProductStatus `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
}

type ProductPage struct {
	Items      []ProductListItem `json:"items"`
	Pagination Pagination        `json:"pagination"`
}

// RatingDistribution counts ratings per star, keyed "5" down to "1".
type RatingDistribution struct {
	Five  int `json:"5"`
	Four  int `json:"4"`
	Three int `json:"3"`
	Two   int `json:"2"`
	One   int `json:"1"`
}

func (d *RatingDistribution) add(rating int) {
	switch rating {
	case 5:
		d.Five++
	case 4:
		d.Four++
	case 3:
		d.Three++
	case 2:
		d.Two++
	case 1:
		d.One++
	}
}

func (d RatingDistribution) Total() int {
	return d.Five + d.Four + d.Three + d.Two + d.One
}

type RatingSummary struct {
	Average      float64            `json:"average"`
	Count        int                `json:"count"`
	Distribution RatingDistribution `json:"distribution"`
}

// PriceView is the first price row of a product with its derived discount.
// DiscountPercentage is nil when there is no sale price.
type PriceView struct {
	BasePrice          decimal.Decimal  `json:"base_price"`
	SalePrice          *decimal.Decimal `json:"sale_price"`
	Currency           string           `json:"currency"`
	TaxRate            *decimal.Decimal `json:"tax_rate"`
	DiscountPercentage *int64           `json:"discount_percentage"`
}

type RelatedProduct struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	ShortDescription *string          `json:"short_description,omitempty"`
	PrimaryImage     []ImageRef       `json:"primary_image"`
	BasePrice        *decimal.Decimal `json:"base_price"`
	SalePrice        *decimal.Decimal `json:"sale_price"`
	Currency         string           `json:"currency,omitempty"`
}

// ProductDetail is the denormalized detail payload of one product.
type ProductDetail struct {
	ID               string                       `json:"id"`
	Name             string                       `json:"name"`
	Slug             string                       `json:"slug"`
	ShortDescription *string                      `json:"short_description,omitempty"`
	FullDescription  *string                      `json:"full_description,omitempty"`
	Status           domain.ProductStatus         `json:"status"`
	CreatedAt        time.Time                    `json:"created_at"`
	UpdatedAt        time.Time                    `json:"updated_at"`
	Seller           *domain.Seller               `json:"seller"`
	Brand            *domain.Brand                `json:"brand"`
	Detail           *domain.ProductDetail        `json:"detail"`
	Price            *PriceView                   `json:"price"`
	Categories       []domain.ProductCategoryLink `json:"categories"`
	OptionGroups     []domain.ProductOptionGroup  `json:"option_groups"`
	Images           []domain.ProductImage        `json:"images"`
	Tags             []domain.Tag                 `json:"tags"`
	Rating           RatingSummary                `json:"rating"`
	RelatedProducts  []RelatedProduct             `json:"related_products"`
}

// ProductRef is returned by the product write paths.
type ProductRef struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewSummary covers only the reviews of the returned page, not every
// review of the product.
type ReviewSummary struct {
	AverageRating float64            `json:"average_rating"`
	TotalCount    int                `json:"total_count"`
	Distribution  RatingDistribution `json:"distribution"`
}

type ReviewPage struct {
	Items      []domain.Review `json:"items"`
	Summary    ReviewSummary   `json:"summary"`
	Pagination Pagination      `json:"pagination"`
}

// CategoryNode is a category with its nested children. Leaves carry no
// children field.
type CategoryNode struct {
	domain.Category
	Children []*CategoryNode `json:"children,omitempty"`
}

type CategoryInfo struct {
	domain.Category
	Parent *domain.CategoryRef `json:"parent,omitempty"`
}

// CategoryPage is a category together with one page of its products.
type CategoryPage struct {
	Category   CategoryInfo      `json:"category"`
	Items      []ProductListItem `json:"items"`
	Pagination Pagination        `json:"pagination"`
}
