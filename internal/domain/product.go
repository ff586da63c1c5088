package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the sales state of a product. DELETED marks a soft-deleted row.
type ProductStatus string

const (
	ProductStatusSelling ProductStatus = "SELLING"
	ProductStatusSoldOut ProductStatus = "SOLD_OUT"
	ProductStatusDeleted ProductStatus = "DELETED"
)

// DefaultCurrency is applied to prices created without an explicit currency.
const DefaultCurrency = "KRW"

// Product is a row of the products table.
type Product struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	ShortDescription *string       `json:"short_description,omitempty"`
	FullDescription  *string       `json:"full_description,omitempty"`
	SellerID         *string       `json:"seller_id,omitempty"`
	BrandID          *string       `json:"brand_id,omitempty"`
	Status           ProductStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	// Brand and Seller carry id and name when the query joins them.
	Brand  *Brand  `json:"brand,omitempty"`
	Seller *Seller `json:"seller,omitempty"`
}

// ProductPrice is modeled as 1:N but holds one row per product in practice.
type ProductPrice struct {
	ID        string              `json:"id"`
	ProductID string              `json:"product_id"`
	BasePrice decimal.Decimal     `json:"base_price"`
	SalePrice decimal.NullDecimal `json:"sale_price"`
	CostPrice decimal.NullDecimal `json:"cost_price"`
	Currency  string              `json:"currency"`
	TaxRate   decimal.NullDecimal `json:"tax_rate"`
}

// ProductDetail holds the descriptive attributes of a product. Dimensions and
// AdditionalInfo are jsonb columns passed through untouched.
type ProductDetail struct {
	ID               string              `json:"id"`
	ProductID        string              `json:"product_id"`
	Weight           decimal.NullDecimal `json:"weight"`
	Dimensions       json.RawMessage     `json:"dimensions,omitempty"`
	Materials        *string             `json:"materials,omitempty"`
	CountryOfOrigin  *string             `json:"country_of_origin,omitempty"`
	WarrantyInfo     *string             `json:"warranty_info,omitempty"`
	CareInstructions *string             `json:"care_instructions,omitempty"`
	AdditionalInfo   json.RawMessage     `json:"additional_info,omitempty"`
}

// ProductCategory links a product to a category.
type ProductCategory struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	CategoryID string `json:"category_id"`
	IsPrimary  bool   `json:"is_primary"`
}

// ProductOptionGroup is a variant axis such as "Color". Options is filled by
// the stores that load groups together with their options.
type ProductOptionGroup struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	DisplayOrder int             `json:"display_order"`
	Options      []ProductOption `json:"options"`
}

// ProductOption is a single variant value carrying its own stock and price delta.
type ProductOption struct {
	ID              string          `json:"id"`
	OptionGroupID   string          `json:"option_group_id"`
	Name            string          `json:"name"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
	SKU             *string         `json:"sku,omitempty"`
	Stock           int             `json:"stock"`
	DisplayOrder    int             `json:"display_order"`
}

type ProductImage struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	URL          string  `json:"url"`
	AltText      *string `json:"alt_text,omitempty"`
	IsPrimary    bool    `json:"is_primary"`
	DisplayOrder int     `json:"display_order"`
	OptionID     *string `json:"option_id,omitempty"`
}

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
