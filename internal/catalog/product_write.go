package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"catalog-service/internal/domain"
	"catalog-service/internal/store"

	"github.com/shopspring/decimal"
)

type PriceInput struct {
	BasePrice decimal.Decimal  `json:"base_price"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	Currency  string           `json:"currency" validate:"omitempty,len=3"`
	TaxRate   *decimal.Decimal `json:"tax_rate"`
}

// PriceUpdateInput changes the non-nil fields of a product's price.
type PriceUpdateInput struct {
	BasePrice *decimal.Decimal `json:"base_price"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	Currency  *string          `json:"currency" validate:"omitempty,len=3"`
	TaxRate   *decimal.Decimal `json:"tax_rate"`
}

type DetailInput struct {
	Weight           *decimal.Decimal `json:"weight"`
	Dimensions       json.RawMessage  `json:"dimensions"`
	Materials        *string          `json:"materials"`
	CountryOfOrigin  *string          `json:"country_of_origin"`
	WarrantyInfo     *string          `json:"warranty_info"`
	CareInstructions *string          `json:"care_instructions"`
	AdditionalInfo   json.RawMessage  `json:"additional_info"`
}

type CategoryLinkInput struct {
	CategoryID string `json:"category_id" validate:"required"`
	IsPrimary  bool   `json:"is_primary"`
}

type OptionGroupInput struct {
	Name         string        `json:"name" validate:"required,max=100"`
	DisplayOrder int           `json:"display_order"`
	Options      []OptionInput `json:"options" validate:"dive"`
}

type OptionInput struct {
	Name            string          `json:"name" validate:"required,max=100"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
	SKU             *string         `json:"sku" validate:"omitempty,max=100"`
	Stock           int             `json:"stock" validate:"min=0"`
	DisplayOrder    int             `json:"display_order"`
}

type ImageInput struct {
	URL          string  `json:"url" validate:"required,url"`
	AltText      *string `json:"alt_text"`
	IsPrimary    bool    `json:"is_primary"`
	DisplayOrder int     `json:"display_order"`
	OptionID     *string `json:"option_id"`
}

// CreateProductInput is the payload of a product create. A product is always
// created with a price.
type CreateProductInput struct {
	Name             string               `json:"name" validate:"required,max=255"`
	Slug             string               `json:"slug" validate:"required,max=255"`
	ShortDescription *string              `json:"short_description" validate:"omitempty,max=500"`
	FullDescription  *string              `json:"full_description"`
	SellerID         *string              `json:"seller_id"`
	BrandID          *string              `json:"brand_id"`
	Status           domain.ProductStatus `json:"status" validate:"omitempty,oneof=SELLING SOLD_OUT"`
	Detail           *DetailInput         `json:"detail"`
	Price            PriceInput           `json:"price"`
	Categories       []CategoryLinkInput  `json:"categories" validate:"dive"`
	OptionGroups     []OptionGroupInput   `json:"option_groups" validate:"dive"`
	Images           []ImageInput         `json:"images" validate:"dive"`
	TagIDs           []string             `json:"tag_ids"`
}

// UpdateProductInput changes the non-nil fields of a product. A non-nil
// collection, even an empty one, replaces the stored collection as a whole.
type UpdateProductInput struct {
	Name             *string               `json:"name" validate:"omitempty,max=255"`
	Slug             *string               `json:"slug" validate:"omitempty,max=255"`
	ShortDescription *string               `json:"short_description" validate:"omitempty,max=500"`
	FullDescription  *string               `json:"full_description"`
	SellerID         *string               `json:"seller_id"`
	BrandID          *string               `json:"brand_id"`
	Status           *domain.ProductStatus `json:"status" validate:"omitempty,oneof=SELLING SOLD_OUT"`
	Detail           *DetailInput          `json:"detail"`
	Price            *PriceUpdateInput     `json:"price"`
	Categories       []CategoryLinkInput   `json:"categories" validate:"omitempty,dive"`
	OptionGroups     []OptionGroupInput    `json:"option_groups" validate:"omitempty,dive"`
	Images           []ImageInput          `json:"images" validate:"omitempty,dive"`
	TagIDs           []string              `json:"tag_ids"`
}

type AddImagesInput struct {
	Images []ImageInput `json:"images" validate:"required,min=1,dive"`
}

// CreateProduct stores a product together with its price, detail,
// categories, option groups, images and tags. The slug is checked before
// any row is written.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*ProductRef, error) {
	if in.Price.BasePrice.IsNegative() {
		return nil, fmt.Errorf("%w: base price must not be negative", ErrInvalidInput)
	}
	if err := s.ensureSlugFree(ctx, in.Slug, ""); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.ProductStatusSelling
	}
	product, err := s.products.CreateProduct(ctx, &domain.Product{
		ID:               s.newID(),
		Name:             in.Name,
		Slug:             in.Slug,
		ShortDescription: in.ShortDescription,
		FullDescription:  in.FullDescription,
		SellerID:         in.SellerID,
		BrandID:          in.BrandID,
		Status:           status,
	})
	if err != nil {
		return nil, err
	}

	currency := in.Price.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	if err := s.products.SavePrice(ctx, &domain.ProductPrice{
		ID:        s.newID(),
		ProductID: product.ID,
		BasePrice: in.Price.BasePrice,
		SalePrice: nullDecimal(in.Price.SalePrice),
		CostPrice: nullDecimal(in.Price.CostPrice),
		Currency:  currency,
		TaxRate:   nullDecimal(in.Price.TaxRate),
	}); err != nil {
		return nil, err
	}

	if in.Detail != nil {
		detail := &domain.ProductDetail{ID: s.newID(), ProductID: product.ID}
		mergeDetail(detail, in.Detail)
		if err := s.products.SaveDetail(ctx, detail); err != nil {
			return nil, err
		}
	}
	if len(in.Categories) > 0 {
		if err := s.products.ReplaceCategoryLinks(ctx, product.ID, s.categoryLinks(product.ID, in.Categories)); err != nil {
			return nil, err
		}
	}
	if len(in.OptionGroups) > 0 {
		if err := s.products.ReplaceOptionGroups(ctx, product.ID, s.optionGroups(product.ID, in.OptionGroups)); err != nil {
			return nil, err
		}
	}
	if len(in.Images) > 0 {
		if err := s.products.AddImages(ctx, product.ID, s.images(product.ID, in.Images)); err != nil {
			return nil, err
		}
	}
	if len(in.TagIDs) > 0 {
		if err := s.products.ReplaceTags(ctx, product.ID, in.TagIDs); err != nil {
			return nil, err
		}
	}

	s.logger.Printf("INFO: product %s created with slug %q", product.ID, product.Slug)
	return productRef(product), nil
}

// UpdateProduct locks the product, merges the scalar fields of in and
// replaces every collection in carries.
func (s *Service) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*ProductRef, error) {
	product, err := s.products.LockProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Slug != nil && *in.Slug != product.Slug {
		if err := s.ensureSlugFree(ctx, *in.Slug, id); err != nil {
			return nil, err
		}
		product.Slug = *in.Slug
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.ShortDescription != nil {
		product.ShortDescription = in.ShortDescription
	}
	if in.FullDescription != nil {
		product.FullDescription = in.FullDescription
	}
	if in.SellerID != nil {
		product.SellerID = in.SellerID
	}
	if in.BrandID != nil {
		product.BrandID = in.BrandID
	}
	if in.Status != nil {
		product.Status = *in.Status
	}
	updated, err := s.products.UpdateProduct(ctx, product)
	if err != nil {
		return nil, err
	}

	if in.Price != nil {
		if err := s.updatePrice(ctx, id, in.Price); err != nil {
			return nil, err
		}
	}
	if in.Detail != nil {
		detail, err := s.products.LockDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		if detail == nil {
			detail = &domain.ProductDetail{ID: s.newID(), ProductID: id}
		}
		mergeDetail(detail, in.Detail)
		if err := s.products.SaveDetail(ctx, detail); err != nil {
			return nil, err
		}
	}
	if in.Categories != nil {
		if err := s.products.ReplaceCategoryLinks(ctx, id, s.categoryLinks(id, in.Categories)); err != nil {
			return nil, err
		}
	}
	if in.OptionGroups != nil {
		if err := s.products.ReplaceOptionGroups(ctx, id, s.optionGroups(id, in.OptionGroups)); err != nil {
			return nil, err
		}
	}
	if in.Images != nil {
		if err := s.products.ReplaceImages(ctx, id, s.images(id, in.Images)); err != nil {
			return nil, err
		}
	}
	if in.TagIDs != nil {
		if err := s.products.ReplaceTags(ctx, id, in.TagIDs); err != nil {
			return nil, err
		}
	}
	return productRef(updated), nil
}

func (s *Service) updatePrice(ctx context.Context, productID string, in *PriceUpdateInput) error {
	price, err := s.products.LockPrice(ctx, productID)
	if err != nil {
		return err
	}
	if price == nil {
		if in.BasePrice == nil {
			return fmt.Errorf("%w: base price is required for a product without a price", ErrInvalidInput)
		}
		price = &domain.ProductPrice{ID: s.newID(), ProductID: productID, Currency: domain.DefaultCurrency}
	}
	if in.BasePrice != nil {
		if in.BasePrice.IsNegative() {
			return fmt.Errorf("%w: base price must not be negative", ErrInvalidInput)
		}
		price.BasePrice = *in.BasePrice
	}
	if in.SalePrice != nil {
		price.SalePrice = nullDecimal(in.SalePrice)
	}
	if in.CostPrice != nil {
		price.CostPrice = nullDecimal(in.CostPrice)
	}
	if in.Currency != nil {
		price.Currency = *in.Currency
	}
	if in.TaxRate != nil {
		price.TaxRate = nullDecimal(in.TaxRate)
	}
	return s.products.SavePrice(ctx, price)
}

// DeleteProduct removes the product and every row it owns.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("INFO: product %s deleted", id)
	return nil
}

// SoftDeleteProduct marks the product DELETED. It then drops out of every
// listing and detail read.
func (s *Service) SoftDeleteProduct(ctx context.Context, id string) error {
	if _, err := s.products.LockProduct(ctx, id); err != nil {
		return err
	}
	return s.products.SetProductStatus(ctx, id, domain.ProductStatusDeleted)
}

// AddProductImages appends images to an existing product.
func (s *Service) AddProductImages(ctx context.Context, productID string, in AddImagesInput) ([]domain.ProductImage, error) {
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}
	images := s.images(productID, in.Images)
	if err := s.products.AddImages(ctx, productID, images); err != nil {
		return nil, err
	}
	return images, nil
}

// ensureSlugFree fails with store.ErrProductSlugExists when slug belongs to
// a product other than ownerID.
func (s *Service) ensureSlugFree(ctx context.Context, slug, ownerID string) error {
	existing, err := s.products.GetProductBySlug(ctx, slug)
	if errors.Is(err, store.ErrProductNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != ownerID {
		return store.ErrProductSlugExists
	}
	return nil
}

func mergeDetail(detail *domain.ProductDetail, in *DetailInput) {
	if in.Weight != nil {
		detail.Weight = nullDecimal(in.Weight)
	}
	if in.Dimensions != nil {
		detail.Dimensions = in.Dimensions
	}
	if in.Materials != nil {
		detail.Materials = in.Materials
	}
	if in.CountryOfOrigin != nil {
		detail.CountryOfOrigin = in.CountryOfOrigin
	}
	if in.WarrantyInfo != nil {
		detail.WarrantyInfo = in.WarrantyInfo
	}
	if in.CareInstructions != nil {
		detail.CareInstructions = in.CareInstructions
	}
	if in.AdditionalInfo != nil {
		detail.AdditionalInfo = in.AdditionalInfo
	}
}

func (s *Service) categoryLinks(productID string, in []CategoryLinkInput) []domain.ProductCategory {
	links := make([]domain.ProductCategory, 0, len(in))
	for _, c := range in {
		links = append(links, domain.ProductCategory{
			ID:         s.newID(),
			ProductID:  productID,
			CategoryID: c.CategoryID,
			IsPrimary:  c.IsPrimary,
		})
	}
	return links
}

func (s *Service) optionGroups(productID string, in []OptionGroupInput) []domain.ProductOptionGroup {
	groups := make([]domain.ProductOptionGroup, 0, len(in))
	for _, g := range in {
		group := domain.ProductOptionGroup{
			ID:           s.newID(),
			ProductID:    productID,
			Name:         g.Name,
			DisplayOrder: g.DisplayOrder,
			Options:      make([]domain.ProductOption, 0, len(g.Options)),
		}
		for _, o := range g.Options {
			group.Options = append(group.Options, domain.ProductOption{
				ID:              s.newID(),
				OptionGroupID:   group.ID,
				Name:            o.Name,
				AdditionalPrice: o.AdditionalPrice,
				SKU:             o.SKU,
				Stock:           o.Stock,
				DisplayOrder:    o.DisplayOrder,
			})
		}
		groups = append(groups, group)
	}
	return groups
}

func (s *Service) images(productID string, in []ImageInput) []domain.ProductImage {
	images := make([]domain.ProductImage, 0, len(in))
	for _, img := range in {
		images = append(images, domain.ProductImage{
			ID:           s.newID(),
			ProductID:    productID,
			URL:          img.URL,
			AltText:      img.AltText,
			IsPrimary:    img.IsPrimary,
			DisplayOrder: img.DisplayOrder,
			OptionID:     img.OptionID,
		})
	}
	return images
}

func productRef(p *domain.Product) *ProductRef {
	return &ProductRef{ID: p.ID, Name: p.Name, Slug: p.Slug, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}
