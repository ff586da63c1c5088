package catalog

import (
	"context"

	"catalog-service/internal/domain"

	"github.com/shopspring/decimal"
)

type CreateOptionInput struct {
	OptionGroupID   string          `json:"option_group_id" validate:"required"`
	Name            string          `json:"name" validate:"required,max=100"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
	SKU             *string         `json:"sku" validate:"omitempty,max=100"`
	Stock           int             `json:"stock" validate:"min=0"`
	DisplayOrder    int             `json:"display_order"`
}

// UpdateOptionInput changes the non-nil fields of an option.
type UpdateOptionInput struct {
	Name            *string          `json:"name" validate:"omitempty,max=100"`
	AdditionalPrice *decimal.Decimal `json:"additional_price"`
	SKU             *string          `json:"sku" validate:"omitempty,max=100"`
	Stock           *int             `json:"stock" validate:"omitempty,min=0"`
	DisplayOrder    *int             `json:"display_order"`
}

// CreateOption adds an option to an existing option group.
func (s *Service) CreateOption(ctx context.Context, in CreateOptionInput) (*domain.ProductOption, error) {
	if _, err := s.options.GetOptionGroup(ctx, in.OptionGroupID); err != nil {
		return nil, err
	}
	return s.options.CreateOption(ctx, &domain.ProductOption{
		ID:              s.newID(),
		OptionGroupID:   in.OptionGroupID,
		Name:            in.Name,
		AdditionalPrice: in.AdditionalPrice,
		SKU:             in.SKU,
		Stock:           in.Stock,
		DisplayOrder:    in.DisplayOrder,
	})
}

// UpdateOption locks the option and applies the non-nil fields of in.
func (s *Service) UpdateOption(ctx context.Context, id string, in UpdateOptionInput) (*domain.ProductOption, error) {
	option, err := s.options.LockOption(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		option.Name = *in.Name
	}
	if in.AdditionalPrice != nil {
		option.AdditionalPrice = *in.AdditionalPrice
	}
	if in.SKU != nil {
		option.SKU = in.SKU
	}
	if in.Stock != nil {
		option.Stock = *in.Stock
	}
	if in.DisplayOrder != nil {
		option.DisplayOrder = *in.DisplayOrder
	}
	return s.options.UpdateOption(ctx, option)
}

func (s *Service) DeleteOption(ctx context.Context, id string) error {
	return s.options.DeleteOption(ctx, id)
}
