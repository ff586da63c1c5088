package catalog

import (
	"context"
	"errors"
	"fmt"

	"catalog-service/internal/cache"
	"catalog-service/internal/domain"
	"catalog-service/internal/store"
)

// CategoryPageQuery selects one page of a category's products.
type CategoryPageQuery struct {
	Page                 int    `validate:"omitempty,min=1"`
	Limit                int    `validate:"omitempty,min=1,max=100"`
	Sort                 string `validate:"omitempty,oneof=ASC DESC asc desc"`
	IncludeSubcategories bool
}

// CategoryInput is the payload of a category create.
type CategoryInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Slug        string  `json:"slug" validate:"required,max=100"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"`
	Level       int     `json:"level" validate:"required,min=1,max=3"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

// CategoryUpdateInput is the payload of a category update. Nil fields are left untouched.
type CategoryUpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"`
	Level       *int    `json:"level" validate:"omitempty,min=1,max=3"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}

// CategoryTree returns the category forest, or a single level of it when
// level is set. Results are cached per level.
func (s *Service) CategoryTree(ctx context.Context, level *int) ([]*CategoryNode, error) {
	key := cache.Key(cache.PrefixCategories, cache.OptInt("level", level))
	return cache.Fetch(ctx, s.cache, key, s.ttl.CategoryTree, func(ctx context.Context) ([]*CategoryNode, error) {
		rows, err := s.categories.ListCategories(ctx, store.ListCategoriesParams{Level: level})
		if err != nil {
			return nil, err
		}
		return BuildCategoryTree(rows), nil
	})
}

// CategoryProducts returns a category, its parent and one page of its
// products. With IncludeSubcategories the page also covers the direct
// children of the category.
func (s *Service) CategoryProducts(ctx context.Context, categoryID string, q CategoryPageQuery) (*CategoryPage, error) {
	page, limit, offset := pageWindow(q.Page, q.Limit)
	sort := normalizeSort(q.Sort)

	key := cache.Key(cache.PrefixCategory,
		cache.String("categoryId", categoryID),
		cache.Int("page", page),
		cache.Int("pages", limit),
		cache.String("sort", sort),
		cache.Bool("includeSubcategories", q.IncludeSubcategories),
	)
	return cache.Fetch(ctx, s.cache, key, s.ttl.CategoryPage, func(ctx context.Context) (*CategoryPage, error) {
		category, err := s.categories.GetCategoryByID(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		parent, err := s.categories.GetCategoryParent(ctx, categoryID)
		if err != nil {
			return nil, err
		}

		categoryIDs := []string{categoryID}
		if q.IncludeSubcategories {
			children, err := s.categories.ListChildCategoryIDs(ctx, categoryID)
			if err != nil {
				return nil, err
			}
			categoryIDs = append(categoryIDs, children...)
		}

		products, total, err := s.products.ListProducts(ctx, store.ListProductsParams{
			Limit:       limit,
			Offset:      offset,
			SortOrder:   sort,
			CategoryIDs: categoryIDs,
		})
		if err != nil {
			return nil, err
		}
		items, err := s.listItems(ctx, products, false)
		if err != nil {
			return nil, err
		}

		return &CategoryPage{
			Category:   CategoryInfo{Category: *category, Parent: parent},
			Items:      items,
			Pagination: newPagination(total, page, limit),
		}, nil
	})
}

// CreateCategory validates the parent reference and stores a new category.
// A taken slug is rejected before anything is written.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	if err := s.ensureCategorySlugFree(ctx, in.Slug, ""); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		if _, err := s.categories.GetCategoryByID(ctx, *in.ParentID); err != nil {
			return nil, fmt.Errorf("parent category %q: %w", *in.ParentID, err)
		}
	}
	return s.categories.CreateCategory(ctx, &domain.Category{
		ID:          s.newID(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		ParentID:    in.ParentID,
		Level:       in.Level,
		ImageURL:    in.ImageURL,
	})
}

// UpdateCategory merges the non-nil fields of in into the category.
func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryUpdateInput) (*domain.Category, error) {
	category, err := s.categories.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		if *in.ParentID == id {
			return nil, fmt.Errorf("%w: category cannot be its own parent", ErrInvalidInput)
		}
		if _, err := s.categories.GetCategoryByID(ctx, *in.ParentID); err != nil {
			return nil, fmt.Errorf("parent category %q: %w", *in.ParentID, err)
		}
		category.ParentID = in.ParentID
	}
	if in.Name != nil {
		category.Name = *in.Name
	}
	if in.Slug != nil && *in.Slug != category.Slug {
		if err := s.ensureCategorySlugFree(ctx, *in.Slug, id); err != nil {
			return nil, err
		}
		category.Slug = *in.Slug
	}
	if in.Description != nil {
		category.Description = in.Description
	}
	if in.Level != nil {
		category.Level = *in.Level
	}
	if in.ImageURL != nil {
		category.ImageURL = in.ImageURL
	}
	return s.categories.UpdateCategory(ctx, category)
}

func (s *Service) ensureCategorySlugFree(ctx context.Context, slug, ownerID string) error {
	existing, err := s.categories.GetCategoryBySlug(ctx, slug)
	if errors.Is(err, store.ErrCategoryNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != ownerID {
		return store.ErrCategorySlugExists
	}
	return nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.DeleteCategory(ctx, id)
}
