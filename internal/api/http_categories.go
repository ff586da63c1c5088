package api

import (
	"context"
	"net/http"

	"catalog-service/internal/catalog"
	"catalog-service/internal/domain"

	"github.com/go-chi/chi/v5"
)

// ListCategories returns the category tree, optionally limited to one level.
func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	var level *int
	if raw := r.URL.Query().Get("level"); raw != "" {
		v, ok := queryInt(r, "level")
		if !ok || v < 1 || v > 3 {
			respondWithError(w, http.StatusBadRequest, "Invalid level: must be 1, 2 or 3")
			return
		}
		level = &v
	}

	tree, err := h.catalog.CategoryTree(r.Context(), level)
	if err != nil {
		h.respondWithCatalogError(w, "ListCategories", err)
		return
	}
	respondWithJSON(w, http.StatusOK, tree)
}

// GetCategoryProducts returns a category with one page of its products.
func (h *HTTPHandler) GetCategoryProducts(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")

	page, okPage := queryInt(r, "page")
	limit, okLimit := queryInt(r, "limit")
	include, okInclude := queryBool(r, "include_subcategories")
	if !okPage || !okLimit || !okInclude {
		respondWithError(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	q := catalog.CategoryPageQuery{
		Page:                 page,
		Limit:                limit,
		Sort:                 r.URL.Query().Get("sort"),
		IncludeSubcategories: include,
	}
	if !h.validateInput(w, q) {
		return
	}

	result, err := h.catalog.CategoryProducts(r.Context(), categoryID, q)
	if err != nil {
		h.respondWithCatalogError(w, "GetCategoryProducts", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input catalog.CategoryInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	var created *domain.Category
	err := h.inTx(r, func(ctx context.Context) error {
		var err error
		created, err = h.catalog.CreateCategory(ctx, input)
		return err
	})
	if err != nil {
		h.respondWithCatalogError(w, "CreateCategory", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")
	var input catalog.CategoryUpdateInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	var updated *domain.Category
	err := h.inTx(r, func(ctx context.Context) error {
		var err error
		updated, err = h.catalog.UpdateCategory(ctx, categoryID, input)
		return err
	})
	if err != nil {
		h.respondWithCatalogError(w, "UpdateCategory", err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")

	err := h.inTx(r, func(ctx context.Context) error {
		return h.catalog.DeleteCategory(ctx, categoryID)
	})
	if err != nil {
		h.respondWithCatalogError(w, "DeleteCategory", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
