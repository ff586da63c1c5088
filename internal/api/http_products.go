package api

import (
	"context"
	"net/http"
	"strings"

	"catalog-service/internal/catalog"
	"catalog-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// parseProductFilter reads the listing filters from the query string.
// Categories may be repeated or comma separated.
func parseProductFilter(r *http.Request) (catalog.ProductFilter, string) {
	q := r.URL.Query()
	var f catalog.ProductFilter

	var ok bool
	if f.Page, ok = queryInt(r, "page"); !ok {
		return f, "Invalid page"
	}
	if f.Limit, ok = queryInt(r, "limit"); !ok {
		return f, "Invalid limit"
	}
	if f.InStock, ok = queryBool(r, "in_stock"); !ok {
		return f, "Invalid in_stock value: must be true or false"
	}
	f.Sort = q.Get("sort")

	if raw := q.Get("status"); raw != "" {
		status := domain.ProductStatus(strings.ToUpper(raw))
		f.Status = &status
	}
	for _, name := range []string{"min_price", "max_price"} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil || price.IsNegative() {
			return f, "Invalid " + name + " format"
		}
		if name == "min_price" {
			f.MinPrice = &price
		} else {
			f.MaxPrice = &price
		}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return f, "min_price cannot exceed max_price"
	}

	for _, raw := range q["category"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.CategoryIDs = append(f.CategoryIDs, id)
			}
		}
	}
	f.BrandID = queryString(r, "brand")
	f.SellerID = queryString(r, "seller")
	f.Search = queryString(r, "search")
	return f, ""
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, problem := parseProductFilter(r)
	if problem != "" {
		respondWithError(w, http.StatusBadRequest, problem)
		return
	}
	if !h.validateInput(w, filter) {
		return
	}

	page, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		h.respondWithCatalogError(w, "ListProducts", err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	detail, err := h.catalog.ProductDetail(r.Context(), productID)
	if err != nil {
		h.respondWithCatalogError(w, "GetProduct", err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input catalog.CreateProductInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	var created *catalog.ProductRef
	err := h.inTx(r, func(ctx context.Context) error {
		var err error
		created, err = h.catalog.CreateProduct(ctx, input)
		return err
	})
	if err != nil {
		h.respondWithCatalogError(w, "CreateProduct", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	var input catalog.UpdateProductInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	var updated *catalog.ProductRef
	err := h.inTx(r, func(ctx context.Context) error {
		var err error
		updated, err = h.catalog.UpdateProduct(ctx, productID, input)
		return err
	})
	if err != nil {
		h.respondWithCatalogError(w, "UpdateProduct", err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	err := h.inTx(r, func(ctx context.Context) error {
		return h.catalog.DeleteProduct(ctx, productID)
	})
	if err != nil {
		h.respondWithCatalogError(w, "DeleteProduct", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) SoftDeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	err := h.inTx(r, func(ctx context.Context) error {
		return h.catalog.SoftDeleteProduct(ctx, productID)
	})
	if err != nil {
		h.respondWithCatalogError(w, "SoftDeleteProduct", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) AddProductImages(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	var input catalog.AddImagesInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	var images []domain.ProductImage
	err := h.inTx(r, func(ctx context.Context) error {
		var err error
		images, err = h.catalog.AddProductImages(ctx, productID, input)
		return err
	})
	if err != nil {
		h.respondWithCatalogError(w, "AddProductImages", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, images)
}
