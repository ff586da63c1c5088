package api

import (
	"context"
	"net/http"

	"catalog-service/internal/catalog"
	"catalog-service/internal/domain"

	"github.com/go-chi/chi/v5"
)

// --- Review Handlers ---

func (h *HTTPHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	page, okPage := queryInt(r, "page")
	limit, okLimit := queryInt(r, "limit")
	if !okPage || !okLimit {
		respondWithError(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	q := catalog.ReviewQuery{Page: page, Limit: limit, Sort: r.URL.Query().Get("sort")}
	if r.URL.Query().Get("rating") != "" {
		rating, ok := queryInt(r, "rating")
		if !ok {
			respondWithError(w, http.StatusBadRequest, "Invalid rating")
			return
		}
		q.Rating = &rating
	}
	if !h.validateInput(w, q) {
		return
	}

	result, err := h.catalog.ListReviews(r.Context(), productID, q)
	if err != nil {
		h.respondWithCatalogError(w, "ListReviews", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	var input catalog.ReviewInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	var created *domain.Review
	err := h.inTx(r, func(ctx context.Context) error {
		var err error
		created, err = h.catalog.CreateReview(ctx, productID, userID(r), input)
		return err
	})
	if err != nil {
		h.respondWithCatalogError(w, "CreateReview", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewId")
	var input catalog.ReviewUpdateInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	var updated *domain.Review
	err := h.inTx(r, func(ctx context.Context) error {
		var err error
		updated, err = h.catalog.UpdateReview(ctx, reviewID, userID(r), input)
		return err
	})
	if err != nil {
		h.respondWithCatalogError(w, "UpdateReview", err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewId")

	err := h.inTx(r, func(ctx context.Context) error {
		return h.catalog.DeleteReview(ctx, reviewID, userID(r))
	})
	if err != nil {
		h.respondWithCatalogError(w, "DeleteReview", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Product Option Handlers ---

func (h *HTTPHandler) CreateOption(w http.ResponseWriter, r *http.Request) {
	var input catalog.CreateOptionInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	var created *domain.ProductOption
	err := h.inTx(r, func(ctx context.Context) error {
		var err error
		created, err = h.catalog.CreateOption(ctx, input)
		return err
	})
	if err != nil {
		h.respondWithCatalogError(w, "CreateOption", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	optionID := chi.URLParam(r, "optionId")
	var input catalog.UpdateOptionInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	var updated *domain.ProductOption
	err := h.inTx(r, func(ctx context.Context) error {
		var err error
		updated, err = h.catalog.UpdateOption(ctx, optionID, input)
		return err
	})
	if err != nil {
		h.respondWithCatalogError(w, "UpdateOption", err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	optionID := chi.URLParam(r, "optionId")

	err := h.inTx(r, func(ctx context.Context) error {
		return h.catalog.DeleteOption(ctx, optionID)
	})
	if err != nil {
		h.respondWithCatalogError(w, "DeleteOption", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
