package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"catalog-service/internal/catalog"
	"catalog-service/internal/domain"
	"catalog-service/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// UserIDHeader carries the id of the calling user. Review writes use it to
// check ownership.
const UserIDHeader = "X-User-ID"

// Catalog is the set of catalog operations the handlers expose.
type Catalog interface {
	CategoryTree(ctx context.Context, level *int) ([]*catalog.CategoryNode, error)
	CategoryProducts(ctx context.Context, categoryID string, q catalog.CategoryPageQuery) (*catalog.CategoryPage, error)
	CreateCategory(ctx context.Context, in catalog.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, in catalog.CategoryUpdateInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListProducts(ctx context.Context, f catalog.ProductFilter) (*catalog.ProductPage, error)
	ProductDetail(ctx context.Context, id string) (*catalog.ProductDetail, error)
	CreateProduct(ctx context.Context, in catalog.CreateProductInput) (*catalog.ProductRef, error)
	UpdateProduct(ctx context.Context, id string, in catalog.UpdateProductInput) (*catalog.ProductRef, error)
	DeleteProduct(ctx context.Context, id string) error
	SoftDeleteProduct(ctx context.Context, id string) error
	AddProductImages(ctx context.Context, productID string, in catalog.AddImagesInput) ([]domain.ProductImage, error)

	ListReviews(ctx context.Context, productID string, q catalog.ReviewQuery) (*catalog.ReviewPage, error)
	CreateReview(ctx context.Context, productID string, userID *string, in catalog.ReviewInput) (*domain.Review, error)
	UpdateReview(ctx context.Context, reviewID string, userID *string, in catalog.ReviewUpdateInput) (*domain.Review, error)
	DeleteReview(ctx context.Context, reviewID string, userID *string) error

	CreateOption(ctx context.Context, in catalog.CreateOptionInput) (*domain.ProductOption, error)
	UpdateOption(ctx context.Context, id string, in catalog.UpdateOptionInput) (*domain.ProductOption, error)
	DeleteOption(ctx context.Context, id string) error
}

var _ Catalog = (*catalog.Service)(nil)

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog  Catalog
	tx       store.Transactor
	validate *validator.Validate
	logger   *log.Logger
}

// NewHTTPHandler creates a new HTTPHandler. Every write route runs inside tx.
func NewHTTPHandler(c Catalog, tx store.Transactor, logger *log.Logger) *HTTPHandler {
	return &HTTPHandler{
		catalog:  c,
		tx:       tx,
		validate: validator.New(),
		logger:   logger,
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
		}
	}
}

// mapErrorToHTTPStatus classifies an error returned by the catalog.
func mapErrorToHTTPStatus(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrCategoryNotFound),
		errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrReviewNotFound),
		errors.Is(err, store.ErrOptionNotFound),
		errors.Is(err, store.ErrOptionGroupNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, store.ErrCategorySlugExists), errors.Is(err, store.ErrProductSlugExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, catalog.ErrReviewForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, catalog.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *HTTPHandler) respondWithCatalogError(w http.ResponseWriter, op string, err error) {
	code, message := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		h.logger.Printf("ERROR: %s failed: %v", op, err)
	} else {
		h.logger.Printf("WARN: %s rejected: %v", op, err)
	}
	respondWithError(w, code, message)
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes
// a 400 response and returns false on failure.
func (h *HTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	return h.validateInput(w, dst)
}

func (h *HTTPHandler) validateInput(w http.ResponseWriter, input interface{}) bool {
	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// inTx runs fn inside a unit of work bound to the request context. The
// response is written by the caller only after the transaction has ended.
func (h *HTTPHandler) inTx(r *http.Request, fn func(ctx context.Context) error) error {
	return h.tx.Do(r.Context(), fn)
}

func userID(r *http.Request) *string {
	if id := r.Header.Get(UserIDHeader); id != "" {
		return &id
	}
	return nil
}

// queryInt parses an optional integer query parameter. ok is false when the
// parameter is present but malformed.
func queryInt(r *http.Request, name string) (value int, ok bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func queryBool(r *http.Request, name string) (value bool, ok bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func queryString(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Route("/{categoryId}", func(r chi.Router) {
			r.Get("/", h.GetCategoryProducts)
			r.Put("/", h.UpdateCategory)
			r.Delete("/", h.DeleteCategory)
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Delete("/soft/{productId}", h.SoftDeleteProduct)
		r.Route("/{productId}", func(r chi.Router) {
			r.Get("/", h.GetProduct)
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.DeleteProduct)
			r.Post("/images", h.AddProductImages)
			r.Get("/reviews", h.ListReviews)
			r.Post("/reviews", h.CreateReview)
		})
	})

	r.Route("/api/v1/reviews/{reviewId}", func(r chi.Router) {
		r.Put("/", h.UpdateReview)
		r.Delete("/", h.DeleteReview)
	})

	r.Route("/api/v1/product-options", func(r chi.Router) {
		r.Post("/", h.CreateOption)
		r.Route("/{optionId}", func(r chi.Router) {
			r.Put("/", h.UpdateOption)
			r.Delete("/", h.DeleteOption)
		})
	})
}
