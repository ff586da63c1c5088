// Package catalog assembles the read payloads of the catalog and runs its
// write paths on top of the stores. Write methods expect to run inside a
// store.Transactor so that every statement they issue shares one transaction.
package catalog

import (
	"errors"
	"log"
	"strings"
	"time"

	"catalog-service/internal/cache"
	"catalog-service/internal/store"

	"github.com/google/uuid"
)

var (
	ErrReviewForbidden = errors.New("catalog: review belongs to another user")
	ErrInvalidInput    = errors.New("catalog: invalid input")
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// TTLs holds the cache lifetime of each cached read path.
type TTLs struct {
	CategoryTree  time.Duration
	CategoryPage  time.Duration
	ProductList   time.Duration
	ProductDetail time.Duration
}

// DefaultTTLs keeps the tree shorter lived than a category page and a listing
// shorter lived than a detail.
var DefaultTTLs = TTLs{
	CategoryTree:  2 * time.Minute,
	CategoryPage:  5 * time.Minute,
	ProductList:   2 * time.Minute,
	ProductDetail: 5 * time.Minute,
}

// Service serves the catalog read and write paths.
type Service struct {
	categories store.CategoryStorer
	products   store.ProductStorer
	reviews    store.ReviewStorer
	options    store.OptionStorer
	cache      *cache.Gateway
	ttl        TTLs
	logger     *log.Logger
	newID      func() string
}

// NewService creates a Service.
func NewService(
	categories store.CategoryStorer,
	products store.ProductStorer,
	reviews store.ReviewStorer,
	options store.OptionStorer,
	gateway *cache.Gateway,
	ttl TTLs,
	logger *log.Logger,
) *Service {
	return &Service{
		categories: categories,
		products:   products,
		reviews:    reviews,
		options:    options,
		cache:      gateway,
		ttl:        ttl,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// pageWindow applies the pagination defaults and returns the normalized page,
// limit and the row offset.
func pageWindow(page, limit int) (int, int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit, (page - 1) * limit
}

func normalizeSort(sort string) string {
	if strings.EqualFold(sort, "ASC") {
		return "ASC"
	}
	return "DESC"
}
