package catalog

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"catalog-service/internal/cache"
	"catalog-service/internal/domain"
	"catalog-service/internal/store"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory implementation of every storer the Service uses.
type memStore struct {
	mu    sync.Mutex
	clock time.Time

	categories []domain.Category
	products   []*domain.Product
	prices     map[string][]domain.ProductPrice
	details    map[string][]domain.ProductDetail
	images     map[string][]domain.ProductImage
	groups     map[string][]domain.ProductOptionGroup
	links      map[string][]domain.ProductCategory
	tags       map[string][]string
	tagCatalog map[string]domain.Tag
	reviews    []*domain.Review
	sellers    map[string]*domain.Seller
	brands     map[string]*domain.Brand

	calls map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		clock:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		prices:     map[string][]domain.ProductPrice{},
		details:    map[string][]domain.ProductDetail{},
		images:     map[string][]domain.ProductImage{},
		groups:     map[string][]domain.ProductOptionGroup{},
		links:      map[string][]domain.ProductCategory{},
		tags:       map[string][]string{},
		tagCatalog: map[string]domain.Tag{},
		sellers:    map[string]*domain.Seller{},
		brands:     map[string]*domain.Brand{},
		calls:      map[string]int{},
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *memStore) called(op string) {
	m.calls[op]++
}

// --- categories ---

func (m *memStore) CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("CreateCategory")
	for _, existing := range m.categories {
		if existing.Slug == c.Slug {
			return nil, store.ErrCategorySlugExists
		}
	}
	m.categories = append(m.categories, *c)
	created := *c
	return &created, nil
}

func (m *memStore) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

func (m *memStore) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("GetCategoryBySlug")
	for _, c := range m.categories {
		if c.Slug == slug {
			found := c
			return &found, nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

func (m *memStore) GetCategoryParent(ctx context.Context, id string) (*domain.CategoryRef, error) {
	c, err := m.GetCategoryByID(ctx, id)
	if err != nil || c.ParentID == nil {
		return nil, nil
	}
	parent, err := m.GetCategoryByID(ctx, *c.ParentID)
	if err != nil {
		return nil, nil
	}
	return &domain.CategoryRef{ID: parent.ID, Name: parent.Name, Slug: parent.Slug}, nil
}

func (m *memStore) ListCategories(ctx context.Context, params store.ListCategoriesParams) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("ListCategories")
	var rows []domain.Category
	for _, c := range m.categories {
		if params.Level == nil || c.Level == *params.Level {
			rows = append(rows, c)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Level < rows[j].Level })
	return rows, nil
}

func (m *memStore) ListChildCategoryIDs(ctx context.Context, parentID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []string{}
	for _, c := range m.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (m *memStore) UpdateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.categories {
		if m.categories[i].ID == c.ID {
			m.categories[i] = *c
			updated := *c
			return &updated, nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

func (m *memStore) DeleteCategory(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.categories {
		if m.categories[i].ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return store.ErrCategoryNotFound
}

// --- products ---

func (m *memStore) findProduct(id string, includeDeleted bool) (*domain.Product, int) {
	for i, p := range m.products {
		if p.ID == id && (includeDeleted || p.Status != domain.ProductStatusDeleted) {
			return p, i
		}
	}
	return nil, -1
}

func (m *memStore) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.products {
		if existing.Slug == p.Slug {
			return nil, store.ErrProductSlugExists
		}
	}
	now := m.tick()
	stored := *p
	stored.CreatedAt, stored.UpdatedAt = now, now
	m.products = append(m.products, &stored)
	created := stored
	return &created, nil
}

func (m *memStore) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("GetProductByID")
	p, _ := m.findProduct(id, false)
	if p == nil {
		return nil, store.ErrProductNotFound
	}
	found := *p
	return &found, nil
}

func (m *memStore) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Slug == slug {
			found := *p
			return &found, nil
		}
	}
	return nil, store.ErrProductNotFound
}

func (m *memStore) LockProduct(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, _ := m.findProduct(id, false)
	if p == nil {
		return nil, store.ErrProductNotFound
	}
	found := *p
	return &found, nil
}

func (m *memStore) ListProducts(ctx context.Context, params store.ListProductsParams) ([]domain.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("ListProducts")

	var matched []domain.Product
	for _, p := range m.products {
		if params.Status != nil {
			if p.Status != *params.Status {
				continue
			}
		} else if p.Status == domain.ProductStatusDeleted {
			continue
		}
		if len(params.CategoryIDs) > 0 && !m.linkedToAny(p.ID, params.CategoryIDs) {
			continue
		}
		if params.BrandID != nil && (p.BrandID == nil || *p.BrandID != *params.BrandID) {
			continue
		}
		if params.SearchQuery != nil && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(*params.SearchQuery)) {
			continue
		}
		matched = append(matched, *p)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if params.SortOrder == "ASC" {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if params.Offset >= total {
		return []domain.Product{}, total, nil
	}
	end := params.Offset + params.Limit
	if end > total {
		end = total
	}
	return matched[params.Offset:end], total, nil
}

func (m *memStore) linkedToAny(productID string, categoryIDs []string) bool {
	for _, l := range m.links[productID] {
		for _, id := range categoryIDs {
			if l.CategoryID == id {
				return true
			}
		}
	}
	return false
}

func (m *memStore) ListProductsBySlugSuffix(ctx context.Context, suffix, excludeSlug string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	products := []domain.Product{}
	for _, p := range m.products {
		if p.Status != domain.ProductStatusDeleted && strings.HasSuffix(p.Slug, suffix) && p.Slug != excludeSlug {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (m *memStore) UpdateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, i := m.findProduct(p.ID, true)
	if existing == nil {
		return nil, store.ErrProductNotFound
	}
	stored := *p
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = m.tick()
	m.products[i] = &stored
	updated := stored
	return &updated, nil
}

func (m *memStore) SetProductStatus(ctx context.Context, id string, status domain.ProductStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, _ := m.findProduct(id, true)
	if p == nil {
		return store.ErrProductNotFound
	}
	p.Status = status
	return nil
}

func (m *memStore) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, i := m.findProduct(id, true)
	if i < 0 {
		return store.ErrProductNotFound
	}
	m.products = append(m.products[:i], m.products[i+1:]...)
	delete(m.prices, id)
	delete(m.details, id)
	delete(m.images, id)
	delete(m.groups, id)
	delete(m.links, id)
	delete(m.tags, id)
	return nil
}

func (m *memStore) GetSeller(ctx context.Context, id string) (*domain.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sellers[id], nil
}

func (m *memStore) GetBrand(ctx context.Context, id string) (*domain.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.brands[id], nil
}

func (m *memStore) ListPrices(ctx context.Context, productIDs []string) ([]domain.ProductPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var prices []domain.ProductPrice
	for _, id := range productIDs {
		prices = append(prices, m.prices[id]...)
	}
	return prices, nil
}

func (m *memStore) LockPrice(ctx context.Context, productID string) (*domain.ProductPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prices[productID]) == 0 {
		return nil, nil
	}
	p := m.prices[productID][0]
	return &p, nil
}

func (m *memStore) SavePrice(ctx context.Context, price *domain.ProductPrice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.prices[price.ProductID]
	for i := range rows {
		if rows[i].ID == price.ID {
			rows[i] = *price
			return nil
		}
	}
	m.prices[price.ProductID] = append(rows, *price)
	return nil
}

func (m *memStore) ListDetails(ctx context.Context, productID string) ([]domain.ProductDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ProductDetail(nil), m.details[productID]...), nil
}

func (m *memStore) LockDetail(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.details[productID]) == 0 {
		return nil, nil
	}
	d := m.details[productID][0]
	return &d, nil
}

func (m *memStore) SaveDetail(ctx context.Context, detail *domain.ProductDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.details[detail.ProductID]
	for i := range rows {
		if rows[i].ID == detail.ID {
			rows[i] = *detail
			return nil
		}
	}
	m.details[detail.ProductID] = append(rows, *detail)
	return nil
}

func (m *memStore) ListImages(ctx context.Context, productIDs []string) ([]domain.ProductImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var images []domain.ProductImage
	for _, id := range productIDs {
		images = append(images, m.images[id]...)
	}
	return images, nil
}

func (m *memStore) AddImages(ctx context.Context, productID string, images []domain.ProductImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[productID] = append(m.images[productID], images...)
	return nil
}

func (m *memStore) ReplaceImages(ctx context.Context, productID string, images []domain.ProductImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[productID] = append([]domain.ProductImage(nil), images...)
	return nil
}

func (m *memStore) ListOptionGroups(ctx context.Context, productIDs []string) ([]domain.ProductOptionGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var groups []domain.ProductOptionGroup
	for _, id := range productIDs {
		for _, g := range m.groups[id] {
			g.Options = append([]domain.ProductOption(nil), g.Options...)
			groups = append(groups, g)
		}
	}
	return groups, nil
}

func (m *memStore) ReplaceOptionGroups(ctx context.Context, productID string, groups []domain.ProductOptionGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("ReplaceOptionGroups")
	m.groups[productID] = append([]domain.ProductOptionGroup(nil), groups...)
	return nil
}

func (m *memStore) ListCategoryLinks(ctx context.Context, productID string) ([]domain.ProductCategoryLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	links := []domain.ProductCategoryLink{}
	for _, l := range m.links[productID] {
		for _, c := range m.categories {
			if c.ID != l.CategoryID {
				continue
			}
			link := domain.ProductCategoryLink{ProductID: productID, ID: c.ID, Name: c.Name, Slug: c.Slug, IsPrimary: l.IsPrimary}
			if c.ParentID != nil {
				for _, p := range m.categories {
					if p.ID == *c.ParentID {
						link.Parent = &domain.CategoryRef{ID: p.ID, Name: p.Name, Slug: p.Slug}
					}
				}
			}
			links = append(links, link)
		}
	}
	return links, nil
}

func (m *memStore) ReplaceCategoryLinks(ctx context.Context, productID string, links []domain.ProductCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[productID] = append([]domain.ProductCategory(nil), links...)
	return nil
}

func (m *memStore) ListTags(ctx context.Context, productID string) ([]domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tags := []domain.Tag{}
	for _, id := range m.tags[productID] {
		if t, ok := m.tagCatalog[id]; ok {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

func (m *memStore) ReplaceTags(ctx context.Context, productID string, tagIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags[productID] = append([]string(nil), tagIDs...)
	return nil
}

func (m *memStore) ListRatings(ctx context.Context, productIDs []string) ([]domain.ProductRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ratings []domain.ProductRating
	for _, r := range m.reviews {
		for _, id := range productIDs {
			if r.ProductID == id {
				ratings = append(ratings, domain.ProductRating{ProductID: id, Rating: r.Rating})
			}
		}
	}
	return ratings, nil
}

// --- reviews ---

func (m *memStore) ListReviews(ctx context.Context, params store.ListReviewsParams) ([]domain.Review, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []domain.Review
	for _, r := range m.reviews {
		if r.ProductID != params.ProductID {
			continue
		}
		if params.Rating != nil && r.Rating != *params.Rating {
			continue
		}
		matched = append(matched, *r)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if params.SortOrder == "ASC" {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	if params.Offset >= total {
		return []domain.Review{}, total, nil
	}
	end := params.Offset + params.Limit
	if end > total {
		end = total
	}
	return matched[params.Offset:end], total, nil
}

func (m *memStore) CreateReview(ctx context.Context, r *domain.Review) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	stored := *r
	stored.CreatedAt, stored.UpdatedAt = now, now
	m.reviews = append(m.reviews, &stored)
	created := stored
	return &created, nil
}

func (m *memStore) LockReview(ctx context.Context, id string) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.ID == id {
			found := *r
			return &found, nil
		}
	}
	return nil, store.ErrReviewNotFound
}

func (m *memStore) UpdateReview(ctx context.Context, r *domain.Review) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.reviews {
		if existing.ID == r.ID {
			stored := *r
			stored.UpdatedAt = m.tick()
			m.reviews[i] = &stored
			updated := stored
			return &updated, nil
		}
	}
	return nil, store.ErrReviewNotFound
}

func (m *memStore) DeleteReview(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.reviews {
		if r.ID == id {
			m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
			return nil
		}
	}
	return store.ErrReviewNotFound
}

// --- options ---

func (m *memStore) findGroup(id string) (string, int) {
	for productID, groups := range m.groups {
		for i, g := range groups {
			if g.ID == id {
				return productID, i
			}
		}
	}
	return "", -1
}

func (m *memStore) GetOptionGroup(ctx context.Context, id string) (*domain.ProductOptionGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	productID, i := m.findGroup(id)
	if i < 0 {
		return nil, store.ErrOptionGroupNotFound
	}
	g := m.groups[productID][i]
	return &g, nil
}

func (m *memStore) CreateOption(ctx context.Context, o *domain.ProductOption) (*domain.ProductOption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	productID, i := m.findGroup(o.OptionGroupID)
	if i < 0 {
		return nil, store.ErrOptionGroupNotFound
	}
	m.groups[productID][i].Options = append(m.groups[productID][i].Options, *o)
	created := *o
	return &created, nil
}

func (m *memStore) findOption(id string) (string, int, int) {
	for productID, groups := range m.groups {
		for gi, g := range groups {
			for oi, o := range g.Options {
				if o.ID == id {
					return productID, gi, oi
				}
			}
		}
	}
	return "", -1, -1
}

func (m *memStore) LockOption(ctx context.Context, id string) (*domain.ProductOption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	productID, gi, oi := m.findOption(id)
	if gi < 0 {
		return nil, store.ErrOptionNotFound
	}
	o := m.groups[productID][gi].Options[oi]
	return &o, nil
}

func (m *memStore) UpdateOption(ctx context.Context, o *domain.ProductOption) (*domain.ProductOption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	productID, gi, oi := m.findOption(o.ID)
	if gi < 0 {
		return nil, store.ErrOptionNotFound
	}
	m.groups[productID][gi].Options[oi] = *o
	updated := *o
	return &updated, nil
}

func (m *memStore) DeleteOption(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	productID, gi, oi := m.findOption(id)
	if gi < 0 {
		return store.ErrOptionNotFound
	}
	opts := m.groups[productID][gi].Options
	m.groups[productID][gi].Options = append(opts[:oi], opts[oi+1:]...)
	return nil
}

// newTestService wires a Service over a fresh memStore and an in-process
// cache store.
func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	mem := newMemStore()
	cacheStore, err := cache.NewMemoryStore(cache.MemoryConfig{
		Capacity:           1000,
		NumShards:          4,
		MaxTTL:             time.Hour,
		EvictionPercentage: 10,
	})
	require.NoError(t, err)

	logger := log.New(io.Discard, "", 0)
	gateway := cache.NewGateway(cacheStore, logger, time.Second)
	svc := NewService(mem, mem, mem, mem, gateway, DefaultTTLs, logger)

	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}
	return svc, mem
}
