package catalog

import (
	"testing"
	"time"

	"catalog-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountPercentage(t *testing.T) {
	tests := []struct {
		name string
		base string
		sale *string
		want *int64
	}{
		{"floors a repeating fraction", "30000", ptr("25000"), ptr(int64(16))},
		{"exact percentage", "100", ptr("70"), ptr(int64(30))},
		{"two thirds off", "3", ptr("1"), ptr(int64(66))},
		{"fractional prices", "19.99", ptr("14.99"), ptr(int64(25))},
		{"no discount", "100", ptr("100"), ptr(int64(0))},
		{"sale above base floors down", "100", ptr("150.5"), ptr(int64(-51))},
		{"no sale price", "100", nil, nil},
		{"zero base", "0", ptr("0"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sale := decimal.NullDecimal{}
			if tt.sale != nil {
				sale = decimal.NewNullDecimal(decimal.RequireFromString(*tt.sale))
			}

			got := discountPercentage(decimal.RequireFromString(tt.base), sale)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummarizeRatings(t *testing.T) {
	empty := summarizeRatings(nil)
	assert.Equal(t, 0.0, empty.Average)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, 0, empty.Distribution.Total())

	s := summarizeRatings([]int{5, 4, 4, 1})
	assert.Equal(t, 3.5, s.Average)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, RatingDistribution{Five: 1, Four: 2, One: 1}, s.Distribution)
	assert.Equal(t, s.Count, s.Distribution.Total())
}

func TestRelatedKeyword(t *testing.T) {
	assert.Equal(t, "black", relatedKeyword("wireless-mouse-black"))
	assert.Equal(t, "mouse", relatedKeyword("mouse"))
	assert.Equal(t, "", relatedKeyword("trailing-"))
}

func TestFirstOptionInStock(t *testing.T) {
	groups := []domain.ProductOptionGroup{
		{ID: "size", DisplayOrder: 1, Options: []domain.ProductOption{{Name: "L", Stock: 0}}},
		{ID: "color", DisplayOrder: 0, Options: []domain.ProductOption{
			{Name: "Blue", Stock: 0, DisplayOrder: 1},
			{Name: "Red", Stock: 2, DisplayOrder: 0},
		}},
	}

	assert.True(t, firstOptionInStock(groups), "first option of the first group by display order decides")
	assert.False(t, firstOptionInStock(nil))
	assert.False(t, firstOptionInStock([]domain.ProductOptionGroup{{ID: "empty"}}))
}

func TestBuildListItems(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	products := []domain.Product{
		{ID: "p-1", Name: "Mouse", Slug: "mouse", Status: domain.ProductStatusSelling, CreatedAt: created,
			Brand: &domain.Brand{ID: "b-1", Name: "Logi"}},
		{ID: "p-2", Name: "Pad", Slug: "pad", Status: domain.ProductStatusSoldOut, CreatedAt: created},
	}
	in := listInputs{
		prices: []domain.ProductPrice{
			{ID: "price-1", ProductID: "p-1", BasePrice: decimal.NewFromInt(30000),
				SalePrice: decimal.NewNullDecimal(decimal.NewFromInt(25000)), Currency: "KRW"},
			{ID: "price-2", ProductID: "p-1", BasePrice: decimal.NewFromInt(1), Currency: "USD"},
		},
		images: []domain.ProductImage{
			{ProductID: "p-1", URL: "https://img/side.jpg"},
			{ProductID: "p-1", URL: "https://img/front.jpg", IsPrimary: true},
		},
		ratings: []domain.ProductRating{
			{ProductID: "p-1", Rating: 5},
			{ProductID: "p-1", Rating: 4},
		},
	}

	items := buildListItems(products, in)

	require.Len(t, items, 2)
	first := items[0]
	require.NotNil(t, first.BasePrice)
	assert.True(t, decimal.NewFromInt(30000).Equal(*first.BasePrice), "first price row wins")
	assert.Equal(t, "KRW", first.Currency)
	assert.Equal(t, []ImageRef{{URL: "https://img/front.jpg"}}, first.PrimaryImage)
	assert.Equal(t, 4.5, first.Rating)
	assert.Equal(t, 2, first.ReviewCount)
	assert.Equal(t, &PartyRef{ID: "b-1", Name: "Logi"}, first.Brand)
	assert.Nil(t, first.InStock)

	second := items[1]
	assert.Nil(t, second.BasePrice)
	assert.Equal(t, []ImageRef{}, second.PrimaryImage)
	assert.Equal(t, 0.0, second.Rating)
	assert.Equal(t, 0, second.ReviewCount)
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{TotalItems: 21, TotalPages: 3, CurrentPage: 2, PerPage: 10}, newPagination(21, 2, 10))
	assert.Equal(t, Pagination{TotalItems: 0, TotalPages: 0, CurrentPage: 1, PerPage: 10}, newPagination(0, 1, 10))
}

func TestPageWindow(t *testing.T) {
	page, limit, offset := pageWindow(0, 0)
	assert.Equal(t, []int{1, 10, 0}, []int{page, limit, offset})

	page, limit, offset = pageWindow(3, 500)
	assert.Equal(t, []int{3, 100, 200}, []int{page, limit, offset})
}
