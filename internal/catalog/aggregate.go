package catalog

import (
	"sort"
	"strings"

	"catalog-service/internal/domain"

	"github.com/shopspring/decimal"
)

// relatedSlugDelimiter separates the words of a slug. The last word is the
// keyword related products must share.
const relatedSlugDelimiter = "-"

// relatedKeyword returns the part of slug after its last delimiter, or the
// whole slug when it has none.
func relatedKeyword(slug string) string {
	if i := strings.LastIndex(slug, relatedSlugDelimiter); i >= 0 {
		return slug[i+len(relatedSlugDelimiter):]
	}
	return slug
}

// firstPrice returns the first price row, or nil when there is none.
func firstPrice(prices []domain.ProductPrice) *domain.ProductPrice {
	if len(prices) == 0 {
		return nil
	}
	p := prices[0]
	return &p
}

// primaryImages keeps only images flagged primary, in their given order.
func primaryImages(images []domain.ProductImage) []ImageRef {
	refs := []ImageRef{}
	for _, img := range images {
		if img.IsPrimary {
			refs = append(refs, ImageRef{URL: img.URL, AltText: img.AltText})
		}
	}
	return refs
}

// summarizeRatings computes the mean and the per-star distribution of
// ratings. An empty input yields a zero summary.
func summarizeRatings(ratings []int) RatingSummary {
	var summary RatingSummary
	if len(ratings) == 0 {
		return summary
	}
	sum := 0
	for _, r := range ratings {
		sum += r
		summary.Distribution.add(r)
	}
	summary.Count = len(ratings)
	summary.Average = float64(sum) / float64(len(ratings))
	return summary
}

// discountPercentage returns floor((base - sale) / base * 100), or nil when
// there is no sale price or base is not positive.
func discountPercentage(base decimal.Decimal, sale decimal.NullDecimal) *int64 {
	if !sale.Valid || !base.IsPositive() {
		return nil
	}
	num := base.Sub(sale.Decimal).Mul(decimal.NewFromInt(100))
	q, r := num.QuoRem(base, 0)
	if r.IsNegative() {
		q = q.Sub(decimal.NewFromInt(1))
	}
	pct := q.IntPart()
	return &pct
}

// firstOptionInStock reports whether the first option of the first option
// group, both by display order, has stock left. A product without options is
// out of stock.
func firstOptionInStock(groups []domain.ProductOptionGroup) bool {
	if len(groups) == 0 {
		return false
	}
	first := groups[0]
	for _, g := range groups[1:] {
		if g.DisplayOrder < first.DisplayOrder {
			first = g
		}
	}
	if len(first.Options) == 0 {
		return false
	}
	opt := first.Options[0]
	for _, o := range first.Options[1:] {
		if o.DisplayOrder < opt.DisplayOrder {
			opt = o
		}
	}
	return opt.Stock > 0
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func partyRef(id, name string) *PartyRef {
	return &PartyRef{ID: id, Name: name}
}

// listInputs is the batch-loaded data a page of list items is built from.
type listInputs struct {
	prices    []domain.ProductPrice
	images    []domain.ProductImage
	ratings   []domain.ProductRating
	groups    []domain.ProductOptionGroup
	withStock bool
}

// buildListItems joins each product with its price, primary images, brand,
// seller and ratings. Product order is preserved.
func buildListItems(products []domain.Product, in listInputs) []ProductListItem {
	prices := make(map[string][]domain.ProductPrice)
	for _, p := range in.prices {
		prices[p.ProductID] = append(prices[p.ProductID], p)
	}
	images := make(map[string][]domain.ProductImage)
	for _, img := range in.images {
		images[img.ProductID] = append(images[img.ProductID], img)
	}
	ratings := make(map[string][]int)
	for _, r := range in.ratings {
		ratings[r.ProductID] = append(ratings[r.ProductID], r.Rating)
	}
	groups := make(map[string][]domain.ProductOptionGroup)
	for _, g := range in.groups {
		groups[g.ProductID] = append(groups[g.ProductID], g)
	}

	items := make([]ProductListItem, 0, len(products))
	for _, p := range products {
		item := ProductListItem{
			ID:               p.ID,
			Name:             p.Name,
			Slug:             p.Slug,
			ShortDescription: p.ShortDescription,
			PrimaryImage:     primaryImages(images[p.ID]),
			Status:           p.Status,
			CreatedAt:        p.CreatedAt,
		}
		if price := firstPrice(prices[p.ID]); price != nil {
			base := price.BasePrice
			item.BasePrice = &base
			item.SalePrice = decimalPtr(price.SalePrice)
			item.Currency = price.Currency
		}
		if p.Brand != nil {
			item.Brand = partyRef(p.Brand.ID, p.Brand.Name)
		}
		if p.Seller != nil {
			item.Seller = partyRef(p.Seller.ID, p.Seller.Name)
		}
		summary := summarizeRatings(ratings[p.ID])
		item.Rating = summary.Average
		item.ReviewCount = summary.Count
		if in.withStock {
			inStock := firstOptionInStock(groups[p.ID])
			item.InStock = &inStock
		}
		items = append(items, item)
	}
	return items
}

func buildPriceView(prices []domain.ProductPrice) *PriceView {
	price := firstPrice(prices)
	if price == nil {
		return nil
	}
	return &PriceView{
		BasePrice:          price.BasePrice,
		SalePrice:          decimalPtr(price.SalePrice),
		Currency:           price.Currency,
		TaxRate:            decimalPtr(price.TaxRate),
		DiscountPercentage: discountPercentage(price.BasePrice, price.SalePrice),
	}
}

func buildRelated(products []domain.Product, prices []domain.ProductPrice, images []domain.ProductImage) []RelatedProduct {
	priceByProduct := make(map[string][]domain.ProductPrice)
	for _, p := range prices {
		priceByProduct[p.ProductID] = append(priceByProduct[p.ProductID], p)
	}
	imagesByProduct := make(map[string][]domain.ProductImage)
	for _, img := range images {
		imagesByProduct[img.ProductID] = append(imagesByProduct[img.ProductID], img)
	}

	related := make([]RelatedProduct, 0, len(products))
	for _, p := range products {
		r := RelatedProduct{
			ID:               p.ID,
			Name:             p.Name,
			Slug:             p.Slug,
			ShortDescription: p.ShortDescription,
			PrimaryImage:     primaryImages(imagesByProduct[p.ID]),
		}
		if price := firstPrice(priceByProduct[p.ID]); price != nil {
			base := price.BasePrice
			r.BasePrice = &base
			r.SalePrice = decimalPtr(price.SalePrice)
			r.Currency = price.Currency
		}
		related = append(related, r)
	}
	return related
}

// buildReviewSummary summarizes the reviews of one page only.
func buildReviewSummary(reviews []domain.Review) ReviewSummary {
	ratings := make([]int, 0, len(reviews))
	for _, r := range reviews {
		ratings = append(ratings, r.Rating)
	}
	s := summarizeRatings(ratings)
	return ReviewSummary{AverageRating: s.Average, TotalCount: s.Count, Distribution: s.Distribution}
}

func productIDs(products []domain.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func sortGroups(groups []domain.ProductOptionGroup) {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].DisplayOrder < groups[j].DisplayOrder })
	for _, g := range groups {
		sort.SliceStable(g.Options, func(i, j int) bool { return g.Options[i].DisplayOrder < g.Options[j].DisplayOrder })
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
