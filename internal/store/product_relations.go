package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"catalog-service/internal/domain"

	"github.com/lib/pq"
)

// --- Prices ---

const priceColumns = `id, product_id, base_price, sale_price, cost_price, currency, tax_rate`

func scanPrice(row rowScanner) (*domain.ProductPrice, error) {
	var pp domain.ProductPrice
	if err := row.Scan(&pp.ID, &pp.ProductID, &pp.BasePrice, &pp.SalePrice, &pp.CostPrice, &pp.Currency, &pp.TaxRate); err != nil {
		return nil, err
	}
	return &pp, nil
}

func (s *PostgresStore) ListPrices(ctx context.Context, productIDs []string) ([]domain.ProductPrice, error) {
	query := `SELECT ` + priceColumns + ` FROM catalog.product_prices WHERE product_id = ANY($1) ORDER BY id ASC;`
	rows, err := s.runner(ctx).QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, queryErr("ListPrices", err)
	}
	defer rows.Close()

	var prices []domain.ProductPrice
	for rows.Next() {
		pp, err := scanPrice(rows)
		if err != nil {
			return nil, queryErr("ListPrices scan", err)
		}
		prices = append(prices, *pp)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("ListPrices iteration", err)
	}
	return prices, nil
}

func (s *PostgresStore) LockPrice(ctx context.Context, productID string) (*domain.ProductPrice, error) {
	query := `SELECT ` + priceColumns + ` FROM catalog.product_prices WHERE product_id = $1 ORDER BY id ASC LIMIT 1 FOR UPDATE;`
	pp, err := scanPrice(s.runner(ctx).QueryRowContext(ctx, query, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, queryErr("LockPrice", err)
	}
	return pp, nil
}

// SavePrice inserts the price row or overwrites the row with the same id.
func (s *PostgresStore) SavePrice(ctx context.Context, price *domain.ProductPrice) error {
	query := `
		INSERT INTO catalog.product_prices (` + priceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET base_price = EXCLUDED.base_price, sale_price = EXCLUDED.sale_price, cost_price = EXCLUDED.cost_price,
			currency = EXCLUDED.currency, tax_rate = EXCLUDED.tax_rate;
	`
	_, err := s.runner(ctx).ExecContext(ctx, query,
		price.ID, price.ProductID, price.BasePrice, price.SalePrice, price.CostPrice, price.Currency, price.TaxRate)
	if err != nil {
		return queryErr("SavePrice", err)
	}
	return nil
}

// --- Details ---

const detailColumns = `id, product_id, weight, dimensions, materials, country_of_origin, warranty_info, care_instructions, additional_info`

func scanDetail(row rowScanner) (*domain.ProductDetail, error) {
	var d domain.ProductDetail
	var dimensions, additionalInfo []byte
	if err := row.Scan(
		&d.ID, &d.ProductID, &d.Weight, &dimensions, &d.Materials, &d.CountryOfOrigin,
		&d.WarrantyInfo, &d.CareInstructions, &additionalInfo,
	); err != nil {
		return nil, err
	}
	if len(dimensions) > 0 {
		d.Dimensions = json.RawMessage(dimensions)
	}
	if len(additionalInfo) > 0 {
		d.AdditionalInfo = json.RawMessage(additionalInfo)
	}
	return &d, nil
}

// jsonArg passes a jsonb value as text; lib/pq would send raw bytes as bytea.
func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func (s *PostgresStore) ListDetails(ctx context.Context, productID string) ([]domain.ProductDetail, error) {
	query := `SELECT ` + detailColumns + ` FROM catalog.product_details WHERE product_id = $1 ORDER BY id ASC;`
	rows, err := s.runner(ctx).QueryContext(ctx, query, productID)
	if err != nil {
		return nil, queryErr("ListDetails", err)
	}
	defer rows.Close()

	var details []domain.ProductDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, queryErr("ListDetails scan", err)
		}
		details = append(details, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("ListDetails iteration", err)
	}
	return details, nil
}

func (s *PostgresStore) LockDetail(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	query := `SELECT ` + detailColumns + ` FROM catalog.product_details WHERE product_id = $1 ORDER BY id ASC LIMIT 1 FOR UPDATE;`
	d, err := scanDetail(s.runner(ctx).QueryRowContext(ctx, query, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, queryErr("LockDetail", err)
	}
	return d, nil
}

// SaveDetail inserts the detail row or overwrites the row with the same id.
func (s *PostgresStore) SaveDetail(ctx context.Context, detail *domain.ProductDetail) error {
	query := `
		INSERT INTO catalog.product_details (` + detailColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET weight = EXCLUDED.weight, dimensions = EXCLUDED.dimensions, materials = EXCLUDED.materials,
			country_of_origin = EXCLUDED.country_of_origin, warranty_info = EXCLUDED.warranty_info,
			care_instructions = EXCLUDED.care_instructions, additional_info = EXCLUDED.additional_info;
	`
	_, err := s.runner(ctx).ExecContext(ctx, query,
		detail.ID, detail.ProductID, detail.Weight, jsonArg(detail.Dimensions), detail.Materials,
		detail.CountryOfOrigin, detail.WarrantyInfo, detail.CareInstructions, jsonArg(detail.AdditionalInfo))
	if err != nil {
		return queryErr("SaveDetail", err)
	}
	return nil
}

// --- Images ---

func (s *PostgresStore) ListImages(ctx context.Context, productIDs []string) ([]domain.ProductImage, error) {
	query := `
		SELECT id, product_id, url, alt_text, is_primary, display_order, option_id
		FROM catalog.product_images
		WHERE product_id = ANY($1)
		ORDER BY display_order ASC, id ASC;
	`
	rows, err := s.runner(ctx).QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, queryErr("ListImages", err)
	}
	defer rows.Close()

	var images []domain.ProductImage
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.AltText, &img.IsPrimary, &img.DisplayOrder, &img.OptionID); err != nil {
			return nil, queryErr("ListImages scan", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("ListImages iteration", err)
	}
	return images, nil
}

func (s *PostgresStore) AddImages(ctx context.Context, productID string, images []domain.ProductImage) error {
	query := `
		INSERT INTO catalog.product_images (id, product_id, url, alt_text, is_primary, display_order, option_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	r := s.runner(ctx)
	for _, img := range images {
		if _, err := r.ExecContext(ctx, query, img.ID, productID, img.URL, img.AltText, img.IsPrimary, img.DisplayOrder, img.OptionID); err != nil {
			return queryErr("AddImages", err)
		}
	}
	return nil
}

func (s *PostgresStore) ReplaceImages(ctx context.Context, productID string, images []domain.ProductImage) error {
	if _, err := s.runner(ctx).ExecContext(ctx, `DELETE FROM catalog.product_images WHERE product_id = $1;`, productID); err != nil {
		return queryErr("ReplaceImages delete", err)
	}
	return s.AddImages(ctx, productID, images)
}

// --- Option groups ---

// ListOptionGroups returns the groups of the given products in display order,
// each with its options in display order.
func (s *PostgresStore) ListOptionGroups(ctx context.Context, productIDs []string) ([]domain.ProductOptionGroup, error) {
	r := s.runner(ctx)
	groupQuery := `
		SELECT id, product_id, name, display_order
		FROM catalog.product_option_groups
		WHERE product_id = ANY($1)
		ORDER BY display_order ASC, id ASC;
	`
	rows, err := r.QueryContext(ctx, groupQuery, pq.Array(productIDs))
	if err != nil {
		return nil, queryErr("ListOptionGroups", err)
	}
	defer rows.Close()

	var groups []domain.ProductOptionGroup
	var groupIDs []string
	for rows.Next() {
		var g domain.ProductOptionGroup
		if err := rows.Scan(&g.ID, &g.ProductID, &g.Name, &g.DisplayOrder); err != nil {
			return nil, queryErr("ListOptionGroups scan", err)
		}
		g.Options = []domain.ProductOption{}
		groups = append(groups, g)
		groupIDs = append(groupIDs, g.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("ListOptionGroups iteration", err)
	}
	if len(groups) == 0 {
		return groups, nil
	}

	optionQuery := `
		SELECT ` + optionColumns + `
		FROM catalog.product_options
		WHERE option_group_id = ANY($1)
		ORDER BY display_order ASC, id ASC;
	`
	optionRows, err := r.QueryContext(ctx, optionQuery, pq.Array(groupIDs))
	if err != nil {
		return nil, queryErr("ListOptionGroups options", err)
	}
	defer optionRows.Close()

	index := make(map[string]int, len(groups))
	for i, g := range groups {
		index[g.ID] = i
	}
	for optionRows.Next() {
		o, err := scanOption(optionRows)
		if err != nil {
			return nil, queryErr("ListOptionGroups options scan", err)
		}
		if i, ok := index[o.OptionGroupID]; ok {
			groups[i].Options = append(groups[i].Options, *o)
		}
	}
	if err := optionRows.Err(); err != nil {
		return nil, queryErr("ListOptionGroups options iteration", err)
	}
	return groups, nil
}

// ReplaceOptionGroups deletes every option group of the product (options
// first) and inserts groups in their place. Images pointing at a removed
// option are kept and detached from it.
func (s *PostgresStore) ReplaceOptionGroups(ctx context.Context, productID string, groups []domain.ProductOptionGroup) error {
	r := s.runner(ctx)
	if _, err := r.ExecContext(ctx,
		`UPDATE catalog.product_images SET option_id = NULL WHERE product_id = $1 AND option_id IS NOT NULL;`,
		productID); err != nil {
		return queryErr("ReplaceOptionGroups detach images", err)
	}
	if _, err := r.ExecContext(ctx,
		`DELETE FROM catalog.product_options WHERE option_group_id IN (SELECT id FROM catalog.product_option_groups WHERE product_id = $1);`,
		productID); err != nil {
		return queryErr("ReplaceOptionGroups delete options", err)
	}
	if _, err := r.ExecContext(ctx, `DELETE FROM catalog.product_option_groups WHERE product_id = $1;`, productID); err != nil {
		return queryErr("ReplaceOptionGroups delete groups", err)
	}

	groupQuery := `INSERT INTO catalog.product_option_groups (id, product_id, name, display_order) VALUES ($1, $2, $3, $4);`
	optionQuery := `
		INSERT INTO catalog.product_options (id, option_group_id, name, additional_price, sku, stock, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, g := range groups {
		if _, err := r.ExecContext(ctx, groupQuery, g.ID, productID, g.Name, g.DisplayOrder); err != nil {
			return queryErr("ReplaceOptionGroups insert group", err)
		}
		for _, o := range g.Options {
			if _, err := r.ExecContext(ctx, optionQuery, o.ID, g.ID, o.Name, o.AdditionalPrice, o.SKU, o.Stock, o.DisplayOrder); err != nil {
				return queryErr("ReplaceOptionGroups insert option", err)
			}
		}
	}
	return nil
}

// --- Categories ---

func (s *PostgresStore) ListCategoryLinks(ctx context.Context, productID string) ([]domain.ProductCategoryLink, error) {
	query := `
		SELECT pc.product_id, c.id, c.name, c.slug, pc.is_primary, parent.id, parent.name, parent.slug
		FROM catalog.product_categories pc
		JOIN catalog.categories c ON c.id = pc.category_id
		LEFT JOIN catalog.categories parent ON parent.id = c.parent_id
		WHERE pc.product_id = $1
		ORDER BY pc.is_primary DESC, c.level ASC, c.name ASC;
	`
	rows, err := s.runner(ctx).QueryContext(ctx, query, productID)
	if err != nil {
		return nil, queryErr("ListCategoryLinks", err)
	}
	defer rows.Close()

	var links []domain.ProductCategoryLink
	for rows.Next() {
		var l domain.ProductCategoryLink
		var parentID, parentName, parentSlug sql.NullString
		if err := rows.Scan(&l.ProductID, &l.ID, &l.Name, &l.Slug, &l.IsPrimary, &parentID, &parentName, &parentSlug); err != nil {
			return nil, queryErr("ListCategoryLinks scan", err)
		}
		if parentID.Valid {
			l.Parent = &domain.CategoryRef{ID: parentID.String, Name: parentName.String, Slug: parentSlug.String}
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("ListCategoryLinks iteration", err)
	}
	return links, nil
}

func (s *PostgresStore) ReplaceCategoryLinks(ctx context.Context, productID string, links []domain.ProductCategory) error {
	r := s.runner(ctx)
	if _, err := r.ExecContext(ctx, `DELETE FROM catalog.product_categories WHERE product_id = $1;`, productID); err != nil {
		return queryErr("ReplaceCategoryLinks delete", err)
	}
	query := `INSERT INTO catalog.product_categories (id, product_id, category_id, is_primary) VALUES ($1, $2, $3, $4);`
	for _, l := range links {
		if _, err := r.ExecContext(ctx, query, l.ID, productID, l.CategoryID, l.IsPrimary); err != nil {
			return queryErr("ReplaceCategoryLinks insert", err)
		}
	}
	return nil
}

// --- Tags ---

func (s *PostgresStore) ListTags(ctx context.Context, productID string) ([]domain.Tag, error) {
	query := `
		SELECT t.id, t.name, t.slug
		FROM catalog.product_tags pt
		JOIN catalog.tags t ON t.id = pt.tag_id
		WHERE pt.product_id = $1
		ORDER BY t.name ASC;
	`
	rows, err := s.runner(ctx).QueryContext(ctx, query, productID)
	if err != nil {
		return nil, queryErr("ListTags", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, queryErr("ListTags scan", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("ListTags iteration", err)
	}
	return tags, nil
}

// ReplaceTags links the product to exactly tagIDs. The product_tags row ids
// are generated by the database.
func (s *PostgresStore) ReplaceTags(ctx context.Context, productID string, tagIDs []string) error {
	r := s.runner(ctx)
	if _, err := r.ExecContext(ctx, `DELETE FROM catalog.product_tags WHERE product_id = $1;`, productID); err != nil {
		return queryErr("ReplaceTags delete", err)
	}
	query := `INSERT INTO catalog.product_tags (product_id, tag_id) VALUES ($1, $2);`
	for _, tagID := range tagIDs {
		if _, err := r.ExecContext(ctx, query, productID, tagID); err != nil {
			return queryErr("ReplaceTags insert", err)
		}
	}
	return nil
}

// --- Ratings ---

func (s *PostgresStore) ListRatings(ctx context.Context, productIDs []string) ([]domain.ProductRating, error) {
	query := `SELECT product_id, rating FROM catalog.reviews WHERE product_id = ANY($1);`
	rows, err := s.runner(ctx).QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, queryErr("ListRatings", err)
	}
	defer rows.Close()

	var ratings []domain.ProductRating
	for rows.Next() {
		var pr domain.ProductRating
		if err := rows.Scan(&pr.ProductID, &pr.Rating); err != nil {
			return nil, queryErr("ListRatings scan", err)
		}
		ratings = append(ratings, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("ListRatings iteration", err)
	}
	return ratings, nil
}
