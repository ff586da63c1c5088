package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"catalog-service/internal/domain"

	"github.com/lib/pq"
)

const productColumns = `p.id, p.name, p.slug, p.short_description, p.full_description, p.seller_id, p.brand_id, p.status, p.created_at, p.updated_at`

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.ShortDescription, &p.FullDescription,
		&p.SellerID, &p.BrandID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO catalog.products AS p (id, name, slug, short_description, full_description, seller_id, brand_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + productColumns + `;
	`
	row := s.runner(ctx).QueryRowContext(ctx, query,
		product.ID, product.Name, product.Slug, product.ShortDescription, product.FullDescription,
		product.SellerID, product.BrandID, product.Status)

	created, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrProductSlugExists
		}
		return nil, queryErr("CreateProduct", err)
	}
	return created, nil
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM catalog.products p WHERE p.id = $1 AND p.status <> $2;`
	return s.getProduct(ctx, "GetProductByID", query, id, domain.ProductStatusDeleted)
}

// GetProductBySlug looks at every status, deleted rows included, since the
// slug stays reserved after a soft delete.
func (s *PostgresStore) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM catalog.products p WHERE p.slug = $1;`
	return s.getProduct(ctx, "GetProductBySlug", query, slug)
}

// LockProduct reads a non-deleted product and holds a row lock on it until the
// surrounding transaction ends.
func (s *PostgresStore) LockProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM catalog.products p WHERE p.id = $1 AND p.status <> $2 FOR UPDATE;`
	return s.getProduct(ctx, "LockProduct", query, id, domain.ProductStatusDeleted)
}

func (s *PostgresStore) getProduct(ctx context.Context, op, query string, args ...any) (*domain.Product, error) {
	p, err := scanProduct(s.runner(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, queryErr(op, err)
	}
	return p, nil
}

// ListProducts returns one page of products together with the total number
// of products matching the same filters.
func (s *PostgresStore) ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, int, error) {
	var queryArgs []any
	var whereClauses []string
	argID := 1

	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.status = $%d", argID))
		queryArgs = append(queryArgs, *params.Status)
		argID++
	} else {
		whereClauses = append(whereClauses, fmt.Sprintf("p.status <> $%d", argID))
		queryArgs = append(queryArgs, domain.ProductStatusDeleted)
		argID++
	}
	if params.SearchQuery != nil && strings.TrimSpace(*params.SearchQuery) != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("p.name ILIKE $%d", argID))
		queryArgs = append(queryArgs, "%"+escapeLike(strings.TrimSpace(*params.SearchQuery))+"%")
		argID++
	}
	if params.BrandID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.brand_id = $%d", argID))
		queryArgs = append(queryArgs, *params.BrandID)
		argID++
	}
	if params.SellerID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("p.seller_id = $%d", argID))
		queryArgs = append(queryArgs, *params.SellerID)
		argID++
	}
	if len(params.CategoryIDs) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM catalog.product_categories pc WHERE pc.product_id = p.id AND pc.category_id = ANY($%d))", argID))
		queryArgs = append(queryArgs, pq.Array(params.CategoryIDs))
		argID++
	}
	if params.MinPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM catalog.product_prices pp WHERE pp.product_id = p.id AND COALESCE(pp.sale_price, pp.base_price) >= $%d)", argID))
		queryArgs = append(queryArgs, *params.MinPrice)
		argID++
	}
	if params.MaxPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM catalog.product_prices pp WHERE pp.product_id = p.id AND COALESCE(pp.sale_price, pp.base_price) <= $%d)", argID))
		queryArgs = append(queryArgs, *params.MaxPrice)
		argID++
	}

	whereCondition := " WHERE " + strings.Join(whereClauses, " AND ")

	countQuery := "SELECT COUNT(*) FROM catalog.products p" + whereCondition
	var totalCount int
	if err := s.runner(ctx).QueryRowContext(ctx, countQuery, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, queryErr("ListProducts count", err)
	}
	if totalCount == 0 {
		return []domain.Product{}, 0, nil
	}

	dataQuery := fmt.Sprintf(`
		SELECT %s, b.name, sl.name
		FROM catalog.products p
		LEFT JOIN catalog.brands b ON b.id = p.brand_id
		LEFT JOIN catalog.sellers sl ON sl.id = p.seller_id
		%s
		ORDER BY p.created_at %s, p.id ASC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereCondition, sortOrder(params.SortOrder), argID, argID+1)
	finalQueryArgs := append(queryArgs, params.Limit, params.Offset)

	rows, err := s.runner(ctx).QueryContext(ctx, dataQuery, finalQueryArgs...)
	if err != nil {
		return nil, 0, queryErr("ListProducts", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, params.Limit)
	for rows.Next() {
		var p domain.Product
		var brandName, sellerName sql.NullString
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.ShortDescription, &p.FullDescription,
			&p.SellerID, &p.BrandID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
			&brandName, &sellerName,
		); err != nil {
			return nil, 0, queryErr("ListProducts scan", err)
		}
		if p.BrandID != nil && brandName.Valid {
			p.Brand = &domain.Brand{ID: *p.BrandID, Name: brandName.String}
		}
		if p.SellerID != nil && sellerName.Valid {
			p.Seller = &domain.Seller{ID: *p.SellerID, Name: sellerName.String}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, queryErr("ListProducts iteration", err)
	}
	return products, totalCount, nil
}

// ListProductsBySlugSuffix returns non-deleted products whose slug ends with
// suffix, other than the product owning excludeSlug.
func (s *PostgresStore) ListProductsBySlugSuffix(ctx context.Context, suffix, excludeSlug string) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM catalog.products p
		WHERE p.status <> $1 AND p.slug LIKE $2 AND p.slug <> $3
		ORDER BY p.created_at DESC;
	`
	rows, err := s.runner(ctx).QueryContext(ctx, query, domain.ProductStatusDeleted, "%"+escapeLike(suffix), excludeSlug)
	if err != nil {
		return nil, queryErr("ListProductsBySlugSuffix", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, queryErr("ListProductsBySlugSuffix scan", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("ListProductsBySlugSuffix iteration", err)
	}
	return products, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE catalog.products AS p
		SET name = $1, slug = $2, short_description = $3, full_description = $4,
			seller_id = $5, brand_id = $6, status = $7, updated_at = CURRENT_TIMESTAMP
		WHERE p.id = $8
		RETURNING ` + productColumns + `;
	`
	row := s.runner(ctx).QueryRowContext(ctx, query,
		product.Name, product.Slug, product.ShortDescription, product.FullDescription,
		product.SellerID, product.BrandID, product.Status, product.ID)

	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrProductSlugExists
		}
		return nil, queryErr("UpdateProduct", err)
	}
	return updated, nil
}

func (s *PostgresStore) SetProductStatus(ctx context.Context, id string, status domain.ProductStatus) error {
	query := `UPDATE catalog.products SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2;`
	result, err := s.runner(ctx).ExecContext(ctx, query, status, id)
	if err != nil {
		return queryErr("SetProductStatus", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return queryErr("SetProductStatus rows affected", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct removes the product row and every row that depends on it.
// Run it inside a unit of work so a failure halfway leaves nothing removed.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	r := s.runner(ctx)
	dependents := []struct{ op, query string }{
		{"DeleteProduct options", `DELETE FROM catalog.product_options WHERE option_group_id IN (SELECT id FROM catalog.product_option_groups WHERE product_id = $1);`},
		{"DeleteProduct images", `DELETE FROM catalog.product_images WHERE product_id = $1;`},
		{"DeleteProduct option groups", `DELETE FROM catalog.product_option_groups WHERE product_id = $1;`},
		{"DeleteProduct tags", `DELETE FROM catalog.product_tags WHERE product_id = $1;`},
		{"DeleteProduct categories", `DELETE FROM catalog.product_categories WHERE product_id = $1;`},
		{"DeleteProduct prices", `DELETE FROM catalog.product_prices WHERE product_id = $1;`},
		{"DeleteProduct details", `DELETE FROM catalog.product_details WHERE product_id = $1;`},
		{"DeleteProduct reviews", `DELETE FROM catalog.reviews WHERE product_id = $1;`},
	}
	for _, d := range dependents {
		if _, err := r.ExecContext(ctx, d.query, id); err != nil {
			return queryErr(d.op, err)
		}
	}

	result, err := r.ExecContext(ctx, `DELETE FROM catalog.products WHERE id = $1;`, id)
	if err != nil {
		return queryErr("DeleteProduct", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return queryErr("DeleteProduct rows affected", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *PostgresStore) GetSeller(ctx context.Context, id string) (*domain.Seller, error) {
	query := `
		SELECT id, name, description, logo_url, rating, contact_email, contact_phone, created_at
		FROM catalog.sellers WHERE id = $1;
	`
	var sl domain.Seller
	err := s.runner(ctx).QueryRowContext(ctx, query, id).Scan(
		&sl.ID, &sl.Name, &sl.Description, &sl.LogoURL, &sl.Rating, &sl.ContactEmail, &sl.ContactPhone, &sl.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, queryErr("GetSeller", err)
	}
	return &sl, nil
}

func (s *PostgresStore) GetBrand(ctx context.Context, id string) (*domain.Brand, error) {
	query := `SELECT id, name, slug, description, logo_url, website FROM catalog.brands WHERE id = $1;`
	var b domain.Brand
	err := s.runner(ctx).QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Name, &b.Slug, &b.Description, &b.LogoURL, &b.Website)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, queryErr("GetBrand", err)
	}
	return &b, nil
}
