package store

import (
	"context"
	"database/sql"
	"errors"

	"catalog-service/internal/domain"
)

const categoryColumns = `id, name, slug, description, parent_id, level, image_url`

func scanCategory(row rowScanner) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.Level, &c.ImageURL); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		INSERT INTO catalog.categories (id, name, slug, description, parent_id, level, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + categoryColumns + `;
	`
	row := s.runner(ctx).QueryRowContext(ctx, query,
		category.ID, category.Name, category.Slug, category.Description, category.ParentID, category.Level, category.ImageURL)

	created, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCategorySlugExists
		}
		return nil, queryErr("CreateCategory", err)
	}
	return created, nil
}

func (s *PostgresStore) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM catalog.categories WHERE id = $1;`
	c, err := scanCategory(s.runner(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, queryErr("GetCategoryByID", err)
	}
	return c, nil
}

func (s *PostgresStore) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM catalog.categories WHERE slug = $1;`
	c, err := scanCategory(s.runner(ctx).QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, queryErr("GetCategoryBySlug", err)
	}
	return c, nil
}

func (s *PostgresStore) GetCategoryParent(ctx context.Context, id string) (*domain.CategoryRef, error) {
	query := `
		SELECT p.id, p.name, p.slug
		FROM catalog.categories c
		JOIN catalog.categories p ON p.id = c.parent_id
		WHERE c.id = $1;
	`
	var parent domain.CategoryRef
	err := s.runner(ctx).QueryRowContext(ctx, query, id).Scan(&parent.ID, &parent.Name, &parent.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, queryErr("GetCategoryParent", err)
	}
	return &parent, nil
}

// ListCategories returns the categories ordered by level so parents precede
// their children.
func (s *PostgresStore) ListCategories(ctx context.Context, params ListCategoriesParams) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM catalog.categories`
	var args []any
	if params.Level != nil {
		query += ` WHERE level = $1`
		args = append(args, *params.Level)
	}
	query += ` ORDER BY level ASC, name ASC;`

	rows, err := s.runner(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryErr("ListCategories", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, queryErr("ListCategories scan", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("ListCategories iteration", err)
	}
	return categories, nil
}

func (s *PostgresStore) ListChildCategoryIDs(ctx context.Context, parentID string) ([]string, error) {
	query := `SELECT id FROM catalog.categories WHERE parent_id = $1 ORDER BY name ASC;`
	rows, err := s.runner(ctx).QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, queryErr("ListChildCategoryIDs", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, queryErr("ListChildCategoryIDs scan", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("ListChildCategoryIDs iteration", err)
	}
	return ids, nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		UPDATE catalog.categories
		SET name = $1, slug = $2, description = $3, parent_id = $4, level = $5, image_url = $6
		WHERE id = $7
		RETURNING ` + categoryColumns + `;
	`
	row := s.runner(ctx).QueryRowContext(ctx, query,
		category.Name, category.Slug, category.Description, category.ParentID, category.Level, category.ImageURL, category.ID)

	updated, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrCategorySlugExists
		}
		return nil, queryErr("UpdateCategory", err)
	}
	return updated, nil
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, id string) error {
	r := s.runner(ctx)
	if _, err := r.ExecContext(ctx, `DELETE FROM catalog.product_categories WHERE category_id = $1;`, id); err != nil {
		return queryErr("DeleteCategory links", err)
	}
	result, err := r.ExecContext(ctx, `DELETE FROM catalog.categories WHERE id = $1;`, id)
	if err != nil {
		return queryErr("DeleteCategory", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return queryErr("DeleteCategory rows affected", err)
	}
	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
