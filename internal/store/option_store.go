package store

import (
	"context"
	"database/sql"
	"errors"

	"catalog-service/internal/domain"
)

const optionColumns = `id, option_group_id, name, additional_price, sku, stock, display_order`

func scanOption(row rowScanner) (*domain.ProductOption, error) {
	var o domain.ProductOption
	if err := row.Scan(&o.ID, &o.OptionGroupID, &o.Name, &o.AdditionalPrice, &o.SKU, &o.Stock, &o.DisplayOrder); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PostgresStore) GetOptionGroup(ctx context.Context, id string) (*domain.ProductOptionGroup, error) {
	query := `SELECT id, product_id, name, display_order FROM catalog.product_option_groups WHERE id = $1;`
	var g domain.ProductOptionGroup
	err := s.runner(ctx).QueryRowContext(ctx, query, id).Scan(&g.ID, &g.ProductID, &g.Name, &g.DisplayOrder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOptionGroupNotFound
		}
		return nil, queryErr("GetOptionGroup", err)
	}
	return &g, nil
}

func (s *PostgresStore) CreateOption(ctx context.Context, option *domain.ProductOption) (*domain.ProductOption, error) {
	query := `
		INSERT INTO catalog.product_options (` + optionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + optionColumns + `;
	`
	created, err := scanOption(s.runner(ctx).QueryRowContext(ctx, query,
		option.ID, option.OptionGroupID, option.Name, option.AdditionalPrice, option.SKU, option.Stock, option.DisplayOrder))
	if err != nil {
		return nil, queryErr("CreateOption", err)
	}
	return created, nil
}

func (s *PostgresStore) LockOption(ctx context.Context, id string) (*domain.ProductOption, error) {
	query := `SELECT ` + optionColumns + ` FROM catalog.product_options WHERE id = $1 FOR UPDATE;`
	o, err := scanOption(s.runner(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOptionNotFound
		}
		return nil, queryErr("LockOption", err)
	}
	return o, nil
}

func (s *PostgresStore) UpdateOption(ctx context.Context, option *domain.ProductOption) (*domain.ProductOption, error) {
	query := `
		UPDATE catalog.product_options
		SET name = $1, additional_price = $2, sku = $3, stock = $4, display_order = $5
		WHERE id = $6
		RETURNING ` + optionColumns + `;
	`
	updated, err := scanOption(s.runner(ctx).QueryRowContext(ctx, query,
		option.Name, option.AdditionalPrice, option.SKU, option.Stock, option.DisplayOrder, option.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOptionNotFound
		}
		return nil, queryErr("UpdateOption", err)
	}
	return updated, nil
}

func (s *PostgresStore) DeleteOption(ctx context.Context, id string) error {
	r := s.runner(ctx)
	if _, err := r.ExecContext(ctx, `UPDATE catalog.product_images SET option_id = NULL WHERE option_id = $1;`, id); err != nil {
		return queryErr("DeleteOption images", err)
	}
	result, err := r.ExecContext(ctx, `DELETE FROM catalog.product_options WHERE id = $1;`, id)
	if err != nil {
		return queryErr("DeleteOption", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return queryErr("DeleteOption rows affected", err)
	}
	if rowsAffected == 0 {
		return ErrOptionNotFound
	}
	return nil
}
