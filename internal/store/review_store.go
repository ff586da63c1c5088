package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog-service/internal/domain"
)

const reviewColumns = `r.id, r.product_id, r.user_id, r.rating, r.title, r.content, r.verified_purchase, r.helpful_votes, r.created_at, r.updated_at`

func scanReview(row rowScanner) (*domain.Review, error) {
	var r domain.Review
	if err := row.Scan(
		&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Title, &r.Content,
		&r.VerifiedPurchase, &r.HelpfulVotes, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReviews returns one page of a product's reviews with their authors,
// and the number of reviews matching the same filters.
func (s *PostgresStore) ListReviews(ctx context.Context, params ListReviewsParams) ([]domain.Review, int, error) {
	where := ` WHERE r.product_id = $1`
	args := []any{params.ProductID}
	if params.Rating != nil {
		where += ` AND r.rating = $2`
		args = append(args, *params.Rating)
	}

	var totalCount int
	if err := s.runner(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog.reviews r`+where, args...).Scan(&totalCount); err != nil {
		return nil, 0, queryErr("ListReviews count", err)
	}
	if totalCount == 0 {
		return []domain.Review{}, 0, nil
	}

	query := fmt.Sprintf(`
		SELECT %s, u.id, u.name, u.avatar_url
		FROM catalog.reviews r
		LEFT JOIN catalog.users u ON u.id = r.user_id
		%s
		ORDER BY r.created_at %s, r.id ASC
		LIMIT $%d OFFSET $%d`,
		reviewColumns, where, sortOrder(params.SortOrder), len(args)+1, len(args)+2)
	rows, err := s.runner(ctx).QueryContext(ctx, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, queryErr("ListReviews", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0, params.Limit)
	for rows.Next() {
		var r domain.Review
		var userID, userName, avatarURL sql.NullString
		if err := rows.Scan(
			&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Title, &r.Content,
			&r.VerifiedPurchase, &r.HelpfulVotes, &r.CreatedAt, &r.UpdatedAt,
			&userID, &userName, &avatarURL,
		); err != nil {
			return nil, 0, queryErr("ListReviews scan", err)
		}
		if userID.Valid {
			r.User = &domain.User{ID: userID.String, Name: userName.String}
			if avatarURL.Valid {
				r.User.AvatarURL = &avatarURL.String
			}
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, queryErr("ListReviews iteration", err)
	}
	return reviews, totalCount, nil
}

func (s *PostgresStore) CreateReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	query := `
		INSERT INTO catalog.reviews AS r (id, product_id, user_id, rating, title, content, verified_purchase, helpful_votes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + reviewColumns + `;
	`
	created, err := scanReview(s.runner(ctx).QueryRowContext(ctx, query,
		review.ID, review.ProductID, review.UserID, review.Rating, review.Title, review.Content,
		review.VerifiedPurchase, review.HelpfulVotes))
	if err != nil {
		return nil, queryErr("CreateReview", err)
	}
	return created, nil
}

func (s *PostgresStore) LockReview(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM catalog.reviews r WHERE r.id = $1 FOR UPDATE;`
	r, err := scanReview(s.runner(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, queryErr("LockReview", err)
	}
	return r, nil
}

func (s *PostgresStore) UpdateReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	query := `
		UPDATE catalog.reviews AS r
		SET rating = $1, title = $2, content = $3, verified_purchase = $4, helpful_votes = $5, updated_at = CURRENT_TIMESTAMP
		WHERE r.id = $6
		RETURNING ` + reviewColumns + `;
	`
	updated, err := scanReview(s.runner(ctx).QueryRowContext(ctx, query,
		review.Rating, review.Title, review.Content, review.VerifiedPurchase, review.HelpfulVotes, review.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, queryErr("UpdateReview", err)
	}
	return updated, nil
}

func (s *PostgresStore) DeleteReview(ctx context.Context, id string) error {
	result, err := s.runner(ctx).ExecContext(ctx, `DELETE FROM catalog.reviews WHERE id = $1;`, id)
	if err != nil {
		return queryErr("DeleteReview", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return queryErr("DeleteReview rows affected", err)
	}
	if rowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
