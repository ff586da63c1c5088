package catalog

import (
	"context"

	"catalog-service/internal/domain"
	"catalog-service/internal/store"
)

// ReviewQuery selects one page of a product's reviews.
type ReviewQuery struct {
	Page   int    `validate:"omitempty,min=1"`
	Limit  int    `validate:"omitempty,min=1,max=100"`
	Sort   string `validate:"omitempty,oneof=ASC DESC asc desc"`
	Rating *int   `validate:"omitempty,min=1,max=5"`
}

type ReviewInput struct {
	Rating           int     `json:"rating" validate:"required,min=1,max=5"`
	Title            *string `json:"title" validate:"omitempty,max=200"`
	Content          *string `json:"content"`
	VerifiedPurchase bool    `json:"verified_purchase"`
}

// ReviewUpdateInput changes the non-nil fields of a review.
type ReviewUpdateInput struct {
	Rating       *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Title        *string `json:"title" validate:"omitempty,max=200"`
	Content      *string `json:"content"`
	HelpfulVotes *int    `json:"helpful_votes" validate:"omitempty,min=0"`
}

// ListReviews returns one page of reviews of a non-deleted product. The
// summary is computed over that page only.
func (s *Service) ListReviews(ctx context.Context, productID string, q ReviewQuery) (*ReviewPage, error) {
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}
	page, limit, offset := pageWindow(q.Page, q.Limit)

	reviews, total, err := s.reviews.ListReviews(ctx, store.ListReviewsParams{
		ProductID: productID,
		Rating:    q.Rating,
		SortOrder: normalizeSort(q.Sort),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, err
	}
	reviews = orEmpty(reviews)

	return &ReviewPage{
		Items:      reviews,
		Summary:    buildReviewSummary(reviews),
		Pagination: newPagination(total, page, limit),
	}, nil
}

// CreateReview stores a review of a non-deleted product. userID is nil for
// an anonymous review.
func (s *Service) CreateReview(ctx context.Context, productID string, userID *string, in ReviewInput) (*domain.Review, error) {
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviews.CreateReview(ctx, &domain.Review{
		ID:               s.newID(),
		ProductID:        productID,
		UserID:           userID,
		Rating:           in.Rating,
		Title:            in.Title,
		Content:          in.Content,
		VerifiedPurchase: in.VerifiedPurchase,
	})
}

// UpdateReview locks the review and applies in when userID owns it.
func (s *Service) UpdateReview(ctx context.Context, reviewID string, userID *string, in ReviewUpdateInput) (*domain.Review, error) {
	review, err := s.ownedReview(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}
	if in.Rating != nil {
		review.Rating = *in.Rating
	}
	if in.Title != nil {
		review.Title = in.Title
	}
	if in.Content != nil {
		review.Content = in.Content
	}
	if in.HelpfulVotes != nil {
		review.HelpfulVotes = *in.HelpfulVotes
	}
	return s.reviews.UpdateReview(ctx, review)
}

// DeleteReview removes the review when userID owns it.
func (s *Service) DeleteReview(ctx context.Context, reviewID string, userID *string) error {
	if _, err := s.ownedReview(ctx, reviewID, userID); err != nil {
		return err
	}
	return s.reviews.DeleteReview(ctx, reviewID)
}

// ownedReview locks a review and checks that userID wrote it. Anonymous
// reviews have no owner and cannot be changed.
func (s *Service) ownedReview(ctx context.Context, reviewID string, userID *string) (*domain.Review, error) {
	review, err := s.reviews.LockReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID == nil || userID == nil || *review.UserID != *userID {
		return nil, ErrReviewForbidden
	}
	return review, nil
}
