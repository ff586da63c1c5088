package domain

import "time"

// Review belongs to a product and optionally to a user. Rating is 1..5.
type Review struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	UserID           *string   `json:"user_id,omitempty"`
	Rating           int       `json:"rating"`
	Title            *string   `json:"title,omitempty"`
	Content          *string   `json:"content,omitempty"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	HelpfulVotes     int       `json:"helpful_votes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// User is set by queries that join the author profile.
	User *User `json:"user,omitempty"`
}

// ProductRating is a single review rating keyed by product, used by the
// listing aggregation.
type ProductRating struct {
	ProductID string
	Rating    int
}
