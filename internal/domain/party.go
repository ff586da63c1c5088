package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Brand struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	LogoURL     *string `json:"logo_url,omitempty"`
	Website     *string `json:"website,omitempty"`
}

type Seller struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Description  *string             `json:"description,omitempty"`
	LogoURL      *string             `json:"logo_url,omitempty"`
	Rating       decimal.NullDecimal `json:"rating"`
	ContactEmail *string             `json:"contact_email,omitempty"`
	ContactPhone *string             `json:"contact_phone,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// User is the public profile of a review author.
type User struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}
