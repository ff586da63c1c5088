package domain

// Category is a row of the categories table. Parent references form a forest
// by convention; the schema does not prevent cycles.
type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
	Level       int     `json:"level"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// CategoryRef is the short form of a category used for parent links.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ProductCategoryLink is a category joined through product_categories,
// together with its direct parent when one exists.
type ProductCategoryLink struct {
	ProductID string       `json:"-"`
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	IsPrimary bool         `json:"is_primary"`
	Parent    *CategoryRef `json:"parent,omitempty"`
}
