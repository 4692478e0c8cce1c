package model

// Category is a top level node of the seeded catalog taxonomy.
type Category struct {
	ID            int           `json:"id"`
	Slug          string        `json:"slug"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Subcategory belongs to exactly one Category.
type Subcategory struct {
	ID         int    `json:"id"`
	CategoryID int    `json:"category_id"`
	Slug       string `json:"slug"`
	Name       string `json:"name"`
}
