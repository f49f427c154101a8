package models

// Product is the catalog record served by the products backend.
type Product struct {
	ID          string   `json:"_id"`
	Slug        string   `json:"slug,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Images      []string `json:"images,omitempty"`
	CategoryID  string   `json:"categoryId,omitempty"`
	Active      bool     `json:"active"`
}

// PagedProducts is a page of catalog results.
type PagedProducts struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PerPage  int       `json:"perPage"`
}
