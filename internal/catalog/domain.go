// internal/catalog/domain.go
package catalog

import "time"

// Book is a catalog entry, keyed by ISBN. AvgRating and NumRatings are
// denormalized from the ratings table and recomputed by the ratings
// service on every rating write.
type Book struct {
	ISBN              string    `json:"isbn"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	Publisher         string    `json:"publisher,omitempty"`
	YearOfPublication string    `json:"year_of_publication,omitempty"`
	ImageURLSmall     string    `json:"image_url_s,omitempty"`
	ImageURLMedium    string    `json:"image_url_m,omitempty"`
	ImageURLLarge     string    `json:"image_url_l,omitempty"`
	AvgRating         float64   `json:"avg_rating"`
	NumRatings        int       `json:"num_ratings"`
	CreatedAt         time.Time `json:"created_at"`
}

// Filter narrows and pages a catalog listing. Search matches title,
// author, or ISBN as a substring; the other fields match their column.
type Filter struct {
	Search    string
	Author    string
	Publisher string
	Year      string
	Page      int
	PerPage   int
}

// Facets are the distinct filter values offered alongside a listing.
type Facets struct {
	Authors    []string `json:"authors"`
	Publishers []string `json:"publishers"`
	Years      []string `json:"years"`
}

// Page is one page of a listing plus the total row count for pagination.
type Page struct {
	Books   []*Book `json:"books"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
}
