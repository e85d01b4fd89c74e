// internal/catalog/service.go
package catalog

import "context"

// Service defines the interface for the catalog service.
type Service interface {
	GetBook(ctx context.Context, isbn string) (*Book, error)
	ListBooks(ctx context.Context, filter Filter) (*Page, error)
	BooksByISBNs(ctx context.Context, isbns []string) ([]*Book, error)
	PopularBooks(ctx context.Context, limit int) ([]*Book, error)
	RecentBooks(ctx context.Context, limit int) ([]*Book, error)
	Facets(ctx context.Context) (*Facets, error)
	AddBook(ctx context.Context, book *Book) error
}
