// internal/ratings/service.go
package ratings

import "context"

// Service defines the interface for the ratings service.
type Service interface {
	// RateBook inserts or updates the user's rating for a book and
	// recomputes the book's denormalized average and count.
	RateBook(ctx context.Context, userID int, isbn string, value int) error
	ListForBook(ctx context.Context, isbn string, limit int) ([]*Rating, error)
	ListForUser(ctx context.Context, userID int) ([]*Rating, error)
	GetUserRating(ctx context.Context, userID int, isbn string) (*Rating, error)
}

// Invalidator receives cache-invalidation hooks after a rating write.
// The recommendation engine implements it; a nil Invalidator disables
// the hooks, restoring cache-until-restart behavior.
type Invalidator interface {
	InvalidateUser(userID int)
	InvalidateBook(isbn string)
}
