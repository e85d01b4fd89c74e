// internal/library/service.go
package library

import "context"

// Service defines the interface for the personal-library service.
type Service interface {
	Add(ctx context.Context, userID int, isbn string) error
	Remove(ctx context.Context, userID int, isbn string) error
	List(ctx context.Context, userID int) ([]*Entry, error)
}
