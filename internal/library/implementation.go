// internal/library/implementation.go
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrAlreadyInLibrary is returned when adding a book twice.
	ErrAlreadyInLibrary = errors.New("book already in library")
	// ErrNotInLibrary is returned when removing a book that is absent.
	ErrNotInLibrary = errors.New("book not in library")
	// ErrBookNotFound is returned when adding an unknown ISBN.
	ErrBookNotFound = errors.New("book not found")
)

// service implements the Service interface.
type service struct {
	db *sql.DB
}

// NewService creates a new library service instance.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// Add puts a book into the user's library.
func (s *service) Add(ctx context.Context, userID int, isbn string) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`, isbn).Scan(&exists); err != nil {
		return fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return ErrBookNotFound
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO user_library (user_id, isbn)
		VALUES ($1, $2)
		ON CONFLICT (user_id, isbn) DO NOTHING
	`, userID, isbn)
	if err != nil {
		return fmt.Errorf("add to library: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrAlreadyInLibrary
	}
	return nil
}

// Remove takes a book out of the user's library.
func (s *service) Remove(ctx context.Context, userID int, isbn string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM user_library WHERE user_id = $1 AND isbn = $2`, userID, isbn)
	if err != nil {
		return fmt.Errorf("remove from library: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotInLibrary
	}
	return nil
}

// List returns the user's library, newest additions first.
func (s *service) List(ctx context.Context, userID int) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, isbn, added_on FROM user_library
		WHERE user_id = $1
		ORDER BY added_on DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := &Entry{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.ISBN, &entry.AddedOn); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
