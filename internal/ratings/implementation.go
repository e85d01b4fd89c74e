// internal/ratings/implementation.go
package ratings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrBookNotFound is returned when rating an unknown ISBN.
	ErrBookNotFound = errors.New("book not found")
	// ErrNotRated is returned when the user has not rated the book.
	ErrNotRated = errors.New("rating not found")
)

// service implements the Service interface.
type service struct {
	db          *sql.DB
	invalidator Invalidator
}

// NewService creates a new ratings service instance. invalidator may be
// nil when no recommendation caches need flushing.
func NewService(db *sql.DB, invalidator Invalidator) Service {
	return &service{db: db, invalidator: invalidator}
}

// RateBook upserts the rating and recomputes the book's average inside
// one transaction, keeping avg_rating/num_ratings consistent with the
// ratings table at all times.
func (s *service) RateBook(ctx context.Context, userID int, isbn string, value int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`, isbn).Scan(&exists); err != nil {
		return fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return ErrBookNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ratings (user_id, isbn, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, isbn)
		DO UPDATE SET rating = EXCLUDED.rating, created_at = NOW()
	`, userID, isbn, value)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE books SET
			avg_rating = (SELECT AVG(rating) FROM ratings WHERE isbn = $1),
			num_ratings = (SELECT COUNT(*) FROM ratings WHERE isbn = $1)
		WHERE isbn = $1
	`, isbn)
	if err != nil {
		return fmt.Errorf("recompute book rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rating: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateUser(userID)
		s.invalidator.InvalidateBook(isbn)
	}
	return nil
}

// ListForBook returns the most recent ratings for a book.
func (s *service) ListForBook(ctx context.Context, isbn string, limit int) ([]*Rating, error) {
	return s.queryRatings(ctx, `
		SELECT id, user_id, isbn, rating, created_at FROM ratings
		WHERE isbn = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, isbn, limit)
}

// ListForUser returns all of a user's ratings, newest first.
func (s *service) ListForUser(ctx context.Context, userID int) ([]*Rating, error) {
	return s.queryRatings(ctx, `
		SELECT id, user_id, isbn, rating, created_at FROM ratings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

// GetUserRating returns the user's rating for one book.
func (s *service) GetUserRating(ctx context.Context, userID int, isbn string) (*Rating, error) {
	rating := &Rating{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, isbn, rating, created_at FROM ratings
		WHERE user_id = $1 AND isbn = $2
	`, userID, isbn).Scan(&rating.ID, &rating.UserID, &rating.ISBN, &rating.Value, &rating.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotRated
	}
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return rating, nil
}

func (s *service) queryRatings(ctx context.Context, query string, args ...interface{}) ([]*Rating, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var result []*Rating
	for rows.Next() {
		rating := &Rating{}
		if err := rows.Scan(&rating.ID, &rating.UserID, &rating.ISBN, &rating.Value, &rating.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		result = append(result, rating)
	}
	return result, rows.Err()
}
