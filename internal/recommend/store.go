// internal/recommend/store.go
package recommend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNotFound is returned by point lookups when no row matches. The
// engine treats it as a normal branch, not a failure.
var ErrNotFound = errors.New("not found")

// Store is the read-only view of the catalog the engine depends on. The
// engine never mutates catalog data.
type Store interface {
	GetUser(ctx context.Context, id int) (*User, error)
	GetBook(ctx context.Context, isbn string) (*Book, error)
	AllBooks(ctx context.Context) ([]Book, error)
	UserRatings(ctx context.Context, userID int) ([]Rating, error)

	// RatingsNear returns other users' ratings of isbn whose value lies
	// within ±1 of value, excluding excludeUserID.
	RatingsNear(ctx context.Context, isbn string, value, excludeUserID int) ([]Rating, error)

	// HighRatingsByUsers returns ratings of at least minValue made by any
	// of userIDs on books outside excludeISBNs.
	HighRatingsByUsers(ctx context.Context, userIDs []int, excludeISBNs []string, minValue int) ([]Rating, error)

	// PopularBooks returns books with at least minRatings ratings, best
	// average first.
	PopularBooks(ctx context.Context, minRatings, limit int) ([]Book, error)

	BooksByAuthor(ctx context.Context, author string, excludeISBNs []string, limit int) ([]Book, error)
	BooksByPublisher(ctx context.Context, publisher string, excludeISBNs []string, limit int) ([]Book, error)
	BooksByYear(ctx context.Context, year string, excludeISBNs []string, limit int) ([]Book, error)
	TopRatedBooks(ctx context.Context, excludeISBNs []string, limit int) ([]Book, error)
}

// PostgresStore implements Store against the shared catalog schema.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const bookColumns = "isbn, title, author, publisher, year_of_publication, avg_rating, num_ratings"

func (s *PostgresStore) GetUser(ctx context.Context, id int) (*User, error) {
	var user User
	var age sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT id, age FROM users WHERE id = $1`, id).Scan(&user.ID, &age)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	user.Age = int(age.Int64)
	return &user, nil
}

func (s *PostgresStore) GetBook(ctx context.Context, isbn string) (*Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE isbn = $1`, isbn)
	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %s: %w", isbn, err)
	}
	return book, nil
}

func (s *PostgresStore) AllBooks(ctx context.Context) ([]Book, error) {
	return s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY isbn`)
}

func (s *PostgresStore) UserRatings(ctx context.Context, userID int) ([]Rating, error) {
	return s.queryRatings(ctx, `
		SELECT user_id, isbn, rating FROM ratings
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
}

func (s *PostgresStore) RatingsNear(ctx context.Context, isbn string, value, excludeUserID int) ([]Rating, error) {
	return s.queryRatings(ctx, `
		SELECT user_id, isbn, rating FROM ratings
		WHERE isbn = $1 AND user_id <> $2 AND rating BETWEEN $3 AND $4
	`, isbn, excludeUserID, value-1, value+1)
}

func (s *PostgresStore) HighRatingsByUsers(ctx context.Context, userIDs []int, excludeISBNs []string, minValue int) ([]Rating, error) {
	return s.queryRatings(ctx, `
		SELECT user_id, isbn, rating FROM ratings
		WHERE user_id = ANY($1) AND rating >= $2 AND NOT (isbn = ANY($3))
		ORDER BY created_at
	`, pq.Array(userIDs), minValue, pq.Array(excludeISBNs))
}

func (s *PostgresStore) PopularBooks(ctx context.Context, minRatings, limit int) ([]Book, error) {
	return s.queryBooks(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE num_ratings >= $1
		ORDER BY avg_rating DESC
		LIMIT $2
	`, minRatings, limit)
}

func (s *PostgresStore) BooksByAuthor(ctx context.Context, author string, excludeISBNs []string, limit int) ([]Book, error) {
	return s.queryBooks(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE author = $1 AND NOT (isbn = ANY($2))
		ORDER BY avg_rating DESC
		LIMIT $3
	`, author, pq.Array(excludeISBNs), limit)
}

func (s *PostgresStore) BooksByPublisher(ctx context.Context, publisher string, excludeISBNs []string, limit int) ([]Book, error) {
	return s.queryBooks(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE publisher = $1 AND NOT (isbn = ANY($2))
		ORDER BY avg_rating DESC
		LIMIT $3
	`, publisher, pq.Array(excludeISBNs), limit)
}

func (s *PostgresStore) BooksByYear(ctx context.Context, year string, excludeISBNs []string, limit int) ([]Book, error) {
	return s.queryBooks(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE year_of_publication = $1 AND NOT (isbn = ANY($2))
		ORDER BY avg_rating DESC
		LIMIT $3
	`, year, pq.Array(excludeISBNs), limit)
}

func (s *PostgresStore) TopRatedBooks(ctx context.Context, excludeISBNs []string, limit int) ([]Book, error) {
	return s.queryBooks(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE NOT (isbn = ANY($1))
		ORDER BY avg_rating DESC
		LIMIT $2
	`, pq.Array(excludeISBNs), limit)
}

func (s *PostgresStore) queryBooks(ctx context.Context, query string, args ...interface{}) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *book)
	}
	return books, rows.Err()
}

func (s *PostgresStore) queryRatings(ctx context.Context, query string, args ...interface{}) ([]Rating, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []Rating
	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.UserID, &r.ISBN, &r.Value); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(row rowScanner) (*Book, error) {
	var book Book
	err := row.Scan(&book.ISBN, &book.Title, &book.Author, &book.Publisher, &book.Year, &book.AvgRating, &book.NumRatings)
	if err != nil {
		return nil, err
	}
	return &book, nil
}
