// internal/catalog/implementation.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ErrNotFound is returned when no book matches the requested ISBN.
var ErrNotFound = errors.New("book not found")

const defaultPerPage = 24

// service implements the Service interface.
type service struct {
	db *sql.DB
}

// NewService creates a new catalog service instance.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

const bookColumns = `isbn, title, author, publisher, year_of_publication,
	image_url_s, image_url_m, image_url_l, avg_rating, num_ratings, created_at`

// GetBook retrieves a single book by ISBN.
func (s *service) GetBook(ctx context.Context, isbn string) (*Book, error) {
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

// ListBooks returns one page of the catalog matching the filter.
func (s *service) ListBooks(ctx context.Context, filter Filter) (*Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = defaultPerPage
	}

	where, args := buildFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM books` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT `+bookColumns+` FROM books%s ORDER BY title LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	books, err := s.queryBooks(ctx, listQuery, args...)
	if err != nil {
		return nil, err
	}

	return &Page{
		Books:   books,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}, nil
}

func buildFilter(filter Filter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		clauses = append(clauses, fmt.Sprintf("(title ILIKE %s OR author ILIKE %s OR isbn ILIKE %s)", p, p, p))
	}
	if filter.Author != "" {
		clauses = append(clauses, "author ILIKE "+arg("%"+filter.Author+"%"))
	}
	if filter.Publisher != "" {
		clauses = append(clauses, "publisher ILIKE "+arg("%"+filter.Publisher+"%"))
	}
	if filter.Year != "" {
		clauses = append(clauses, "year_of_publication = "+arg(filter.Year))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// BooksByISBNs resolves a list of ISBNs to books, preserving the
// requested order. Unknown ISBNs are silently skipped.
func (s *service) BooksByISBNs(ctx context.Context, isbns []string) ([]*Book, error) {
	if len(isbns) == 0 {
		return nil, nil
	}

	books, err := s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books WHERE isbn = ANY($1)`, pq.Array(isbns))
	if err != nil {
		return nil, err
	}

	byISBN := make(map[string]*Book, len(books))
	for _, book := range books {
		byISBN[book.ISBN] = book
	}

	ordered := make([]*Book, 0, len(books))
	for _, isbn := range isbns {
		if book, ok := byISBN[isbn]; ok {
			ordered = append(ordered, book)
		}
	}
	return ordered, nil
}

// PopularBooks returns the best-rated books, best first.
func (s *service) PopularBooks(ctx context.Context, limit int) ([]*Book, error) {
	return s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY avg_rating DESC LIMIT $1`, limit)
}

// RecentBooks returns the most recently added books, newest first.
func (s *service) RecentBooks(ctx context.Context, limit int) ([]*Book, error) {
	return s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at DESC, isbn DESC LIMIT $1`, limit)
}

// Facets returns the distinct authors, publishers, and years used for
// the browse filters.
func (s *service) Facets(ctx context.Context) (*Facets, error) {
	authors, err := s.queryStrings(ctx, `SELECT DISTINCT author FROM books WHERE author <> '' ORDER BY author LIMIT 100`)
	if err != nil {
		return nil, err
	}
	publishers, err := s.queryStrings(ctx, `SELECT DISTINCT publisher FROM books WHERE publisher <> '' ORDER BY publisher LIMIT 100`)
	if err != nil {
		return nil, err
	}
	years, err := s.queryStrings(ctx, `SELECT DISTINCT year_of_publication FROM books WHERE year_of_publication <> '' ORDER BY year_of_publication DESC`)
	if err != nil {
		return nil, err
	}

	return &Facets{Authors: authors, Publishers: publishers, Years: years}, nil
}

// AddBook inserts a new catalog entry.
func (s *service) AddBook(ctx context.Context, book *Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (isbn, title, author, publisher, year_of_publication,
			image_url_s, image_url_m, image_url_l)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, book.ISBN, book.Title, book.Author, book.Publisher, book.YearOfPublication,
		book.ImageURLSmall, book.ImageURLMedium, book.ImageURLLarge)
	if err != nil {
		return fmt.Errorf("insert book %s: %w", book.ISBN, err)
	}
	return nil
}

func (s *service) queryBooks(ctx context.Context, query string, args ...interface{}) ([]*Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (s *service) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query facet: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan facet: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(row rowScanner) (*Book, error) {
	book := &Book{}
	err := row.Scan(
		&book.ISBN,
		&book.Title,
		&book.Author,
		&book.Publisher,
		&book.YearOfPublication,
		&book.ImageURLSmall,
		&book.ImageURLMedium,
		&book.ImageURLLarge,
		&book.AvgRating,
		&book.NumRatings,
		&book.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return book, nil
}
