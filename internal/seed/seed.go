// internal/seed/seed.go

// Package seed bootstraps the schema and loads a small sample catalog
// for development and demos. Seeding is idempotent: a catalog that
// already has books is left untouched.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"booklovers/internal/membership"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
	isbn TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	publisher TEXT NOT NULL DEFAULT '',
	year_of_publication TEXT NOT NULL DEFAULT '',
	image_url_s TEXT NOT NULL DEFAULT '',
	image_url_m TEXT NOT NULL DEFAULT '',
	image_url_l TEXT NOT NULL DEFAULT '',
	avg_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
	num_ratings INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	salt TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	age INTEGER,
	registration_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ratings (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	isbn TEXT NOT NULL REFERENCES books(isbn) ON DELETE CASCADE,
	rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 10),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, isbn)
);

CREATE TABLE IF NOT EXISTS user_library (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	isbn TEXT NOT NULL REFERENCES books(isbn) ON DELETE CASCADE,
	added_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, isbn)
);

CREATE INDEX IF NOT EXISTS idx_ratings_isbn ON ratings (isbn);
CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings (user_id);
CREATE INDEX IF NOT EXISTS idx_books_avg_rating ON books (avg_rating DESC);
`

type sampleBook struct {
	isbn, title, author, year, publisher string
}

var sampleBooks = []sampleBook{
	{"0316066524", "The Twilight Saga Collection", "Stephenie Meyer", "2009", "Little, Brown and Company"},
	{"0439023521", "The Hunger Games", "Suzanne Collins", "2010", "Scholastic Press"},
	{"0061120081", "To Kill a Mockingbird", "Harper Lee", "2006", "Harper Perennial Modern Classics"},
	{"0141439513", "Pride and Prejudice", "Jane Austen", "2002", "Penguin Books"},
	{"0743273567", "The Great Gatsby", "F. Scott Fitzgerald", "2004", "Scribner"},
	{"0451526538", "Romeo and Juliet", "William Shakespeare", "2004", "Signet Classics"},
	{"0142000671", "Of Mice and Men", "John Steinbeck", "2002", "Penguin Books"},
	{"0452284244", "1984", "George Orwell", "2003", "Plume"},
	{"0060850524", "Brave New World", "Aldous Huxley", "2006", "Harper Perennial"},
	{"0316769487", "The Catcher in the Rye", "J.D. Salinger", "2001", "Back Bay Books"},
	{"0547928227", "The Hobbit", "J.R.R. Tolkien", "2012", "Mariner Books"},
	{"0062315005", "The Alchemist", "Paulo Coelho", "2014", "HarperOne"},
}

type sampleUser struct {
	username, email, location string
	age                       int
}

var sampleUsers = []sampleUser{
	{"bookworm42", "bookworm42@example.com", "Portland, USA", 34},
	{"quietreader", "quietreader@example.com", "Leeds, UK", 27},
	{"pagina", "pagina@example.com", "Madrid, Spain", 45},
	{"hhikaru", "hhikaru@example.com", "Osaka, Japan", 22},
	{"margareader", "margareader@example.com", "Toronto, Canada", 61},
}

// Ratings reference users by sample index and books by ISBN.
type sampleRating struct {
	user  int
	isbn  string
	value int
}

var sampleRatings = []sampleRating{
	{0, "0061120081", 9}, {0, "0452284244", 8}, {0, "0316769487", 7},
	{1, "0061120081", 8}, {1, "0439023521", 9}, {1, "0547928227", 10},
	{2, "0141439513", 10}, {2, "0743273567", 7}, {2, "0061120081", 9},
	{3, "0439023521", 8}, {3, "0316066524", 6}, {3, "0062315005", 9},
	{4, "0141439513", 9}, {4, "0452284244", 9}, {4, "0060850524", 8},
	{4, "0061120081", 10},
}

// Run creates the schema and, when the catalog is empty, loads the
// sample data and provisions the admin account.
func Run(ctx context.Context, db *sql.DB, logger zerolog.Logger) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if count > 0 {
		logger.Info().Int("books", count).Msg("catalog already populated, skipping sample data")
		return ensureAdmin(ctx, db, logger)
	}

	logger.Info().Msg("loading sample data")
	if err := loadSamples(ctx, db); err != nil {
		return err
	}
	return ensureAdmin(ctx, db, logger)
}

func loadSamples(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, b := range sampleBooks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (isbn, title, author, year_of_publication, publisher)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (isbn) DO NOTHING
		`, b.isbn, b.title, b.author, b.year, b.publisher)
		if err != nil {
			return fmt.Errorf("insert book %s: %w", b.isbn, err)
		}
	}

	userIDs := make([]int, len(sampleUsers))
	for i, u := range sampleUsers {
		hash, salt, err := membership.HashPassword("changeme-" + u.username)
		if err != nil {
			return fmt.Errorf("hash sample password: %w", err)
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO users (username, email, password_hash, salt, location, age)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, u.username, u.email, hash, salt, u.location, u.age).Scan(&userIDs[i])
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.username, err)
		}
	}

	for _, r := range sampleRatings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ratings (user_id, isbn, rating) VALUES ($1, $2, $3)
		`, userIDs[r.user], r.isbn, r.value)
		if err != nil {
			return fmt.Errorf("insert rating: %w", err)
		}
	}

	// Bring the denormalized columns in line with the ratings just
	// inserted.
	_, err = tx.ExecContext(ctx, `
		UPDATE books SET
			avg_rating = COALESCE(r.avg, 0),
			num_ratings = COALESCE(r.cnt, 0)
		FROM (
			SELECT isbn, AVG(rating) AS avg, COUNT(*) AS cnt
			FROM ratings GROUP BY isbn
		) r
		WHERE books.isbn = r.isbn
	`)
	if err != nil {
		return fmt.Errorf("recompute book ratings: %w", err)
	}

	return tx.Commit()
}

// ensureAdmin creates the admin account when absent. The password comes
// from ADMIN_PASSWORD, with a throwaway default for local development.
func ensureAdmin(ctx context.Context, db *sql.DB, logger zerolog.Logger) error {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = 'admin')`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		logger.Warn().Msg("ADMIN_PASSWORD not set, using the default development password")
	}

	hash, salt, err := membership.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, salt, location, age)
		VALUES ('admin', 'admin@example.com', $1, $2, 'Admin Location', 30)
	`, hash, salt)
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}

	logger.Info().Msg("admin user created")
	return nil
}
