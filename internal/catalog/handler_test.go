// internal/catalog/handler_test.go
package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklovers/internal/membership"
)

type fakeService struct {
	getBook      func(isbn string) (*Book, error)
	listBooks    func(filter Filter) (*Page, error)
	booksByISBNs func(isbns []string) ([]*Book, error)
	popularBooks func(limit int) ([]*Book, error)
	recentBooks  func(limit int) ([]*Book, error)
	facets       func() (*Facets, error)
	addBook      func(book *Book) error
}

func (f *fakeService) GetBook(_ context.Context, isbn string) (*Book, error) {
	return f.getBook(isbn)
}

func (f *fakeService) ListBooks(_ context.Context, filter Filter) (*Page, error) {
	return f.listBooks(filter)
}

func (f *fakeService) BooksByISBNs(_ context.Context, isbns []string) ([]*Book, error) {
	return f.booksByISBNs(isbns)
}

func (f *fakeService) PopularBooks(_ context.Context, limit int) ([]*Book, error) {
	return f.popularBooks(limit)
}

func (f *fakeService) RecentBooks(_ context.Context, limit int) ([]*Book, error) {
	return f.recentBooks(limit)
}

func (f *fakeService) Facets(_ context.Context) (*Facets, error) {
	return f.facets()
}

func (f *fakeService) AddBook(_ context.Context, book *Book) error {
	return f.addBook(book)
}

type recommenderFunc func(ctx context.Context, userID int) []string

func (f recommenderFunc) RecommendForUser(ctx context.Context, userID int) []string {
	return f(ctx, userID)
}

func books(isbns ...string) []*Book {
	out := make([]*Book, len(isbns))
	for i, isbn := range isbns {
		out[i] = &Book{ISBN: isbn, Title: "Book " + isbn}
	}
	return out
}

type homePage struct {
	Popular     []*Book `json:"popular"`
	Recommended []*Book `json:"recommended"`
	Recent      []*Book `json:"recent"`
}

func TestHomeAnonymousFallsBackToPopular(t *testing.T) {
	service := &fakeService{
		popularBooks: func(limit int) ([]*Book, error) { return books("a", "b"), nil },
		recentBooks:  func(limit int) ([]*Book, error) { return books("c"), nil },
	}
	r := chi.NewRouter()
	NewHandler(service, nil).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got homePage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Popular, 2)
	assert.Len(t, got.Recommended, 2, "anonymous shelf falls back to popular books")
	assert.Len(t, got.Recent, 1)
}

func TestHomePersonalizedShelfForSession(t *testing.T) {
	sessions := membership.NewSessionStore()
	token := sessions.Create(7)

	service := &fakeService{
		popularBooks: func(limit int) ([]*Book, error) { return books("a"), nil },
		recentBooks:  func(limit int) ([]*Book, error) { return nil, nil },
		booksByISBNs: func(isbns []string) ([]*Book, error) {
			assert.Equal(t, []string{"x", "y"}, isbns)
			return books(isbns...), nil
		},
	}
	recommender := recommenderFunc(func(_ context.Context, userID int) []string {
		assert.Equal(t, 7, userID)
		return []string{"x", "y"}
	})

	r := chi.NewRouter()
	r.Use(sessions.WithUser)
	NewHandler(service, recommender).Routes(r)

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(&http.Cookie{Name: membership.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got homePage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Recommended, 2)
	assert.Equal(t, "x", got.Recommended[0].ISBN)
	assert.Equal(t, "y", got.Recommended[1].ISBN)
}

func TestHomeEmptyRecommendationsFallBack(t *testing.T) {
	sessions := membership.NewSessionStore()
	token := sessions.Create(7)

	service := &fakeService{
		popularBooks: func(limit int) ([]*Book, error) { return books("a"), nil },
		recentBooks:  func(limit int) ([]*Book, error) { return nil, nil },
	}
	recommender := recommenderFunc(func(context.Context, int) []string { return nil })

	r := chi.NewRouter()
	r.Use(sessions.WithUser)
	NewHandler(service, recommender).Routes(r)

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(&http.Cookie{Name: membership.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got homePage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Recommended, 1, "empty shelf degrades to popular books")
}

func TestListBooksPassesFilter(t *testing.T) {
	var gotFilter Filter
	service := &fakeService{
		listBooks: func(filter Filter) (*Page, error) {
			gotFilter = filter
			return &Page{Books: books("a"), Total: 1, Page: 2, PerPage: 20}, nil
		},
	}
	r := chi.NewRouter()
	NewHandler(service, nil).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books?search=gatsby&author=Fitzgerald&page=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gatsby", gotFilter.Search)
	assert.Equal(t, "Fitzgerald", gotFilter.Author)
	assert.Equal(t, 2, gotFilter.Page)
}

func TestGetBookNotFound(t *testing.T) {
	service := &fakeService{
		getBook: func(isbn string) (*Book, error) { return nil, ErrNotFound },
	}
	r := chi.NewRouter()
	NewHandler(service, nil).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBookFound(t *testing.T) {
	service := &fakeService{
		getBook: func(isbn string) (*Book, error) {
			return &Book{ISBN: isbn, Title: "The Great Gatsby", AvgRating: 8.2, NumRatings: 12}, nil
		},
	}
	r := chi.NewRouter()
	NewHandler(service, nil).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/0743273567", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "The Great Gatsby", got.Title)
	assert.Equal(t, 8.2, got.AvgRating)
}

func TestAddBookRequiresSession(t *testing.T) {
	sessions := membership.NewSessionStore()
	r := chi.NewRouter()
	r.Use(sessions.WithUser)
	NewHandler(&fakeService{}, nil).Routes(r)

	body := `{"isbn":"111","title":"New Book"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddBookCreatesEntry(t *testing.T) {
	sessions := membership.NewSessionStore()
	token := sessions.Create(1)

	var got *Book
	service := &fakeService{
		addBook: func(book *Book) error {
			got = book
			return nil
		},
	}
	r := chi.NewRouter()
	r.Use(sessions.WithUser)
	NewHandler(service, nil).Routes(r)

	body := `{"isbn":"111","title":"New Book","author":"Someone"}`
	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: membership.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "111", got.ISBN)
	assert.Equal(t, "Someone", got.Author)
}

func TestAddBookRejectsMissingFields(t *testing.T) {
	sessions := membership.NewSessionStore()
	token := sessions.Create(1)

	r := chi.NewRouter()
	r.Use(sessions.WithUser)
	NewHandler(&fakeService{}, nil).Routes(r)

	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":"No ISBN"}`))
	req.AddCookie(&http.Cookie{Name: membership.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFacets(t *testing.T) {
	service := &fakeService{
		facets: func() (*Facets, error) {
			return &Facets{Authors: []string{"Harper Lee"}, Years: []string{"2006"}}, nil
		},
	}
	r := chi.NewRouter()
	NewHandler(service, nil).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/facets", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got Facets
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"Harper Lee"}, got.Authors)
}
