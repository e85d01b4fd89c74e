// internal/library/handler_test.go
package library

import (
	"context"
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
	list   func(userID int) ([]*Entry, error)
	add    func(userID int, isbn string) error
	remove func(userID int, isbn string) error
}

func (f *fakeService) List(_ context.Context, userID int) ([]*Entry, error) {
	return f.list(userID)
}

func (f *fakeService) Add(_ context.Context, userID int, isbn string) error {
	return f.add(userID, isbn)
}

func (f *fakeService) Remove(_ context.Context, userID int, isbn string) error {
	return f.remove(userID, isbn)
}

func newTestRouter(service Service) (chi.Router, *http.Cookie) {
	sessions := membership.NewSessionStore()
	token := sessions.Create(1)

	r := chi.NewRouter()
	r.Use(sessions.WithUser)
	NewHandler(service).Routes(r)

	return r, &http.Cookie{Name: membership.SessionCookie, Value: token}
}

func TestLibraryRequiresSession(t *testing.T) {
	router, _ := newTestRouter(&fakeService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/library", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEmptyLibraryIsJSONArray(t *testing.T) {
	router, cookie := newTestRouter(&fakeService{
		list: func(int) ([]*Entry, error) { return nil, nil },
	})

	req := httptest.NewRequest(http.MethodGet, "/library", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestAddBookToLibrary(t *testing.T) {
	var gotUser int
	var gotISBN string
	router, cookie := newTestRouter(&fakeService{
		add: func(userID int, isbn string) error {
			gotUser, gotISBN = userID, isbn
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/library/0061120081", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, gotUser)
	assert.Equal(t, "0061120081", gotISBN)
}

func TestAddDuplicateConflicts(t *testing.T) {
	router, cookie := newTestRouter(&fakeService{
		add: func(int, string) error { return ErrAlreadyInLibrary },
	})

	req := httptest.NewRequest(http.MethodPost, "/library/0061120081", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAddUnknownBookNotFound(t *testing.T) {
	router, cookie := newTestRouter(&fakeService{
		add: func(int, string) error { return ErrBookNotFound },
	})

	req := httptest.NewRequest(http.MethodPost, "/library/nope", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveBookFromLibrary(t *testing.T) {
	router, cookie := newTestRouter(&fakeService{
		remove: func(int, string) error { return nil },
	})

	req := httptest.NewRequest(http.MethodDelete, "/library/0061120081", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRemoveAbsentBookNotFound(t *testing.T) {
	router, cookie := newTestRouter(&fakeService{
		remove: func(int, string) error { return ErrNotInLibrary },
	})

	req := httptest.NewRequest(http.MethodDelete, "/library/0061120081", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
