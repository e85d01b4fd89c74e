// internal/catalog/handler.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"booklovers/internal/membership"
)

// Recommender is the slice of the recommendation engine the catalog
// surface needs for the personalized shelf on the home page.
type Recommender interface {
	RecommendForUser(ctx context.Context, userID int) []string
}

type Handler struct {
	service     Service
	recommender Recommender
}

// NewHandler creates a catalog handler. recommender may be nil, in which
// case the home page simply has no personalized shelf.
func NewHandler(service Service, recommender Recommender) *Handler {
	return &Handler{service: service, recommender: recommender}
}

// Routes mounts the catalog endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/home", h.handleHome)
	r.Get("/books", h.handleListBooks)
	r.Get("/books/{isbn}", h.handleGetBook)
	r.Get("/books/facets", h.handleFacets)
	r.With(membership.RequireAuth).Post("/books", h.handleAddBook)
}

// handleHome mirrors the landing page: popular books, a personalized
// shelf when a session is present, and recent additions. A failing
// recommendation shelf degrades to top-rated books, never to an error.
func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	popular, err := h.service.PopularBooks(ctx, 12)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var recommended []*Book
	if userID, ok := membership.UserFromContext(ctx); ok && h.recommender != nil {
		isbns := h.recommender.RecommendForUser(ctx, userID)
		if len(isbns) > 8 {
			isbns = isbns[:8]
		}
		recommended, _ = h.service.BooksByISBNs(ctx, isbns)
	}
	if len(recommended) == 0 {
		recommended, _ = h.service.PopularBooks(ctx, 8)
	}

	recent, err := h.service.RecentBooks(ctx, 8)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Popular     []*Book `json:"popular"`
		Recommended []*Book `json:"recommended"`
		Recent      []*Book `json:"recent"`
	}{popular, recommended, recent})
}

func (h *Handler) handleListBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	result, err := h.service.ListBooks(r.Context(), Filter{
		Search:    q.Get("search"),
		Author:    q.Get("author"),
		Publisher: q.Get("publisher"),
		Year:      q.Get("year"),
		Page:      page,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.GetBook(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "book not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (h *Handler) handleFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.service.Facets(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, facets)
}

func (h *Handler) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ISBN              string `json:"isbn"`
		Title             string `json:"title"`
		Author            string `json:"author"`
		Publisher         string `json:"publisher"`
		YearOfPublication string `json:"year_of_publication"`
		ImageURLSmall     string `json:"image_url_s"`
		ImageURLMedium    string `json:"image_url_m"`
		ImageURLLarge     string `json:"image_url_l"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ISBN == "" || req.Title == "" {
		http.Error(w, "isbn and title are required", http.StatusBadRequest)
		return
	}

	book := &Book{
		ISBN:              req.ISBN,
		Title:             req.Title,
		Author:            req.Author,
		Publisher:         req.Publisher,
		YearOfPublication: req.YearOfPublication,
		ImageURLSmall:     req.ImageURLSmall,
		ImageURLMedium:    req.ImageURLMedium,
		ImageURLLarge:     req.ImageURLLarge,
	}
	if err := h.service.AddBook(r.Context(), book); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
