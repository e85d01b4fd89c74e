// internal/ratings/handler.go
package ratings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"booklovers/internal/membership"
)

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

// Routes mounts the rating endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.With(membership.RequireAuth).Post("/books/{isbn}/ratings", h.handleRateBook)
	r.Get("/books/{isbn}/ratings", h.handleBookRatings)
	r.Get("/users/{id}/ratings", h.handleUserRatings)
}

func (h *Handler) handleRateBook(w http.ResponseWriter, r *http.Request) {
	userID, _ := membership.UserFromContext(r.Context())
	isbn := chi.URLParam(r, "isbn")

	var req struct {
		Rating int `json:"rating" validate:"required,min=1,max=10"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "rating must be between 1 and 10", http.StatusBadRequest)
		return
	}

	if err := h.service.RateBook(r.Context(), userID, isbn, req.Rating); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBookRatings(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListForBook(r.Context(), chi.URLParam(r, "isbn"), 10)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRatings(w, list)
}

func (h *Handler) handleUserRatings(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	list, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRatings(w, list)
}

func writeRatings(w http.ResponseWriter, list []*Rating) {
	if list == nil {
		list = []*Rating{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}
