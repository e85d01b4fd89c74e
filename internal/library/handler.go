// internal/library/handler.go
package library

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"booklovers/internal/membership"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the personal-library endpoints. All of them require a
// session.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(membership.RequireAuth)
		r.Get("/library", h.handleList)
		r.Post("/library/{isbn}", h.handleAdd)
		r.Delete("/library/{isbn}", h.handleRemove)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := membership.UserFromContext(r.Context())

	entries, err := h.service.List(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	userID, _ := membership.UserFromContext(r.Context())

	err := h.service.Add(r.Context(), userID, chi.URLParam(r, "isbn"))
	switch {
	case errors.Is(err, ErrBookNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrAlreadyInLibrary):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusCreated)
	}
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	userID, _ := membership.UserFromContext(r.Context())

	err := h.service.Remove(r.Context(), userID, chi.URLParam(r, "isbn"))
	switch {
	case errors.Is(err, ErrNotInLibrary):
		http.Error(w, err.Error(), http.StatusNotFound)
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
