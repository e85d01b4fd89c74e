// internal/recommend/handler.go
package recommend

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Routes mounts the recommendation endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/users/{id}/recommendations", h.handleRecommendations)
	r.Get("/books/{isbn}/similar", h.handleSimilarBooks)
	r.Get("/recommendations/status", h.handleStatus)
}

// handleStatus reports whether the trained model is active or the
// engine is running on its fallbacks.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		ModelLoaded bool `json:"model_loaded"`
	}{ModelLoaded: h.engine.ModelLoaded()})
}

func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	isbns := h.engine.RecommendForUser(r.Context(), userID)
	writeISBNs(w, isbns)
}

func (h *Handler) handleSimilarBooks(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")
	if isbn == "" {
		http.Error(w, "missing ISBN", http.StatusBadRequest)
		return
	}

	isbns := h.engine.SimilarBooks(r.Context(), isbn)
	writeISBNs(w, isbns)
}

func writeISBNs(w http.ResponseWriter, isbns []string) {
	if isbns == nil {
		isbns = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		ISBNs []string `json:"isbns"`
	}{ISBNs: isbns})
}
