package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes cart HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.list)      // GET    /api/v1/cart?user_id=…
		r.Post("/", h.add)      // POST   /api/v1/cart
		r.Delete("/", h.remove) // DELETE /api/v1/cart?user_id=…&cart_item_id=…  (omit cart_item_id to clear)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.List(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, lines)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ci, err := h.service.Add(r.Context(), req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, ci)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	cartItemID := r.URL.Query().Get("cart_item_id")

	if cartItemID == "" {
		if err := h.service.Clear(r.Context(), userID); err != nil {
			respond(w, statusFor(err), map[string]string{"error": err.Error()})
			return
		}
		respond(w, http.StatusOK, map[string]string{"status": "cart cleared"})
		return
	}

	if err := h.service.Remove(r.Context(), userID, cartItemID); err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "cart item removed"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrCartItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrItemUnavailable), errors.Is(err, ErrAlreadyInCart):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
