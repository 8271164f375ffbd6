package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes ledger reporting endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/ledger", func(r chi.Router) {
		r.Get("/sellers/{id}/transactions", h.sellerTransactions)
		r.Get("/sellers/{id}/summary", h.sellerSummary)
		r.Get("/stores/{id}/transactions", h.storeTransactions)
		r.Get("/stores/{id}/summary", h.storeSummary)
		r.Get("/orders/{id}/transactions", h.orderTransactions)
	})
}

func (h *Handler) sellerTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.SellerTransactions(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("status"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, txs)
}

func (h *Handler) sellerSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.SellerSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, s)
}

func (h *Handler) storeTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.StoreTransactions(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("status"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, txs)
}

func (h *Handler) storeSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.StoreSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, s)
}

func (h *Handler) orderTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.OrderTransactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, txs)
}

func statusFor(err error) int {
	if errors.Is(err, ErrSellerNotFound) || errors.Is(err, ErrStoreNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
