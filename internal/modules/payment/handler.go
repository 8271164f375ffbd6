package payment

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bloem-market/bloem-backend/internal/modules/order"
)

// Handler exposes payment HTTP endpoints. The unverified completion path is
// staff-only: it exists for cash and in-store terminal settlement, not as a
// public bypass of payment verification.
type Handler struct {
	service Service
	staff   func(http.Handler) http.Handler
}

func NewHandler(service Service, staff func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, staff: staff}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Post("/intent", h.createIntent)  // POST /api/v1/payments/intent
		r.Post("/confirm", h.confirm)      // POST /api/v1/payments/confirm
		r.Post("/webhook", h.webhook)      // POST /api/v1/payments/webhook
	})
	r.With(h.staff).Post("/api/v1/orders/{id}/complete", h.completeOrder)
}

func (h *Handler) createIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	resp, err := h.service.CreateIntent(r.Context(), req.OrderID)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, resp)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.Confirm(r.Context(), req.PaymentIntentID, req.OrderID)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"order": o})
}

// webhook funnels provider events into the same confirmation path the client
// redirect uses; both firing for one payment is expected and harmless.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	var event WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if event.Type != "payment_intent.succeeded" || event.Data.Object.ID == "" {
		respond(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	if _, err := h.service.Confirm(r.Context(), event.Data.Object.ID, ""); err != nil {
		log.Printf("webhook: confirm intent %s: %v", event.Data.Object.ID, err)
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "processed"})
}

func (h *Handler) completeOrder(w http.ResponseWriter, r *http.Request) {
	var req CompletePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.CompleteOrder(r.Context(), chi.URLParam(r, "id"), req.PaymentMethod)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"order": o})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrPaymentNotSucceeded):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrPaymentProvider):
		return http.StatusBadGateway
	default:
		return order.StatusFor(err)
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
