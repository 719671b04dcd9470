package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/georgemunganga/hobex-pos/internal/modules/terminal"
	"github.com/go-chi/chi/v5"
)

// Handler exposes terminal payment HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/terminals/{id}/payments", func(r chi.Router) {
		r.Post("/", h.payment)                           // POST /api/v1/terminals/{id}/payments
		r.Get("/", h.list)                               // GET  /api/v1/terminals/{id}/payments
		r.Get("/{transaction_id}", h.get)                // GET  /api/v1/terminals/{id}/payments/{transaction_id}
		r.Post("/{transaction_id}/status", h.status)     // POST /api/v1/terminals/{id}/payments/{transaction_id}/status
		r.Post("/{transaction_id}/reversal", h.reversal) // POST /api/v1/terminals/{id}/payments/{transaction_id}/reversal
	})
}

func (h *Handler) payment(w http.ResponseWriter, r *http.Request) {
	var data PaymentData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	env, err := h.service.PaymentRequest(r.Context(), chi.URLParam(r, "id"), data)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, env)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.ListTransactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, txs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.GetTransaction(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "transaction_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, t)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	env, err := h.service.StatusRequest(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "transaction_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, env)
}

func (h *Handler) reversal(w http.ResponseWriter, r *http.Request) {
	env, err := h.service.ReversalRequest(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "transaction_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, env)
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidPayment):
		code = http.StatusBadRequest
	case errors.Is(err, terminal.ErrNotFound), errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrDuplicateTransaction):
		code = http.StatusConflict
	case errors.Is(err, terminal.ErrNotHobex):
		code = http.StatusUnprocessableEntity
	}
	respond(w, code, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
