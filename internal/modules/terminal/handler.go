package terminal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/georgemunganga/hobex-pos/internal/modules/hobex"
	"github.com/go-chi/chi/v5"
)

// Handler exposes terminal configuration and token endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/terminals", func(r chi.Router) {
		r.Post("/", h.create)                                   // POST /api/v1/terminals
		r.Get("/", h.list)                                      // GET  /api/v1/terminals
		r.Get("/{id}", h.get)                                   // GET  /api/v1/terminals/{id}
		r.Put("/{id}", h.update)                                // PUT  /api/v1/terminals/{id}
		r.Post("/{id}/token", h.refreshToken)                   // POST /api/v1/terminals/{id}/token
		r.Post("/{id}/sample-transaction", h.sampleTransaction) // POST /api/v1/terminals/{id}/sample-transaction
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req SaveTerminalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	t, err := h.service.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, NewView(t))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	terminals, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	views := make([]View, 0, len(terminals))
	for _, t := range terminals {
		views = append(views, NewView(t))
	}
	respond(w, http.StatusOK, views)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.GetTerminal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, NewView(t))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req SaveTerminalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	t, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, NewView(t))
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.RefreshToken(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, NewView(t))
}

func (h *Handler) sampleTransaction(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.SampleTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func respondError(w http.ResponseWriter, err error) {
	var cfgErr *ConfigurationError
	var authErr *hobex.AuthenticationError
	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &cfgErr):
		code = http.StatusBadRequest
	case errors.As(err, &authErr):
		code = http.StatusBadGateway
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrNotHobex):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalid):
		code = http.StatusBadRequest
	}
	respond(w, code, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
