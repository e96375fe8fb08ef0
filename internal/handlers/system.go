package handlers

import (
	"net/http"

	"github.com/alfagnish/usuarios/internal/config"
	"github.com/alfagnish/usuarios/internal/feed"
	"github.com/alfagnish/usuarios/internal/users"
	"github.com/go-chi/chi/v5"
)

// Greeting is the body served at the root path.
const Greeting = "Hello world from the usuarios service"

// Root serves the static greeting.
func Root(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, Greeting)
}

// SystemHandler provides service health information.
type SystemHandler struct {
	cfg   *config.Config
	store *users.Store
	hub   *feed.Hub
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(cfg *config.Config, store *users.Store, hub *feed.Hub) *SystemHandler {
	return &SystemHandler{cfg: cfg, store: store, hub: hub}
}

// Routes registers all system routes on the given chi router.
func (h *SystemHandler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
}

// Health reports the service identity and the size of the in-memory state.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"name":        h.cfg.Name,
		"env":         h.cfg.Env,
		"id_strategy": h.store.Strategy(),
		"users":       h.store.Len(),
		"subscribers": h.hub.Len(),
	})
}
