package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/alfagnish/usuarios/internal/config"
	"github.com/alfagnish/usuarios/internal/feed"
	"github.com/alfagnish/usuarios/internal/handlers"
	"github.com/alfagnish/usuarios/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a fully-configured chi router with all route groups,
// middleware, and handlers wired together.
func New(cfg *config.Config, store *users.Store, hub *feed.Hub) http.Handler {
	r := chi.NewRouter()

	// ── Middleware ───────────────────────────────────────────
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	if cfg.IsDevelopment() {
		r.Use(requestLogger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// ── Handlers ────────────────────────────────────────────
	usersH := handlers.NewUsersHandler(store, hub)
	eventsH := handlers.NewEventsHandler(hub)
	systemH := handlers.NewSystemHandler(cfg, store, hub)
	staticH := handlers.NewStaticHandler(cfg.PublicDir)

	// ── Routes ──────────────────────────────────────────────
	r.Get("/", handlers.Root)
	r.Route("/api/usuarios", usersH.Routes)
	r.Route("/api/events", eventsH.Routes)
	r.Route("/api/system", systemH.Routes)

	r.NotFound(staticH.ServeHTTP)

	return r
}

// requestLogger logs each API request with method, path, status code,
// duration and request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		// Only log API requests to reduce noise from static file serving.
		if strings.HasPrefix(r.URL.Path, "/api/") {
			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = 200
			}
			log.Printf("%s %s %d %s [%s]",
				r.Method,
				r.URL.Path,
				status,
				duration.Round(time.Millisecond),
				middleware.GetReqID(r.Context()),
			)
		}
	})
}
