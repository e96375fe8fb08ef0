package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfagnish/usuarios/internal/config"
	"github.com/alfagnish/usuarios/internal/feed"
	"github.com/alfagnish/usuarios/internal/server"
	"github.com/alfagnish/usuarios/internal/users"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// 1. Load configuration from files and environment variables.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	log.Printf("application: %s (env=%s)", cfg.Name, cfg.Env)
	log.Printf("config: listen=%s public=%s ids=%s", cfg.ListenAddr, cfg.PublicDir, cfg.IDStrategy)

	// 2. Create the in-memory user store with its seed records.
	store := users.NewStore(users.WithIDStrategy(users.IDStrategy(cfg.IDStrategy)))
	store.Seed(users.DefaultSeed...)
	if store.Strategy() == users.IDCount {
		log.Println("WARNING: count-based ids can repeat after a delete; set ID_STRATEGY=monotonic to avoid it")
	}

	// 3. Set up the change feed and the chi router.
	hub := feed.NewHub()
	handler := server.New(cfg, store, hub)

	// 4. Start the HTTP server.
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // no write timeout, the event stream is long-lived
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-done
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}

	log.Println("server stopped")
}
