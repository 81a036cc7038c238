// Package web wires the HTTP server: router, middleware, and handlers.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/face-finder/internal/config"
	"github.com/kozaktomas/face-finder/internal/extract"
	"github.com/kozaktomas/face-finder/internal/store"
	"github.com/kozaktomas/face-finder/internal/web/middleware"
)

// Server represents the web server.
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	extractor  extract.Extractor
	store      *store.Store
}

// NewServer creates a new web server.
func NewServer(cfg *config.Config, port int, host string) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:    cfg,
		router:    r,
		extractor: extract.NewClient(cfg.Extractor.URL),
		store:     store.New(cfg.Store.Root),
	}

	// Set up middleware stack.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS())

	s.setupRoutes()

	// No WriteTimeout: searches stream over SSE for as long as the scan runs.
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", host, port),
		Handler:     r,
		ReadTimeout: 5 * time.Minute, // uploads can be large
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
