package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-finder/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	sessions := handlers.NewSessionRegistry()

	referenceHandler := handlers.NewReferenceHandler(s.config, s.extractor, sessions)
	searchHandler := handlers.NewSearchHandler(s.config, s.extractor, s.store, sessions)
	albumsHandler := handlers.NewAlbumsHandler(s.store)
	uploadHandler := handlers.NewUploadHandler(s.config, s.store)
	imagesHandler := handlers.NewImagesHandler(s.store)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)

		// Reference sessions
		r.Post("/reference", referenceHandler.Create)
		r.Get("/reference/{session}", referenceHandler.Status)
		r.Delete("/reference/{session}", referenceHandler.Delete)

		// Albums
		r.Get("/albums", albumsHandler.List)
		r.Post("/albums", albumsHandler.Create)
		r.Delete("/albums/{album}", albumsHandler.Delete)
		r.Get("/albums/{album}/items", albumsHandler.ListItems)
		r.Post("/albums/{album}/items", uploadHandler.Upload)
		r.Delete("/albums/{album}/items/{item}", albumsHandler.DeleteItem)

		// Streaming search
		r.Get("/search/{album}", searchHandler.Search)
	})

	// Static image serving
	s.router.Get("/images/{album}/{item}", imagesHandler.Serve)
}
