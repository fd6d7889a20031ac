package web

import (
	"github.com/go-chi/chi/v5"

	"faceregistry/internal/auth"
	"faceregistry/internal/database"
	"faceregistry/internal/faces"
	"faceregistry/internal/web/handlers"
	"faceregistry/internal/web/middleware"
)

func (s *Server) setupRoutes(users database.UserStore, faceService *faces.Service, validator auth.Validator) {
	usersHandler := handlers.NewUsersHandler(users)
	facesHandler := handlers.NewFacesHandler(faceService)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Read-only endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(validator, auth.ScopeUsersRead))

			r.Get("/users/", usersHandler.List)
			r.Get("/users/{id}", usersHandler.Get)
			r.Get("/users/{id}/faces", facesHandler.ListFaces)
			// POST for the multipart body, but semantically a query.
			r.Post("/faces/match", facesHandler.Match)
		})

		// Mutating endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(validator, auth.ScopeUsersWrite))

			r.Post("/users/", usersHandler.Create)
			r.Post("/users/{id}/add-face", facesHandler.AddFace)
		})
	})
}
