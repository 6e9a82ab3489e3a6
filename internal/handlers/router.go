package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"gallery-backend/internal/middleware"
)

// NewRouter builds the application router. Everything under /api is the
// JSON API, with mutating verbs gated by the token verifier; any other path
// is served from the static assets directory.
func NewRouter(
	eventHandler *EventHandler,
	imageHandler *ImageHandler,
	verifier middleware.TokenVerifier,
	staticDir string,
) chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAccess(verifier))

		r.Get("/health", Health)

		r.Get("/events", eventHandler.ListEvents)
		r.Post("/events", eventHandler.CreateEvent)
		r.Put("/events/{id}", eventHandler.UpdateEvent)
		r.Delete("/events/{id}", eventHandler.DeleteEvent)

		r.Get("/events/{id}/images", imageHandler.ListImages)
		r.Post("/events/{id}/images", imageHandler.UploadImage)
		r.Delete("/events/{id}/images/{imageId}", imageHandler.DeleteImage)

		// Unmatched API paths get a JSON 404, not the asset fallback.
		r.NotFound(apiNotFound)
		r.MethodNotAllowed(apiNotFound)
	})

	if staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}

	return r
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, "Not found", http.StatusNotFound)
}
