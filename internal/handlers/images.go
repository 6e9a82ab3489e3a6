package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"gallery-backend/internal/services"
)

// maxUploadMemory bounds the multipart form parse buffer; larger files spill
// to disk.
const maxUploadMemory = 32 << 20

// ImageHandler handles image-related HTTP requests
type ImageHandler struct {
	events *services.EventService
}

// NewImageHandler creates a new image handler
func NewImageHandler(events *services.EventService) *ImageHandler {
	return &ImageHandler{events: events}
}

// UploadImageResponse is the body returned after an upload
type UploadImageResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
	URL string `json:"url"`
}

// ListImages handles GET /api/events/{id}/images
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	images, err := h.events.ListImages(r.Context(), eventID)
	if err != nil {
		log.Error().Err(err).Str("event_id", eventID).Msg("Failed to list images")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, images)
}

// UploadImage handles POST /api/events/{id}/images
func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, "No image provided", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, "No image provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	declaredType := header.Header.Get("Content-Type")

	image, err := h.events.UploadImage(r.Context(), eventID, header.Filename, declaredType, file)
	if err != nil {
		log.Error().
			Err(err).
			Str("event_id", eventID).
			Str("filename", header.Filename).
			Msg("Failed to upload image")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("event_id", eventID).
		Str("key", image.Key).
		Msg("Image uploaded")

	respondJSON(w, http.StatusCreated, UploadImageResponse{
		ID:  image.ID,
		Key: image.Key,
		URL: image.URL,
	})
}

// DeleteImage handles DELETE /api/events/{id}/images/{imageId}
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	imageID := chi.URLParam(r, "imageId")

	if err := h.events.DeleteImage(r.Context(), eventID, imageID); err != nil {
		if err != services.ErrImageNotFound {
			log.Error().
				Err(err).
				Str("event_id", eventID).
				Str("image_id", imageID).
				Msg("Failed to delete image")
		}
		respondServiceError(w, err)
		return
	}

	log.Info().Str("event_id", eventID).Str("image_id", imageID).Msg("Image deleted")

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
