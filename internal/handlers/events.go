package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"gallery-backend/internal/services"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	events   *services.EventService
	validate *validator.Validate
}

// NewEventHandler creates a new event handler
func NewEventHandler(events *services.EventService, validate *validator.Validate) *EventHandler {
	return &EventHandler{
		events:   events,
		validate: validate,
	}
}

// CreateEventResponse is the body returned after creating an event
type CreateEventResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// ListEvents handles GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	includeHidden := r.URL.Query().Get("all") == "1"

	events, err := h.events.ListEvents(r.Context(), includeHidden)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list events")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, events)
}

// CreateEvent handles POST /api/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req services.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, "name and date are required", http.StatusBadRequest)
		return
	}

	event, err := h.events.CreateEvent(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("Failed to create event")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("event_id", event.ID).Str("name", event.Name).Msg("Event created")

	respondJSON(w, http.StatusCreated, CreateEventResponse{
		ID:   event.ID,
		Name: event.Name,
		Date: event.Date,
	})
}

// UpdateEvent handles PUT /api/events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	var req services.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	event, err := h.events.UpdateEvent(r.Context(), eventID, req)
	if err != nil {
		if err != services.ErrEventNotFound {
			log.Error().Err(err).Str("event_id", eventID).Msg("Failed to update event")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	if err := h.events.DeleteEvent(r.Context(), eventID); err != nil {
		if err != services.ErrEventNotFound {
			log.Error().Err(err).Str("event_id", eventID).Msg("Failed to delete event")
		}
		respondServiceError(w, err)
		return
	}

	log.Info().Str("event_id", eventID).Msg("Event deleted")

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Health handles GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
