package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gallery-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes v as a JSON response with the given status code
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondServiceError maps service error kinds onto HTTP statuses. Anything
// that is not a validation or not-found error is an upstream failure and
// surfaces as a generic 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		respondError(w, validation.Message, http.StatusBadRequest)
	case errors.Is(err, services.ErrEventNotFound), errors.Is(err, services.ErrImageNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	default:
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}
