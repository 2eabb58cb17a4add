// ABOUTME: JSON response helpers and error-to-status mapping for the HTTP API
// ABOUTME: Every error body is {"error": "..."}
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/harper/flowscope/internal/models"
)

// WriteJSON writes a JSON response with the given status code and data
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] failed to encode json response: %v", err)
	}
}

// WriteJSONError writes a JSON error response with the given status code and message
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// StatusFor maps domain errors onto HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidRequest), errors.Is(err, models.ErrMalformedIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnknownCase), errors.Is(err, models.ErrUnknownRecord), errors.Is(err, models.ErrUnknownSelection):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientSamples):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrCollaboratorUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err with the status StatusFor picks. Server-side
// failures are logged and their details are not echoed to the client.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		log.Printf("[API] internal error: %v", err)
		WriteJSONError(w, status, "internal error: annotation store or pipeline failure")
		return
	}
	WriteJSONError(w, status, err.Error())
}
