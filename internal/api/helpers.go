package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"creatorhub/internal/models"
)

// sendJSON writes a JSON response with the given status code.
func (s *Server) sendJSON(w http.ResponseWriter, payload interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// sendError writes a JSON error response.
func (s *Server) sendError(w http.ResponseWriter, message string, status int) {
	s.sendJSON(w, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}, status)
}
