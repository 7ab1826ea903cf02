package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the response shape the game client expects on every route:
// a boolean status, a human-readable message, and an optional payload.
type Envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Action  string `json:"action,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondSuccess sends a success envelope with the given message and payload.
func RespondSuccess(w http.ResponseWriter, message string, data any, statusCode int) {
	RespondJSON(w, Envelope{Status: true, Message: message, Data: data}, statusCode)
}

// RespondError sends a failure envelope with the given message.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, Envelope{Status: false, Message: message}, statusCode)
}
