package common

import (
	"encoding/json"
	"net/http"

	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/models/dtos"
)

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Failed to encode response", "error", err.Error())
	}
}

// WriteRelayError writes the single error shape the relay returns.
func WriteRelayError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, dtos.RelayErrorBody{Error: message})
}
