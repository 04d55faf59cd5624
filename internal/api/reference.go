package api

import (
	"net/http"

	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/services"
)

// ReferenceHandler serves airports or aircraft from the reference cache.
// nocache=true forces a reload from the airline web service.
func ReferenceHandler(reference *services.ReferenceDataService, rc *services.RelayContext, kind services.ReferenceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fresh := r.URL.Query().Get("nocache") == "true"

		body, err := reference.Get(r.Context(), rc.Credentials, kind, fresh)
		if err != nil {
			relayFailure(w, r, kind.Operation, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			logging.Warn("Failed to write reference response", "operation", kind.Operation, "error", err.Error())
		}
	}
}
