package api

import (
	"encoding/json"
	"net/http"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/models/dtos"
	"cav/flightrelay/internal/services"
)

// ConfigHandler handles GET /api/config with the operator configuration
// captured at startup.
func ConfigHandler(rc *services.RelayContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := rc.HostConfig
		if len(cfg) == 0 {
			cfg = json.RawMessage(`{}`)
		}
		common.WriteJSON(w, http.StatusOK, dtos.HostConfigResponse{Config: cfg})
	}
}
