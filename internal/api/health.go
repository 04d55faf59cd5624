package api

import (
	"context"
	"net/http"
	"time"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/models/dtos"
	"cav/flightrelay/internal/services"
)

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(cache common.CacheInterface, rc *services.RelayContext, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		statuses := make(map[string]dtos.ServiceStatus)

		// Check cache backend
		cacheStatus := "ok"
		cacheDetails := cache.Backend() + " cache reachable"
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := cache.Ping(ctx); err != nil {
			cacheStatus = "down"
			cacheDetails = err.Error()
		}
		statuses["cache"] = dtos.ServiceStatus{
			Status:  cacheStatus,
			Details: cacheDetails,
		}

		// Check identity
		identityStatus := "ok"
		identityDetails := "Session loaded"
		if !rc.IdentityLoaded() {
			identityStatus = "down"
			identityDetails = "No VA session; upstream calls will fail"
		}
		statuses["identity"] = dtos.ServiceStatus{
			Status:  identityStatus,
			Details: identityDetails,
		}

		overallStatus := "ok"
		for _, svc := range statuses {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		now := time.Now()
		uptime := now.Sub(upSince).Round(time.Second).String()

		resp := dtos.HealthCheckResponse{
			Services: statuses,
			Status:   overallStatus,
			UpSince:  upSince,
			Uptime:   uptime,
		}
		common.WriteJSON(w, http.StatusOK, resp)
	}
}
