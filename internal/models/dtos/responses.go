package dtos

import "time"

// RelayErrorBody is written by the relay whenever an upstream call fails.
type RelayErrorBody struct {
	Error string `json:"error"`
}

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceStatus `json:"services"`
	UpSince  time.Time                `json:"up_since"`
	Uptime   string                   `json:"uptime"`
}
