package services

import (
	"encoding/json"
	"time"

	"cav/flightrelay/internal/models/dtos"
	"cav/flightrelay/internal/providers"
)

// RelayContext is the identity and operator configuration the relay serves
// with. It is built once at startup and read-only afterwards.
type RelayContext struct {
	Identity    *dtos.Identity
	HostConfig  json.RawMessage
	Credentials providers.Credentials
	LoadedAt    time.Time
}

// IdentityLoaded reports whether calls can be authorized.
func (rc *RelayContext) IdentityLoaded() bool {
	return rc != nil && rc.Credentials.Session != "" && rc.Credentials.ScriptURL != ""
}
