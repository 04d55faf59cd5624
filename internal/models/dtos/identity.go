package dtos

import "encoding/json"

// Identity is the operator/session snapshot handed out by the host.
type Identity struct {
	Airline Airline `json:"airline"`
	VAUser  VAUser  `json:"va_user"`
}

type Airline struct {
	Settings AirlineSettings `json:"settings"`
	Plugins  []PluginInfo    `json:"plugins"`
}

type AirlineSettings struct {
	ScriptURL string `json:"scriptURL"`
}

type PluginInfo struct {
	ID              string          `json:"id"`
	Name            string          `json:"name,omitempty"`
	Version         string          `json:"version,omitempty"`
	AppliedSettings json.RawMessage `json:"appliedSettings,omitempty"`
}

type VAUser struct {
	Session  string          `json:"session"`
	DBID     FlexID          `json:"dbID"`
	PilotRaw json.RawMessage `json:"pilotRaw,omitempty"`
}

// Plugin returns the airline plugin entry with the given id.
func (i *Identity) Plugin(id string) (*PluginInfo, bool) {
	for idx := range i.Airline.Plugins {
		if i.Airline.Plugins[idx].ID == id {
			return &i.Airline.Plugins[idx], true
		}
	}
	return nil, false
}

// HostConfigResponse wraps GET api/config on the host.
type HostConfigResponse struct {
	Config json.RawMessage `json:"config"`
}

// HostSettings is the subset of GET api/settings the dispatch flow needs.
type HostSettings struct {
	Core CoreSettings `json:"core"`
}

type CoreSettings struct {
	WeightUnits          string `json:"weightUnits"`
	AltitudeUnits        string `json:"altitudeUnits"`
	LandingDistanceUnits string `json:"landingDistanceUnits"`
}

// DefaultCoreSettings mirrors the host defaults used until settings load.
func DefaultCoreSettings() CoreSettings {
	return CoreSettings{
		WeightUnits:          "KGS",
		AltitudeUnits:        "ft",
		LandingDistanceUnits: "m",
	}
}

type InstalledPlugin struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

type NavigateRequest struct {
	PluginID string `json:"pluginID"`
}
