package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/models/dtos"
)

// HostAPIProvider talks to the simulator host's local plugin API.
type HostAPIProvider struct {
	BaseURL string
	Client  *http.Client
}

// NewHostAPIProvider creates a new host API client
func NewHostAPIProvider(baseURL string) *HostAPIProvider {
	return &HostAPIProvider{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ============================================================================
// Identity and configuration
// ============================================================================

// GetIdentity fetches the operator/session snapshot
func (p *HostAPIProvider) GetIdentity(ctx context.Context) (*dtos.Identity, error) {
	var identity dtos.Identity
	if err := p.do(ctx, http.MethodGet, "api/identity", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// GetConfig fetches operator configuration
func (p *HostAPIProvider) GetConfig(ctx context.Context) (json.RawMessage, error) {
	var r dtos.HostConfigResponse
	if err := p.do(ctx, http.MethodGet, "api/config", nil, &r); err != nil {
		return nil, err
	}
	return r.Config, nil
}

func (p *HostAPIProvider) GetSettings(ctx context.Context) (*dtos.HostSettings, error) {
	var s dtos.HostSettings
	if err := p.do(ctx, http.MethodGet, "api/settings", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *HostAPIProvider) InstalledPlugins(ctx context.Context) ([]dtos.InstalledPlugin, error) {
	var plugins []dtos.InstalledPlugin
	if err := p.do(ctx, http.MethodGet, "api/plugins/installed", nil, &plugins); err != nil {
		return nil, err
	}
	return plugins, nil
}

// IsPluginInstalled reports false on any lookup failure.
func (p *HostAPIProvider) IsPluginInstalled(ctx context.Context, pluginID string) bool {
	plugins, err := p.InstalledPlugins(ctx)
	if err != nil {
		return false
	}
	for _, pl := range plugins {
		if pl.ID == pluginID {
			return true
		}
	}
	return false
}

// ============================================================================
// Cross-plugin actions
// ============================================================================

func (p *HostAPIProvider) Navigate(ctx context.Context, pluginID string) error {
	return p.do(ctx, http.MethodPost, "api/navigate", dtos.NavigateRequest{PluginID: pluginID}, nil)
}

func (p *HostAPIProvider) StartFlight(ctx context.Context, flight dtos.FlightStart) error {
	return p.do(ctx, http.MethodPost, "api/"+constants.PluginFlightTracking+"/startflight", flight, nil)
}

func (p *HostAPIProvider) RestoreFlight(ctx context.Context, flight dtos.FlightRestore) error {
	return p.do(ctx, http.MethodPost, "api/"+constants.PluginFlightTracking+"/restoreflight", flight, nil)
}

// RecoverableFlight returns nil without error when the host has nothing to recover.
func (p *HostAPIProvider) RecoverableFlight(ctx context.Context) (*dtos.RecoverableFlight, error) {
	var raw json.RawMessage
	if err := p.do(ctx, http.MethodGet, "api/"+constants.PluginFlightCenter+"/recover", nil, &raw); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var rf dtos.RecoverableFlight
	if err := json.Unmarshal(raw, &rf); err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeMalformedBody,
			Message: "Failed to decode recoverable flight",
			Details: string(raw),
			Err:     err,
		}
	}
	return &rf, nil
}

func (p *HostAPIProvider) SetSimBriefFlightInfo(ctx context.Context, info dtos.SimBriefFlightInfo) error {
	return p.do(ctx, http.MethodPost, "api/"+constants.PluginSimBrief+"/setflightinfo", dtos.SimBriefRequest{FlightInfo: info}, nil)
}

// ============================================================================
// HTTP Helper Methods
// ============================================================================

func (p *HostAPIProvider) do(ctx context.Context, method, endpoint string, payload interface{}, result interface{}) error {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return &ProviderError{
				Code:    constants.ErrCodeInvalidRequest,
				Message: "Failed to marshal request body",
				Err:     err,
			}
		}
		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, joinURL(p.BaseURL, endpoint), body)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidRequest,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeHostUnavailable,
			Message: constants.GetErrorMessage(constants.ErrCodeHostUnavailable),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{
			Code:       constants.ErrCodeHostUnavailable,
			Message:    "Failed to read response body",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return buildHTTPError(resp.StatusCode, endpoint, string(bodyBytes))
	}

	if result == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return &ProviderError{
			Code:       constants.ErrCodeMalformedBody,
			Message:    fmt.Sprintf("Failed to decode %s response", endpoint),
			Details:    string(bodyBytes),
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return nil
}
