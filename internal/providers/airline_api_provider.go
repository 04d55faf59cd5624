package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/metrics"
)

// Credentials address one airline web service on behalf of one pilot session.
type Credentials struct {
	ScriptURL string
	Session   string
}

// ForwardRequest is an incoming relay call, reduced to what gets forwarded.
type ForwardRequest struct {
	Operation   string
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
}

// ForwardResponse is the upstream reply, passed back verbatim.
type ForwardResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// AirlineAPIProvider forwards calls to the airline web service
type AirlineAPIProvider struct {
	Client  *http.Client
	Metrics *metrics.MetricsRegistry

	// DumpRequests logs every outgoing request at debug level
	DumpRequests bool
}

// NewAirlineAPIProvider creates a provider. A zero timeout leaves upstream
// calls bounded only by the caller's context.
func NewAirlineAPIProvider(timeout time.Duration, reg *metrics.MetricsRegistry) *AirlineAPIProvider {
	return &AirlineAPIProvider{
		Client:  &http.Client{Timeout: timeout},
		Metrics: reg,
	}
}

// Forward performs one best-effort round trip. Any transport failure or
// non-2xx status is returned as a *ProviderError; there is no retry.
func (p *AirlineAPIProvider) Forward(ctx context.Context, creds Credentials, fr ForwardRequest) (*ForwardResponse, error) {
	start := time.Now()
	resp, err := p.forward(ctx, creds, fr)
	p.observe(fr.Operation, start, err)
	return resp, err
}

func (p *AirlineAPIProvider) forward(ctx context.Context, creds Credentials, fr ForwardRequest) (*ForwardResponse, error) {
	if creds.Session == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeMissingSession,
			Message: constants.GetErrorMessage(constants.ErrCodeMissingSession),
		}
	}
	if creds.ScriptURL == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeMissingScriptURL,
			Message: constants.GetErrorMessage(constants.ErrCodeMissingScriptURL),
		}
	}

	endpoint := joinURL(creds.ScriptURL, fr.Path)
	if len(fr.Query) > 0 {
		endpoint += "?" + fr.Query.Encode()
	}

	method := fr.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(fr.Body) > 0 {
		body = bytes.NewReader(fr.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidRequest,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	req.Header.Set("Authorization", "Bearer "+creds.Session)
	req.Header.Set("Accept", "application/json")
	if fr.ContentType != "" {
		req.Header.Set("Content-Type", fr.ContentType)
	}
	if p.DumpRequests {
		common.LogHTTPRequest(req)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{
			Code:       constants.ErrCodeNetworkError,
			Message:    "Failed to read response body",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, buildHTTPError(resp.StatusCode, fr.Path, string(bodyBytes))
	}

	return &ForwardResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        bodyBytes,
	}, nil
}

// GetJSON forwards a GET and decodes the body into result.
func (p *AirlineAPIProvider) GetJSON(ctx context.Context, creds Credentials, op, path string, result interface{}) error {
	resp, err := p.Forward(ctx, creds, ForwardRequest{
		Operation: op,
		Method:    http.MethodGet,
		Path:      path,
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		return &ProviderError{
			Code:       constants.ErrCodeMalformedBody,
			Message:    "Failed to decode response",
			Details:    string(resp.Body),
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return nil
}

func (p *AirlineAPIProvider) observe(op string, start time.Time, err error) {
	if p.Metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.Metrics.UpstreamRequestsTotal.WithLabelValues(op, outcome).Inc()
	p.Metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// joinURL appends path to base without doubling or dropping the slash.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
