package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/config"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/models/dtos"
	"cav/flightrelay/internal/providers"
	"cav/flightrelay/internal/services"
)

type mockUpstream struct {
	ForwardFunc func(ctx context.Context, creds providers.Credentials, fr providers.ForwardRequest) (*providers.ForwardResponse, error)
}

func (m *mockUpstream) Forward(ctx context.Context, creds providers.Credentials, fr providers.ForwardRequest) (*providers.ForwardResponse, error) {
	return m.ForwardFunc(ctx, creds, fr)
}

func testRelayContext() *services.RelayContext {
	return &services.RelayContext{
		Credentials: providers.Credentials{ScriptURL: "https://va.example/api/", Session: "sess"},
		HostConfig:  json.RawMessage(`{"theme":"dark"}`),
	}
}

func decodeRelayError(t *testing.T, body io.Reader) string {
	t.Helper()
	var e dtos.RelayErrorBody
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return e.Error
}

func TestProxyHandler_PassesThrough(t *testing.T) {
	var got providers.ForwardRequest
	var gotCreds providers.Credentials
	upstream := &mockUpstream{
		ForwardFunc: func(ctx context.Context, creds providers.Credentials, fr providers.ForwardRequest) (*providers.ForwardResponse, error) {
			got = fr
			gotCreds = creds
			return &providers.ForwardResponse{StatusCode: http.StatusAccepted, ContentType: "text/plain", Body: []byte("queued")}, nil
		},
	}
	route := ProxyRoute{Operation: constants.OpSendMessage, Method: http.MethodPost, RemotePath: "flights/sendMessage"}
	handler := ProxyHandler(upstream, testRelayContext(), route)

	req := httptest.NewRequest(http.MethodPost, "/api/com.cav.live-flights/sendMessage?room=1", strings.NewReader("message=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Errorf("Expected remote status 202, got %d", rr.Code)
	}
	if rr.Body.String() != "queued" {
		t.Errorf("Expected body verbatim, got %q", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("Expected remote content type, got %s", ct)
	}
	if got.Path != "flights/sendMessage" || got.Method != http.MethodPost {
		t.Errorf("Unexpected forward request %+v", got)
	}
	if string(got.Body) != "message=hi" || got.ContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Expected body and content type forwarded, got %q %q", got.Body, got.ContentType)
	}
	if got.Query.Get("room") != "1" {
		t.Errorf("Expected query forwarded, got %v", got.Query)
	}
	if gotCreds.Session != "sess" {
		t.Errorf("Expected relay credentials, got %+v", gotCreds)
	}
}

func TestProxyHandler_FailureIs500WithErrorBody(t *testing.T) {
	upstream := &mockUpstream{
		ForwardFunc: func(ctx context.Context, creds providers.Credentials, fr providers.ForwardRequest) (*providers.ForwardResponse, error) {
			return nil, &providers.ProviderError{
				Code:       constants.ErrCodeNotFound,
				Message:    "Flight not found",
				StatusCode: http.StatusNotFound,
			}
		},
	}
	handler := ProxyHandler(upstream, testRelayContext(), ProxyRoute{Operation: constants.OpPathData, Method: http.MethodGet, RemotePath: "flights/path_data"})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/path_data?id=9", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rr.Code)
	}
	if msg := decodeRelayError(t, rr.Body); msg != "Flight not found" {
		t.Errorf("Expected provider message, got %q", msg)
	}
}

func TestProxyHandler_UntypedFailure(t *testing.T) {
	upstream := &mockUpstream{
		ForwardFunc: func(ctx context.Context, creds providers.Credentials, fr providers.ForwardRequest) (*providers.ForwardResponse, error) {
			return nil, context.DeadlineExceeded
		},
	}
	handler := ProxyHandler(upstream, testRelayContext(), ProxyRoute{Operation: constants.OpBookings, RemotePath: "flights/bookings"})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bookings", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rr.Code)
	}
	if msg := decodeRelayError(t, rr.Body); msg != constants.GetErrorMessage(constants.ErrCodeNetworkError) {
		t.Errorf("Expected generic network message, got %q", msg)
	}
}

func TestReferenceHandler_CachesUntilNocache(t *testing.T) {
	calls := 0
	upstream := &mockUpstream{
		ForwardFunc: func(ctx context.Context, creds providers.Credentials, fr providers.ForwardRequest) (*providers.ForwardResponse, error) {
			calls++
			return &providers.ForwardResponse{StatusCode: http.StatusOK, Body: []byte(`[{"id":1}]`)}, nil
		},
	}
	cache := common.NewCacheService(time.Minute, time.Minute)
	reference := services.NewReferenceDataService(upstream, cache, time.Minute, nil)
	handler := ReferenceHandler(reference, testRelayContext(), services.ReferenceAirports)

	for _, target := range []string{"/airports", "/airports", "/airports?nocache=true"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rr.Code)
		}
		if rr.Body.String() != `[{"id":1}]` {
			t.Errorf("%s: unexpected body %s", target, rr.Body.String())
		}
	}
	if calls != 2 {
		t.Errorf("Expected one load plus one forced reload, got %d upstream calls", calls)
	}
}

func TestReferenceHandler_MalformedIs500(t *testing.T) {
	upstream := &mockUpstream{
		ForwardFunc: func(ctx context.Context, creds providers.Credentials, fr providers.ForwardRequest) (*providers.ForwardResponse, error) {
			return &providers.ForwardResponse{StatusCode: http.StatusOK, Body: []byte(`{"error":"nope"}`)}, nil
		},
	}
	reference := services.NewReferenceDataService(upstream, common.NewCacheService(time.Minute, time.Minute), time.Minute, nil)
	handler := ReferenceHandler(reference, testRelayContext(), services.ReferenceAircraft)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/aircrafts", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rr.Code)
	}
}

func TestConfigHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	ConfigHandler(testRelayContext()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	var resp dtos.HostConfigResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(resp.Config) != `{"theme":"dark"}` {
		t.Errorf("Unexpected config %s", resp.Config)
	}

	rr = httptest.NewRecorder()
	ConfigHandler(&services.RelayContext{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if !strings.Contains(rr.Body.String(), `"config":{}`) {
		t.Errorf("Expected empty config object, got %s", rr.Body.String())
	}
}

func TestHealthCheckHandler(t *testing.T) {
	cache := common.NewCacheService(time.Minute, time.Minute)
	upSince := time.Now().Add(-time.Hour)

	rr := httptest.NewRecorder()
	HealthCheckHandler(cache, testRelayContext(), upSince).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))

	var resp dtos.HealthCheckResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Expected ok, got %s (%+v)", resp.Status, resp.Services)
	}
	if resp.Services["cache"].Status != "ok" {
		t.Errorf("Expected cache ok, got %+v", resp.Services["cache"])
	}

	rr = httptest.NewRecorder()
	HealthCheckHandler(cache, &services.RelayContext{}, upSince).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	resp = dtos.HealthCheckResponse{}
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Status != "down" || resp.Services["identity"].Status != "down" {
		t.Errorf("Expected identity down without a session, got %+v", resp)
	}
}

func TestNewCache_UnknownDriver(t *testing.T) {
	if _, err := NewCache(configWithDriver("memcached")); err == nil {
		t.Error("Expected error for unknown driver")
	}
	cache, err := NewCache(configWithDriver(""))
	if err != nil {
		t.Fatalf("Expected memory cache, got %v", err)
	}
	if cache.Backend() != "memory" {
		t.Errorf("Expected memory backend, got %s", cache.Backend())
	}
}

func configWithDriver(driver string) config.CacheConfig {
	cfg := config.Default().Cache
	cfg.Driver = driver
	return cfg
}
