package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *RelayClient {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	c := NewRelayClient(server.URL, 0)
	c.Now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func TestRelayClient_LiveFlights(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/com.cav.live-flights/flights", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("nocache"))
		w.Write([]byte(`[{"id": 1, "flightnum": "CAV12", "presLat": "51.5", "presLong": -0.1, "actmpId": 9}]`))
	})

	flights, err := c.LiveFlights(context.Background())
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "CAV12", flights[0].FlightNum)
	assert.InDelta(t, 51.5, flights[0].PresLat.Float64(), 1e-9)
	assert.Equal(t, "9", flights[0].ActmpID.String())
}

func TestRelayClient_SendMessageIsFormEncoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "message=hello+tower", string(body))
		w.Write([]byte(`{}`))
	})

	require.NoError(t, c.SendMessage(context.Background(), "hello tower"))
}

func TestRelayClient_SearchToursShortTermsDropped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Europe", q.Get("tour"))
		assert.False(t, q.Has("tourCategory"))
		assert.Equal(t, "1700000000000", q.Get("cacheBuster"))
		w.Write([]byte(`[]`))
	})

	_, err := c.SearchTours(context.Background(), TourQuery{Tour: "Europe", Category: "ab"})
	require.NoError(t, err)
}

func TestRelayClient_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Unable to reach the airline web service"}`))
	})

	_, err := c.Bookings(context.Background())
	var rerr *RelayError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, KindStatus, rerr.Kind)
	assert.Equal(t, http.StatusInternalServerError, rerr.StatusCode)
	assert.Equal(t, "Unable to reach the airline web service", rerr.Message)
}

func TestRelayClient_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"flights": []}`))
	})

	_, err := c.SearchEvents(context.Background())
	var rerr *RelayError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, KindMalformed, rerr.Kind)
}

func TestRelayClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	_, err := NewRelayClient(addr, time.Second).Airports(context.Background())
	var rerr *RelayError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, KindTransport, rerr.Kind)
}

func TestRelayClient_BookFlight(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/com.cav.flight-center/book-flight", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"flightID": "schedule-12-4"}`, string(body))
		w.Write([]byte(`{"bidID": 333}`))
	})

	resp, err := c.BookFlight(context.Background(), "schedule-12-4")
	require.NoError(t, err)
	assert.Equal(t, "333", resp.BidID.String())
}
