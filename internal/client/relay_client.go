package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/models/dtos"
)

const (
	liveFlightsBase  = "api/" + constants.PluginLiveFlights + "/"
	flightCenterBase = "api/" + constants.PluginFlightCenter + "/"

	// searchTermMinLength is the shortest tour or category filter sent upstream
	searchTermMinLength = 3
)

// RelayClient is a typed consumer of the local relay surface.
type RelayClient struct {
	BaseURL string
	HTTP    *http.Client

	// Now stamps cache busting parameters
	Now func() time.Time
}

func NewRelayClient(baseURL string, timeout time.Duration) *RelayClient {
	return &RelayClient{
		BaseURL: strings.TrimRight(baseURL, "/") + "/",
		HTTP:    &http.Client{Timeout: timeout},
		Now:     time.Now,
	}
}

// ============================================================================
// Live flights
// ============================================================================

func (c *RelayClient) LiveFlights(ctx context.Context) ([]dtos.LiveFlight, error) {
	var flights []dtos.LiveFlight
	err := c.getJSON(ctx, constants.OpLiveFlights, liveFlightsBase+"flights", noCache(), &flights)
	return flights, err
}

func (c *RelayClient) MapStyle(ctx context.Context) (*dtos.MapStyle, error) {
	var style dtos.MapStyle
	if err := c.getJSON(ctx, constants.OpMapStyle, liveFlightsBase+"map_style", nil, &style); err != nil {
		return nil, err
	}
	return &style, nil
}

func (c *RelayClient) PathData(ctx context.Context, id string) ([]dtos.PathPoint, error) {
	var points []dtos.PathPoint
	err := c.getJSON(ctx, constants.OpPathData, liveFlightsBase+"path_data", url.Values{"id": {id}}, &points)
	return points, err
}

func (c *RelayClient) ChatMessages(ctx context.Context) ([]dtos.ChatMessage, error) {
	var messages []dtos.ChatMessage
	err := c.getJSON(ctx, constants.OpChatMessages, liveFlightsBase+"chatMessages", noCache(), &messages)
	return messages, err
}

// SendMessage posts one chat message form-encoded. Callers validate the text.
func (c *RelayClient) SendMessage(ctx context.Context, message string) error {
	form := url.Values{"message": {message}}
	_, err := c.do(ctx, constants.OpSendMessage, http.MethodPost, liveFlightsBase+"sendMessage", nil,
		[]byte(form.Encode()), "application/x-www-form-urlencoded")
	return err
}

// ============================================================================
// Flight center
// ============================================================================

func (c *RelayClient) Bookings(ctx context.Context) ([]dtos.Flight, error) {
	var bookings []dtos.Flight
	err := c.getJSON(ctx, constants.OpBookings, flightCenterBase+"bookings", noCache(), &bookings)
	return bookings, err
}

func (c *RelayClient) BookFlight(ctx context.Context, flightID string) (*dtos.BookFlightResponse, error) {
	var resp dtos.BookFlightResponse
	if err := c.postJSON(ctx, constants.OpBookFlight, flightCenterBase+"book-flight", dtos.BookFlightRequest{FlightID: flightID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RelayClient) UnbookFlight(ctx context.Context, bidID dtos.FlexID) error {
	return c.postJSON(ctx, constants.OpUnbookFlight, flightCenterBase+"unbook-flight", dtos.UnbookFlightRequest{BidID: bidID}, nil)
}

func (c *RelayClient) Airports(ctx context.Context) ([]dtos.Airport, error) {
	var airports []dtos.Airport
	err := c.getJSON(ctx, constants.OpAirports, flightCenterBase+"airports", nil, &airports)
	return airports, err
}

func (c *RelayClient) Aircraft(ctx context.Context) ([]dtos.Aircraft, error) {
	var aircraft []dtos.Aircraft
	err := c.getJSON(ctx, constants.OpAircrafts, flightCenterBase+"aircrafts", nil, &aircraft)
	return aircraft, err
}

// TourQuery filters tour legs. Terms shorter than three characters are not sent.
type TourQuery struct {
	Tour     string
	Category string
}

func (c *RelayClient) SearchTours(ctx context.Context, q TourQuery) ([]dtos.Flight, error) {
	params := c.cacheBuster()
	if len(q.Tour) >= searchTermMinLength {
		params.Set("tour", q.Tour)
	}
	if len(q.Category) >= searchTermMinLength {
		params.Set("tourCategory", q.Category)
	}
	var flights []dtos.Flight
	err := c.getJSON(ctx, constants.OpSearchTours, flightCenterBase+"searchTours", params, &flights)
	return flights, err
}

func (c *RelayClient) SearchEvents(ctx context.Context) ([]dtos.Flight, error) {
	var flights []dtos.Flight
	err := c.getJSON(ctx, constants.OpSearchEvents, flightCenterBase+"searchEvents", c.cacheBuster(), &flights)
	return flights, err
}

func (c *RelayClient) Tours(ctx context.Context) ([]dtos.Tour, error) {
	var tours []dtos.Tour
	err := c.getJSON(ctx, constants.OpTours, flightCenterBase+"tours", nil, &tours)
	return tours, err
}

func (c *RelayClient) TourCategories(ctx context.Context) ([]dtos.TourCategory, error) {
	var categories []dtos.TourCategory
	err := c.getJSON(ctx, constants.OpTourCategories, flightCenterBase+"tourCategories", nil, &categories)
	return categories, err
}

// ============================================================================
// HTTP Helper Methods
// ============================================================================

func noCache() url.Values {
	return url.Values{"nocache": {"true"}}
}

func (c *RelayClient) cacheBuster() url.Values {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return url.Values{"cacheBuster": {strconv.FormatInt(now().UnixMilli(), 10)}}
}

func (c *RelayClient) getJSON(ctx context.Context, op, path string, query url.Values, result interface{}) error {
	body, err := c.do(ctx, op, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return decode(op, body, result)
}

func (c *RelayClient) postJSON(ctx context.Context, op, path string, payload, result interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return &RelayError{Kind: KindTransport, Operation: op, Err: fmt.Errorf("marshal request: %w", err)}
	}
	body, err := c.do(ctx, op, http.MethodPost, path, nil, payloadBytes, "application/json")
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return decode(op, body, result)
}

func (c *RelayClient) do(ctx context.Context, op, method, path string, query url.Values, payload []byte, contentType string) ([]byte, error) {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &RelayError{Kind: KindTransport, Operation: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &RelayError{Kind: KindTransport, Operation: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RelayError{Kind: KindTransport, Operation: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody dtos.RelayErrorBody
		_ = json.Unmarshal(respBody, &errBody)
		return nil, &RelayError{
			Kind:       KindStatus,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    errBody.Error,
		}
	}
	return respBody, nil
}

func decode(op string, body []byte, result interface{}) error {
	if err := json.Unmarshal(body, result); err != nil {
		return &RelayError{Kind: KindMalformed, Operation: op, Err: err}
	}
	return nil
}
