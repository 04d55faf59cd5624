package screens

import (
	"context"
	"sync"

	"cav/flightrelay/internal/client"
	"cav/flightrelay/internal/models/dtos"
)

// fakeRelay implements every relay surface the screens consume.
type fakeRelay struct {
	mu    sync.Mutex
	calls map[string]int

	LiveFlightsFunc    func(ctx context.Context) ([]dtos.LiveFlight, error)
	ChatMessagesFunc   func(ctx context.Context) ([]dtos.ChatMessage, error)
	SendMessageFunc    func(ctx context.Context, message string) error
	PathDataFunc       func(ctx context.Context, id string) ([]dtos.PathPoint, error)
	BookingsFunc       func(ctx context.Context) ([]dtos.Flight, error)
	BookFlightFunc     func(ctx context.Context, flightID string) (*dtos.BookFlightResponse, error)
	UnbookFlightFunc   func(ctx context.Context, bidID dtos.FlexID) error
	SearchToursFunc    func(ctx context.Context, q client.TourQuery) ([]dtos.Flight, error)
	SearchEventsFunc   func(ctx context.Context) ([]dtos.Flight, error)
	AirportsFunc       func(ctx context.Context) ([]dtos.Airport, error)
	AircraftFunc       func(ctx context.Context) ([]dtos.Aircraft, error)
	ToursFunc          func(ctx context.Context) ([]dtos.Tour, error)
	TourCategoriesFunc func(ctx context.Context) ([]dtos.TourCategory, error)
}

func (f *fakeRelay) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeRelay) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeRelay) LiveFlights(ctx context.Context) ([]dtos.LiveFlight, error) {
	f.hit("liveFlights")
	return f.LiveFlightsFunc(ctx)
}

func (f *fakeRelay) MapStyle(ctx context.Context) (*dtos.MapStyle, error) {
	f.hit("mapStyle")
	return &dtos.MapStyle{URL: "https://tiles.example/{z}/{x}/{y}.png"}, nil
}

func (f *fakeRelay) PathData(ctx context.Context, id string) ([]dtos.PathPoint, error) {
	f.hit("pathData")
	return f.PathDataFunc(ctx, id)
}

func (f *fakeRelay) ChatMessages(ctx context.Context) ([]dtos.ChatMessage, error) {
	f.hit("chatMessages")
	if f.ChatMessagesFunc == nil {
		return []dtos.ChatMessage{}, nil
	}
	return f.ChatMessagesFunc(ctx)
}

func (f *fakeRelay) SendMessage(ctx context.Context, message string) error {
	f.hit("sendMessage")
	return f.SendMessageFunc(ctx, message)
}

func (f *fakeRelay) Bookings(ctx context.Context) ([]dtos.Flight, error) {
	f.hit("bookings")
	return f.BookingsFunc(ctx)
}

func (f *fakeRelay) BookFlight(ctx context.Context, flightID string) (*dtos.BookFlightResponse, error) {
	f.hit("bookFlight")
	return f.BookFlightFunc(ctx, flightID)
}

func (f *fakeRelay) UnbookFlight(ctx context.Context, bidID dtos.FlexID) error {
	f.hit("unbookFlight")
	return f.UnbookFlightFunc(ctx, bidID)
}

func (f *fakeRelay) SearchTours(ctx context.Context, q client.TourQuery) ([]dtos.Flight, error) {
	f.hit("searchTours")
	return f.SearchToursFunc(ctx, q)
}

func (f *fakeRelay) SearchEvents(ctx context.Context) ([]dtos.Flight, error) {
	f.hit("searchEvents")
	return f.SearchEventsFunc(ctx)
}

func (f *fakeRelay) Airports(ctx context.Context) ([]dtos.Airport, error) {
	f.hit("airports")
	if f.AirportsFunc == nil {
		return []dtos.Airport{{ID: "1", Code: "EGLL"}, {ID: "2", Code: "LFPG"}}, nil
	}
	return f.AirportsFunc(ctx)
}

func (f *fakeRelay) Aircraft(ctx context.Context) ([]dtos.Aircraft, error) {
	f.hit("aircrafts")
	if f.AircraftFunc == nil {
		return []dtos.Aircraft{{ID: "4", Name: "Airbus A320"}}, nil
	}
	return f.AircraftFunc(ctx)
}

func (f *fakeRelay) Tours(ctx context.Context) ([]dtos.Tour, error) {
	f.hit("tours")
	if f.ToursFunc == nil {
		return []dtos.Tour{}, nil
	}
	return f.ToursFunc(ctx)
}

func (f *fakeRelay) TourCategories(ctx context.Context) ([]dtos.TourCategory, error) {
	f.hit("tourCategories")
	if f.TourCategoriesFunc == nil {
		return []dtos.TourCategory{}, nil
	}
	return f.TourCategoriesFunc(ctx)
}

type fakeHost struct {
	mu        sync.Mutex
	started   []dtos.FlightStart
	navigated []string
	settings  *dtos.HostSettings
	installed []string
}

func (h *fakeHost) StartFlight(ctx context.Context, flight dtos.FlightStart) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, flight)
	return nil
}

func (h *fakeHost) RestoreFlight(ctx context.Context, flight dtos.FlightRestore) error {
	return nil
}

func (h *fakeHost) RecoverableFlight(ctx context.Context) (*dtos.RecoverableFlight, error) {
	return &dtos.RecoverableFlight{BidID: "77"}, nil
}

func (h *fakeHost) SetSimBriefFlightInfo(ctx context.Context, info dtos.SimBriefFlightInfo) error {
	return nil
}

func (h *fakeHost) Navigate(ctx context.Context, pluginID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.navigated = append(h.navigated, pluginID)
	return nil
}

func (h *fakeHost) GetSettings(ctx context.Context) (*dtos.HostSettings, error) {
	if h.settings == nil {
		return &dtos.HostSettings{Core: dtos.DefaultCoreSettings()}, nil
	}
	return h.settings, nil
}

func (h *fakeHost) IsPluginInstalled(ctx context.Context, pluginID string) bool {
	for _, id := range h.installed {
		if id == pluginID {
			return true
		}
	}
	return false
}
