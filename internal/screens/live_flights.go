package screens

import (
	"context"
	"fmt"
	"sync"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/config"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/metrics"
	"cav/flightrelay/internal/models/dtos"
	"cav/flightrelay/internal/services"
	"cav/flightrelay/internal/workers"
)

// LiveFlightsAPI is the relay surface behind the live flights screen.
type LiveFlightsAPI interface {
	LiveFlights(ctx context.Context) ([]dtos.LiveFlight, error)
	MapStyle(ctx context.Context) (*dtos.MapStyle, error)
	PathData(ctx context.Context, id string) ([]dtos.PathPoint, error)
	ChatMessages(ctx context.Context) ([]dtos.ChatMessage, error)
	SendMessage(ctx context.Context, message string) error
}

// LiveFlightRow is one line of the live flights table.
type LiveFlightRow struct {
	FlightNumber string
	Pilot        string
	DepICAO      string
	ArrICAO      string
	Aircraft     string
	Type         string
	Phase        string
	DTG          string
	ETA          string
	ActmpID      string
}

func liveFlightRow(f dtos.LiveFlight) LiveFlightRow {
	return LiveFlightRow{
		FlightNumber: StripHTML(f.FlightNum),
		Pilot:        StripHTML(f.Pilot),
		DepICAO:      StripHTML(f.DepICAO),
		ArrICAO:      StripHTML(f.ArrICAO),
		Aircraft:     StripHTML(f.Aircraft),
		Type:         StripHTML(f.Type),
		Phase:        StripHTML(f.Phase),
		DTG:          f.DTG.String(),
		ETA:          f.ETA,
		ActmpID:      f.ActmpID.String(),
	}
}

// LiveFlightsScreen polls live flights and chat, and keeps the map in sync.
type LiveFlightsScreen struct {
	API     LiveFlightsAPI
	Flights *workers.Poller[dtos.LiveFlight]
	Chat    *workers.Poller[dtos.ChatMessage]
	Map     *services.LiveMapService
	Chatter *services.ChatService

	mu       sync.Mutex
	rows     []LiveFlightRow
	mapStyle *dtos.MapStyle
	onUpdate func()
}

func NewLiveFlightsScreen(api LiveFlightsAPI, poll config.PollConfig, notifier common.Notifier, reg *metrics.MetricsRegistry) *LiveFlightsScreen {
	if notifier == nil {
		notifier = common.LogNotifier{}
	}
	s := &LiveFlightsScreen{
		API:     api,
		Map:     services.NewLiveMapService(api, notifier),
		Chatter: services.NewChatService(api, notifier),
		rows:    []LiveFlightRow{},
	}
	s.Flights = workers.NewPoller(workers.PollerConfig[dtos.LiveFlight]{
		Source:         constants.OpLiveFlights,
		Plugin:         constants.PluginLiveFlights,
		Interval:       poll.LiveFlights,
		FailureMessage: constants.MsgFailedLiveFlights,
		Notifier:       notifier,
		Metrics:        reg,
		OnChange:       s.applyFlights,
	}, api.LiveFlights)
	s.Chat = workers.NewPoller(workers.PollerConfig[dtos.ChatMessage]{
		Source:         constants.OpChatMessages,
		Plugin:         constants.PluginLiveFlights,
		Interval:       poll.Chat,
		FailureMessage: constants.MsgFailedChat,
		Notifier:       notifier,
		Metrics:        reg,
		OnChange:       func([]dtos.ChatMessage) { s.changed() },
	}, api.ChatMessages)
	return s
}

// OnUpdate registers a callback fired after every applied poll.
func (s *LiveFlightsScreen) OnUpdate(fn func()) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// Mount loads the map style and starts both pollers.
func (s *LiveFlightsScreen) Mount(ctx context.Context) {
	style, err := s.API.MapStyle(ctx)
	if err != nil {
		logging.Warn("Error fetching map style", "error", err.Error())
	} else {
		s.mu.Lock()
		s.mapStyle = style
		s.mu.Unlock()
	}
	s.Flights.Start(ctx)
	s.Chat.Start(ctx)
}

// Unmount stops both pollers and waits for them to drain.
func (s *LiveFlightsScreen) Unmount() {
	s.Flights.Stop()
	s.Chat.Stop()
	s.Flights.Wait()
	s.Chat.Wait()
}

func (s *LiveFlightsScreen) applyFlights(items []dtos.LiveFlight) {
	rows := make([]LiveFlightRow, 0, len(items))
	for _, f := range items {
		rows = append(rows, liveFlightRow(f))
	}
	s.Map.Update(items)

	s.mu.Lock()
	s.rows = rows
	s.mu.Unlock()
	s.changed()
}

func (s *LiveFlightsScreen) changed() {
	s.mu.Lock()
	fn := s.onUpdate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *LiveFlightsScreen) Rows() []LiveFlightRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LiveFlightRow, len(s.rows))
	copy(out, s.rows)
	return out
}

func (s *LiveFlightsScreen) MapStyle() *dtos.MapStyle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapStyle
}

func (s *LiveFlightsScreen) Messages() []dtos.ChatMessage {
	return s.Chat.Snapshot()
}

func (s *LiveFlightsScreen) Markers() []services.Marker {
	return s.Map.Markers()
}

// SelectFlight selects the marker of a live flight and loads its track.
func (s *LiveFlightsScreen) SelectFlight(ctx context.Context, actmpID string) (*services.Selection, error) {
	for _, f := range s.Flights.Snapshot() {
		if f.ActmpID.String() == actmpID {
			return s.Map.Select(ctx, f)
		}
	}
	return nil, fmt.Errorf("no live flight with id %q", actmpID)
}

// SendMessage posts a chat message and refreshes the chat on success.
func (s *LiveFlightsScreen) SendMessage(ctx context.Context, text string) error {
	if err := s.Chatter.Send(ctx, text); err != nil {
		return err
	}
	s.Chat.FetchNow(ctx)
	return nil
}
