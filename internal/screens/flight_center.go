package screens

import (
	"context"
	"errors"
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

// FlightCenterAPI is the relay surface behind the flight center screens.
type FlightCenterAPI interface {
	services.FlightCenterAPI
	ReferenceAPI
}

// HostAPI is the host surface behind the flight center screens.
type HostAPI interface {
	services.HostActions
	GetSettings(ctx context.Context) (*dtos.HostSettings, error)
	IsPluginInstalled(ctx context.Context, pluginID string) bool
}

// BidsScreen lists dispatched flights and acts on them.
type BidsScreen struct {
	API      FlightCenterAPI
	Host     HostAPI
	Dispatch *services.DispatchService
	Bookings *workers.Poller[dtos.Flight]
	Notifier common.Notifier

	ref referenceData

	mu               sync.Mutex
	recoverable      *dtos.RecoverableFlight
	simBriefEnabled  bool
	logbookInstalled bool
}

func NewBidsScreen(api FlightCenterAPI, host HostAPI, poll config.PollConfig, notifier common.Notifier, reg *metrics.MetricsRegistry) *BidsScreen {
	if notifier == nil {
		notifier = common.LogNotifier{}
	}
	s := &BidsScreen{
		API:      api,
		Host:     host,
		Dispatch: services.NewDispatchService(api, host, notifier),
		Notifier: notifier,
	}
	s.Bookings = workers.NewPoller(workers.PollerConfig[dtos.Flight]{
		Source:         constants.OpBookings,
		Plugin:         constants.PluginFlightCenter,
		Interval:       poll.Bookings,
		FailureMessage: constants.MsgFailedBookings,
		Notifier:       notifier,
		Metrics:        reg,
	}, api.Bookings)
	return s
}

// Mount loads settings, reference data, the recoverable flight and the
// first bookings listing, then starts polling bookings. Actions are usable
// as soon as Mount returns.
func (s *BidsScreen) Mount(ctx context.Context) {
	if settings, err := s.Host.GetSettings(ctx); err != nil {
		logging.Warn("Failed to retrieve settings", "error", err.Error())
		s.Notifier.Notify(common.Notification{
			Plugin:  constants.PluginFlightCenter,
			Type:    constants.NotifyDanger,
			Message: constants.MsgFailedSettings,
		})
	} else {
		s.Dispatch.Units = settings.Core
	}

	s.ref.load(ctx, s.API, s.Notifier)
	s.refreshRecoverable(ctx)

	simBrief := s.Host.IsPluginInstalled(ctx, constants.PluginSimBrief)
	logbook := s.Host.IsPluginInstalled(ctx, constants.PluginLogbook)
	s.mu.Lock()
	s.simBriefEnabled = simBrief
	s.logbookInstalled = logbook
	s.mu.Unlock()

	s.Bookings.FetchNow(ctx)
	s.Bookings.Start(ctx)
}

func (s *BidsScreen) Unmount() {
	s.Bookings.Stop()
	s.Bookings.Wait()
}

// refreshRecoverable looks up the host's interrupted flight. Errors are ignored.
func (s *BidsScreen) refreshRecoverable(ctx context.Context) {
	rf, err := s.Host.RecoverableFlight(ctx)
	if err != nil {
		logging.Debug("No recoverable flight", "error", err.Error())
		rf = nil
	}
	s.mu.Lock()
	s.recoverable = rf
	s.mu.Unlock()
}

func (s *BidsScreen) SimBriefInstalled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simBriefEnabled
}

func (s *BidsScreen) LogbookInstalled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logbookInstalled
}

// Rows renders the current bookings. Nothing is listed until airports load.
func (s *BidsScreen) Rows() []FlightRow {
	airports, aircraft := s.ref.get()
	if len(airports) == 0 {
		return []FlightRow{}
	}

	s.mu.Lock()
	recoverable := s.recoverable
	s.mu.Unlock()

	bookings := s.Bookings.Snapshot()
	rows := make([]FlightRow, 0, len(bookings))
	for _, b := range bookings {
		src := services.FlightSource{Kind: services.SourceDispatched, Flight: b}
		row := buildRow(flightSourceView{label: src.Label(), flight: b}, aircraft)
		row.Recoverable = recoverable != nil && b.IsBooked() && recoverable.BidID == b.BidID
		rows = append(rows, row)
	}
	return rows
}

func (s *BidsScreen) request(bidID string) (services.DispatchRequest, error) {
	for _, b := range s.Bookings.Snapshot() {
		if b.BidID.String() != bidID {
			continue
		}
		// a booking carries the aircraft it was dispatched with
		b.DefaultAircraft = b.Aircraft.First()
		b.Aircraft = nil
		airports, aircraft := s.ref.get()
		return services.DispatchRequest{
			Source:   services.FlightSource{Kind: services.SourceDispatched, Flight: b},
			Airports: airports,
			Aircraft: aircraft,
		}, nil
	}
	return services.DispatchRequest{}, fmt.Errorf("no dispatched flight with bid %q", bidID)
}

// Unbook deletes a dispatch and re-fetches bookings on success.
func (s *BidsScreen) Unbook(ctx context.Context, bidID string) error {
	if err := s.Dispatch.Unbook(ctx, dtos.FlexID(bidID)); err != nil {
		return err
	}
	s.Bookings.FetchNow(ctx)
	return nil
}

// Fly starts tracking a dispatched flight. When the bid has vanished the
// bookings are re-fetched.
func (s *BidsScreen) Fly(ctx context.Context, bidID string, network string) error {
	req, err := s.request(bidID)
	if err != nil {
		return err
	}
	req.Network = network
	err = s.Dispatch.Fly(ctx, req)
	if errors.Is(err, services.ErrBookingNotFound) {
		s.Bookings.FetchNow(ctx)
	}
	return err
}

// Restore resumes the interrupted flight for a bid.
func (s *BidsScreen) Restore(ctx context.Context, bidID string, network string) error {
	req, err := s.request(bidID)
	if err != nil {
		return err
	}
	req.Network = network
	err = s.Dispatch.Restore(ctx, req)
	if errors.Is(err, services.ErrBookingNotFound) {
		s.Bookings.FetchNow(ctx)
	}
	return err
}

// PlanWithSimBrief hands a dispatched flight to SimBrief.
func (s *BidsScreen) PlanWithSimBrief(ctx context.Context, bidID string, network string) error {
	req, err := s.request(bidID)
	if err != nil {
		return err
	}
	req.Network = network
	return s.Dispatch.PlanWithSimBrief(ctx, req)
}
