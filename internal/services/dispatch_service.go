package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/models/dtos"
)

var (
	ErrNoAircraft          = errors.New(constants.MsgNoAircraft)
	ErrDispatchFailed      = errors.New(constants.MsgFailedDispatch)
	ErrBookingNotFound     = errors.New(constants.MsgDispatchNotFound)
	ErrNoRecoverableFlight = errors.New(constants.MsgNoRecoverableFlight)
	ErrBookingsUnavailable = errors.New(constants.MsgFailedBookings)
)

// defaultNetwork is the online network a flight starts on
const defaultNetwork = "offline"

// FlightCenterAPI is the relay surface used by dispatch actions.
type FlightCenterAPI interface {
	BookFlight(ctx context.Context, flightID string) (*dtos.BookFlightResponse, error)
	UnbookFlight(ctx context.Context, bidID dtos.FlexID) error
	Bookings(ctx context.Context) ([]dtos.Flight, error)
}

// HostActions is the host API surface used to hand a flight over to other plugins.
type HostActions interface {
	StartFlight(ctx context.Context, flight dtos.FlightStart) error
	RestoreFlight(ctx context.Context, flight dtos.FlightRestore) error
	RecoverableFlight(ctx context.Context) (*dtos.RecoverableFlight, error)
	SetSimBriefFlightInfo(ctx context.Context, info dtos.SimBriefFlightInfo) error
	Navigate(ctx context.Context, pluginID string) error
}

// DispatchRequest carries one flight and the reference data needed to act on it.
type DispatchRequest struct {
	Source   FlightSource
	Airports []dtos.Airport
	Aircraft []dtos.Aircraft
	// Network defaults to offline
	Network string
	// Route overrides the scheduled route when set
	Route string
}

func (r DispatchRequest) aircraft() *dtos.Aircraft {
	return dtos.FindAircraft(r.Source.Flight.CandidateAircraft(), r.Aircraft)
}

func (r DispatchRequest) network() string {
	if r.Network == "" {
		return defaultNetwork
	}
	return r.Network
}

func (r DispatchRequest) route() []string {
	route := r.Route
	if route == "" {
		route = r.Source.Flight.RouteString()
	}
	fields := strings.Fields(route)
	if fields == nil {
		return []string{}
	}
	return fields
}

// DispatchService implements the book, unbook, fly, restore and SimBrief actions.
type DispatchService struct {
	FlightCenter FlightCenterAPI
	Host         HostActions
	Notifier     common.Notifier
	Units        dtos.CoreSettings
}

func NewDispatchService(fc FlightCenterAPI, host HostActions, notifier common.Notifier) *DispatchService {
	if notifier == nil {
		notifier = common.LogNotifier{}
	}
	return &DispatchService{
		FlightCenter: fc,
		Host:         host,
		Notifier:     notifier,
		Units:        dtos.DefaultCoreSettings(),
	}
}

// Book dispatches the flight and returns the new bid id. A reply without a
// bid id counts as a failure.
func (s *DispatchService) Book(ctx context.Context, req DispatchRequest) (dtos.FlexID, error) {
	aircraft := req.aircraft()
	if aircraft == nil {
		s.notify(constants.NotifyDanger, constants.MsgNoAircraft)
		return "", ErrNoAircraft
	}
	return s.book(ctx, req.Source, aircraft)
}

func (s *DispatchService) book(ctx context.Context, src FlightSource, aircraft *dtos.Aircraft) (dtos.FlexID, error) {
	resp, err := s.FlightCenter.BookFlight(ctx, src.BookingID(aircraft.ID))
	if err == nil && (resp == nil || resp.BidID == "") {
		err = errors.New("response carried no bidID")
	}
	if err != nil {
		logging.Warn("Failed to dispatch flight", "flight_id", src.Flight.ID.String(), "error", err.Error())
		s.notify(constants.NotifyDanger, constants.MsgFailedDispatch)
		return "", fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	s.notify(constants.NotifySuccess, constants.MsgDispatched)
	return resp.BidID, nil
}

// Unbook deletes a dispatch. The caller re-fetches bookings on success.
func (s *DispatchService) Unbook(ctx context.Context, bidID dtos.FlexID) error {
	if err := s.FlightCenter.UnbookFlight(ctx, bidID); err != nil {
		logging.Warn("Failed to delete dispatch", "bid_id", bidID.String(), "error", err.Error())
		s.notify(constants.NotifyDanger, constants.MsgFailedUnbook)
		return err
	}
	return nil
}

// Fly books the flight if needed, confirms the bid is listed and hands the
// flight to the tracking plugin. ErrBookingNotFound tells the caller to
// refresh its bookings.
func (s *DispatchService) Fly(ctx context.Context, req DispatchRequest) error {
	aircraft := req.aircraft()
	if aircraft == nil {
		s.notify(constants.NotifyDanger, constants.MsgNoAircraft)
		return ErrNoAircraft
	}

	bidID := req.Source.Flight.BidID
	if bidID == "" {
		var err error
		if bidID, err = s.book(ctx, req.Source, aircraft); err != nil {
			return err
		}
	}

	if err := s.confirmBid(ctx, bidID); err != nil {
		return err
	}

	start := s.flightStart(req, aircraft, bidID)
	if err := s.Host.StartFlight(ctx, start); err != nil {
		logging.Error("Failed to start flight", "bid_id", bidID.String(), "error", err.Error())
		return fmt.Errorf("start flight: %w", err)
	}
	if err := s.Host.Navigate(ctx, constants.PluginFlightTracking); err != nil {
		logging.Error("Failed to navigate to flight tracking", "error", err.Error())
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

// Restore resumes an interrupted flight recorded by the host for this bid.
func (s *DispatchService) Restore(ctx context.Context, req DispatchRequest) error {
	aircraft := req.aircraft()
	if aircraft == nil {
		s.notify(constants.NotifyDanger, constants.MsgNoAircraft)
		return ErrNoAircraft
	}

	bidID := req.Source.Flight.BidID
	recovered, err := s.Host.RecoverableFlight(ctx)
	if err != nil || recovered == nil || bidID == "" || recovered.BidID != bidID {
		s.notify(constants.NotifyDanger, constants.MsgNoRecoverableFlight)
		return ErrNoRecoverableFlight
	}

	if err := s.confirmBid(ctx, bidID); err != nil {
		return err
	}

	restore := dtos.FlightRestore{
		FlightStart:       s.flightStart(req, aircraft, bidID),
		ProfilerData:      recovered.ProfilerData,
		FlightLog:         recovered.FlightLog,
		GUID:              recovered.GUID,
		UUID:              recovered.UUID,
		Phase:             recovered.Phase,
		ElapsedTime:       recovered.ElapsedTime,
		ElapsedFlightTime: recovered.ElapsedFlightTime,
		BlockTime:         recovered.BlockTime,
		StartingFuel:      recovered.StartingFuel,
		LoggerConfig:      recovered.LoggerConfig,
	}
	if err := s.Host.RestoreFlight(ctx, restore); err != nil {
		logging.Error("Failed to restore flight", "bid_id", bidID.String(), "error", err.Error())
		s.notify(constants.NotifyDanger, constants.MsgNoRecoverableFlight)
		return fmt.Errorf("%w: %v", ErrNoRecoverableFlight, err)
	}
	if err := s.Host.Navigate(ctx, constants.PluginFlightTracking); err != nil {
		s.notify(constants.NotifyDanger, constants.MsgNoRecoverableFlight)
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

// PlanWithSimBrief books the flight if needed and hands it to SimBrief.
func (s *DispatchService) PlanWithSimBrief(ctx context.Context, req DispatchRequest) error {
	aircraft := req.aircraft()
	if aircraft == nil {
		s.notify(constants.NotifyDanger, constants.MsgNoAircraft)
		return ErrNoAircraft
	}

	flight := req.Source.Flight
	bidID := flight.BidID
	if bidID == "" {
		var err error
		if bidID, err = s.book(ctx, req.Source, aircraft); err != nil {
			return err
		}
	}

	airline, number := splitFlightNumber(flight.Number)
	info := dtos.SimBriefFlightInfo{
		BidID:         bidID,
		Airline:       airline,
		FlightNumber:  number,
		Departure:     dtos.FindAirport(flight.DepartureAirport, req.Airports),
		Arrival:       dtos.FindAirport(flight.ArrivalAirport, req.Airports),
		Route:         strings.Join(req.route(), " "),
		Aircraft:      aircraft,
		DepartureTime: flight.DepartureTime,
		Type:          flight.Type,
		Network:       req.network(),
	}

	err := s.Host.SetSimBriefFlightInfo(ctx, info)
	if err == nil {
		err = s.Host.Navigate(ctx, constants.PluginSimBrief)
	}
	if err != nil {
		logging.Warn("Failed to plan flight with SimBrief", "bid_id", bidID.String(), "error", err.Error())
		s.notify(constants.NotifyDanger, constants.MsgFailedSimBrief)
		return err
	}
	return nil
}

// confirmBid re-fetches bookings and checks the bid is still listed.
func (s *DispatchService) confirmBid(ctx context.Context, bidID dtos.FlexID) error {
	bookings, err := s.FlightCenter.Bookings(ctx)
	if err != nil {
		logging.Warn("Failed to get dispatched flights", "error", err.Error())
		s.notify(constants.NotifyDanger, constants.MsgFailedBookings)
		return fmt.Errorf("%w: %v", ErrBookingsUnavailable, err)
	}
	for _, b := range bookings {
		if b.BidID == bidID {
			return nil
		}
	}
	s.notify(constants.NotifyDanger, constants.MsgDispatchNotFound)
	return ErrBookingNotFound
}

func (s *DispatchService) flightStart(req DispatchRequest, aircraft *dtos.Aircraft, bidID dtos.FlexID) dtos.FlightStart {
	f := req.Source.Flight
	return dtos.FlightStart{
		Number:               f.Code + f.Number,
		Departure:            dtos.FindAirport(f.DepartureAirport, req.Airports),
		Arrival:              dtos.FindAirport(f.ArrivalAirport, req.Airports),
		Aircraft:             aircraft,
		FlightTime:           f.FlightTime,
		DepartureTime:        f.DepartureTime,
		ArrivalTime:          f.ArrivalTime,
		Network:              req.network(),
		Cruise:               f.FlightLevel,
		Route:                req.route(),
		Distance:             f.Distance,
		BidID:                bidID,
		WeightUnits:          s.Units.WeightUnits,
		AltitudeUnits:        s.Units.AltitudeUnits,
		LandingDistanceUnits: s.Units.LandingDistanceUnits,
		Type:                 f.Type,
	}
}

func (s *DispatchService) notify(kind constants.NotificationType, message string) {
	s.Notifier.Notify(common.Notification{
		Plugin:  constants.PluginFlightCenter,
		Type:    kind,
		Message: message,
	})
}

// splitFlightNumber separates the three letter airline prefix from the number.
func splitFlightNumber(number string) (string, string) {
	if len(number) <= 3 {
		return number, ""
	}
	return number[:3], number[3:]
}
