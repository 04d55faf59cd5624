package screens

import (
	"context"
	"sync"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/models/dtos"

	"golang.org/x/sync/errgroup"
)

// ReferenceAPI loads the reference lists a flight screen resolves against.
type ReferenceAPI interface {
	Airports(ctx context.Context) ([]dtos.Airport, error)
	Aircraft(ctx context.Context) ([]dtos.Aircraft, error)
}

// referenceData is read-only once loaded.
type referenceData struct {
	mu       sync.RWMutex
	airports []dtos.Airport
	aircraft []dtos.Aircraft
}

// load fetches airports and aircraft concurrently. Each failure raises its
// own notification and leaves that list empty.
func (r *referenceData) load(ctx context.Context, api ReferenceAPI, notifier common.Notifier) {
	var airports []dtos.Airport
	var aircraft []dtos.Aircraft

	var g errgroup.Group
	g.Go(func() error {
		var err error
		if airports, err = api.Airports(ctx); err != nil {
			logging.Warn("Failed to fetch airports", "error", err.Error())
			notifier.Notify(common.Notification{Plugin: constants.PluginFlightCenter, Type: constants.NotifyDanger, Message: constants.MsgFailedAirports})
			airports = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if aircraft, err = api.Aircraft(ctx); err != nil {
			logging.Warn("Failed to fetch aircraft", "error", err.Error())
			notifier.Notify(common.Notification{Plugin: constants.PluginFlightCenter, Type: constants.NotifyDanger, Message: constants.MsgFailedAircraft})
			aircraft = nil
		}
		return nil
	})
	_ = g.Wait()

	r.mu.Lock()
	r.airports = airports
	r.aircraft = aircraft
	r.mu.Unlock()
}

func (r *referenceData) get() ([]dtos.Airport, []dtos.Aircraft) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.airports, r.aircraft
}

// FlightRow is one schedule, tour, event or booking line.
type FlightRow struct {
	Label      string
	Departure  string
	Arrival    string
	Distance   string
	FlightTime string
	Type       string
	Aircraft   string
	BidID      string
	Completed  bool
	// Recoverable marks a booking the host can resume
	Recoverable bool
}

func buildRow(src flightSourceView, aircraft []dtos.Aircraft) FlightRow {
	f := src.flight
	row := FlightRow{
		Label:      StripHTML(src.label),
		Departure:  f.DepartureAirport,
		Arrival:    f.ArrivalAirport,
		Distance:   FormatDistance(f.Distance.Float64()),
		FlightTime: FormatDuration(f.FlightTime.Float64()),
		Type:       f.Type,
		BidID:      f.BidID.String(),
		Completed:  f.Completed,
	}
	if ac := dtos.FindAircraft(f.CandidateAircraft(), aircraft); ac != nil {
		row.Aircraft = ac.Name
	}
	return row
}

type flightSourceView struct {
	label  string
	flight dtos.Flight
}
