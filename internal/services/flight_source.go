package services

import (
	"fmt"

	"cav/flightrelay/internal/models/dtos"
)

// SourceKind tags where a flight was listed from. It decides how the flight
// is labelled and forms the prefix of the booking id.
type SourceKind int

const (
	SourceSchedule SourceKind = iota
	SourceTour
	SourceEvent
	SourceDispatched
)

var sourceNames = map[SourceKind]string{
	SourceSchedule:   "schedule",
	SourceTour:       "tour",
	SourceEvent:      "event",
	SourceDispatched: "dispatched",
}

func (k SourceKind) String() string {
	if name, ok := sourceNames[k]; ok {
		return name
	}
	return fmt.Sprintf("source(%d)", int(k))
}

// ParseSourceKind maps a source name back to its kind.
func ParseSourceKind(name string) (SourceKind, error) {
	for k, n := range sourceNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown flight source %q", name)
}

// labelStrategies render the headline of a flight row per source.
var labelStrategies = map[SourceKind]func(f dtos.Flight) string{
	SourceTour: func(f dtos.Flight) string {
		return f.Name + " - Leg " + f.LegNumber.String()
	},
	SourceEvent: func(f dtos.Flight) string {
		return f.EventType + " - " + f.Name
	},
}

func defaultLabel(f dtos.Flight) string {
	return f.Number
}

// FlightSource is a flight together with the listing it came from.
type FlightSource struct {
	Kind   SourceKind
	Flight dtos.Flight
}

// Label renders the flight headline for its source.
func (s FlightSource) Label() string {
	if render, ok := labelStrategies[s.Kind]; ok {
		return render(s.Flight)
	}
	return defaultLabel(s.Flight)
}

// BookingID is the flightID sent with a book request.
func (s FlightSource) BookingID(aircraftID dtos.FlexID) string {
	return fmt.Sprintf("%s-%s-%s", s.Kind, s.Flight.ID, aircraftID)
}
