package dtos

import (
	"encoding/json"
	"strings"
)

// Flight is a schedule, tour leg, event flight or dispatched booking.
// A non-empty BidID marks a booking.
type Flight struct {
	ID               FlexID    `json:"id"`
	Number           string    `json:"number"`
	Code             string    `json:"code,omitempty"`
	DepartureAirport string    `json:"departureAirport"`
	ArrivalAirport   string    `json:"arrivalAirport"`
	Aircraft         FlexIDs   `json:"aircraft"`
	DefaultAircraft  FlexID    `json:"defaultAircraft,omitempty"`
	Distance         FlexFloat `json:"distance"`
	FlightTime       FlexFloat `json:"flightTime"`
	DepartureTime    string    `json:"departureTime,omitempty"`
	ArrivalTime      string    `json:"arrivalTime,omitempty"`
	FlightLevel      FlexID    `json:"flightLevel,omitempty"`
	Route            []string  `json:"route,omitempty"`
	BidID            FlexID    `json:"bidID,omitempty"`
	Type             string    `json:"type,omitempty"`

	// Tour and event decoration
	Name         string `json:"name,omitempty"`
	LegNumber    FlexID `json:"legNumber,omitempty"`
	EventType    string `json:"eventType,omitempty"`
	AirlineImage string `json:"airlineImage,omitempty"`
	Completed    bool   `json:"completed,omitempty"`
}

// IsBooked reports whether the flight has been dispatched.
func (f Flight) IsBooked() bool { return f.BidID != "" }

// CandidateAircraft returns the aircraft id a dispatch should use: the first
// listed aircraft, falling back to the default assigned on the booking.
func (f Flight) CandidateAircraft() FlexID {
	if id := f.Aircraft.First(); id != "" {
		return id
	}
	return f.DefaultAircraft
}

// RouteString joins the route waypoints with spaces.
func (f Flight) RouteString() string {
	return strings.Join(f.Route, " ")
}

type Airport struct {
	ID        FlexID    `json:"id"`
	Code      string    `json:"code"`
	ICAO      string    `json:"icao,omitempty"`
	Name      string    `json:"name"`
	Latitude  FlexFloat `json:"latitude"`
	Longitude FlexFloat `json:"longitude"`
}

type Aircraft struct {
	ID           FlexID `json:"id"`
	Code         string `json:"code,omitempty"`
	Name         string `json:"name"`
	Registration string `json:"registration,omitempty"`
}

// FindAirport resolves an airport by code, ICAO or id (case-insensitive).
func FindAirport(code string, airports []Airport) *Airport {
	if code == "" {
		return nil
	}
	for i := range airports {
		a := &airports[i]
		if strings.EqualFold(a.Code, code) || strings.EqualFold(a.ICAO, code) || string(a.ID) == code {
			return a
		}
	}
	return nil
}

// FindAircraft resolves an aircraft by id.
func FindAircraft(id FlexID, aircraft []Aircraft) *Aircraft {
	if id == "" {
		return nil
	}
	for i := range aircraft {
		if aircraft[i].ID == id {
			return &aircraft[i]
		}
	}
	return nil
}

type Tour struct {
	ID       FlexID `json:"id,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Label renders the tour the way the search screen lists it.
func (t Tour) Label() string {
	return t.Name + " [" + t.Category + "]"
}

type TourCategory struct {
	ID   FlexID `json:"id,omitempty"`
	Name string `json:"name"`
}

type BookFlightRequest struct {
	FlightID string `json:"flightID"`
}

type BookFlightResponse struct {
	BidID FlexID `json:"bidID"`
}

type UnbookFlightRequest struct {
	BidID FlexID `json:"bidID"`
}

// FlightStart is handed to the flight-tracking plugin to begin a flight.
type FlightStart struct {
	Number               string    `json:"number"`
	Departure            *Airport  `json:"departure"`
	Arrival              *Airport  `json:"arrival"`
	Aircraft             *Aircraft `json:"aircraft"`
	FlightTime           FlexFloat `json:"flightTime"`
	DepartureTime        string    `json:"departureTime,omitempty"`
	ArrivalTime          string    `json:"arrivalTime,omitempty"`
	Network              string    `json:"network"`
	Cruise               FlexID    `json:"cruise,omitempty"`
	Route                []string  `json:"route"`
	Distance             FlexFloat `json:"distance"`
	BidID                FlexID    `json:"bidId"`
	WeightUnits          string    `json:"weightUnits"`
	AltitudeUnits        string    `json:"altitudeUnits"`
	LandingDistanceUnits string    `json:"landingDistanceUnits"`
	Type                 string    `json:"type,omitempty"`
}

// FlightRestore extends FlightStart with the recovered tracking state.
type FlightRestore struct {
	FlightStart
	ProfilerData      json.RawMessage `json:"profilerData,omitempty"`
	FlightLog         json.RawMessage `json:"flightLog,omitempty"`
	GUID              string          `json:"guid,omitempty"`
	UUID              string          `json:"uuid,omitempty"`
	Phase             string          `json:"phase,omitempty"`
	ElapsedTime       FlexFloat       `json:"elapsedTime"`
	ElapsedFlightTime FlexFloat       `json:"elapsedFlightTime"`
	BlockTime         FlexFloat       `json:"blockTime"`
	StartingFuel      FlexFloat       `json:"startingFuel"`
	LoggerConfig      json.RawMessage `json:"loggerConfig,omitempty"`
}

// RecoverableFlight is the interrupted flight the host can resume.
type RecoverableFlight struct {
	BidID             FlexID          `json:"bidID"`
	ProfilerData      json.RawMessage `json:"profilerData,omitempty"`
	FlightLog         json.RawMessage `json:"flightLog,omitempty"`
	GUID              string          `json:"guid,omitempty"`
	UUID              string          `json:"uuid,omitempty"`
	Phase             string          `json:"phase,omitempty"`
	ElapsedTime       FlexFloat       `json:"elapsedTime"`
	ElapsedFlightTime FlexFloat       `json:"elapsedFlightTime"`
	BlockTime         FlexFloat       `json:"blockTime"`
	StartingFuel      FlexFloat       `json:"startingFuel"`
	LoggerConfig      json.RawMessage `json:"loggerConfig,omitempty"`
}

// SimBriefFlightInfo is posted to the SimBrief plugin.
type SimBriefFlightInfo struct {
	BidID         FlexID    `json:"bidId"`
	Airline       string    `json:"airline"`
	FlightNumber  string    `json:"flightNumber"`
	Departure     *Airport  `json:"departure"`
	Arrival       *Airport  `json:"arrival"`
	Route         string    `json:"route,omitempty"`
	Aircraft      *Aircraft `json:"aircraft"`
	DepartureTime string    `json:"departureTime,omitempty"`
	Type          string    `json:"type,omitempty"`
	Network       string    `json:"network"`
}

type SimBriefRequest struct {
	FlightInfo SimBriefFlightInfo `json:"flightInfo"`
}
