package dtos

// LiveFlight is one position sample of a flight in progress. Display fields
// may carry HTML markup from the airline site.
type LiveFlight struct {
	ID             FlexID    `json:"id"`
	FlightNum      string    `json:"flightnum"`
	Pilot          string    `json:"pilot"`
	DepICAO        string    `json:"depicao"`
	ArrICAO        string    `json:"arricao"`
	DepICAORaw     string    `json:"depicaoRaw"`
	ArrICAORaw     string    `json:"arricaoRaw"`
	Aircraft       string    `json:"aircraft"`
	AircraftTypeID string    `json:"aircraftTypeId"`
	Type           string    `json:"type"`
	Phase          string    `json:"phase"`
	DistRemain     FlexID    `json:"distremain"`
	TimeRemain     string    `json:"timeremain"`
	PresLat        FlexFloat `json:"presLat"`
	PresLong       FlexFloat `json:"presLong"`
	StartLat       FlexFloat `json:"startLat"`
	StartLong      FlexFloat `json:"startLong"`
	ArrLat         FlexFloat `json:"arrLat"`
	ArrLong        FlexFloat `json:"arrLong"`
	StatHdg        FlexFloat `json:"statHdg"`
	StatSpeed      FlexFloat `json:"statSpeed"`
	StatAltitude   FlexFloat `json:"statAltitude"`
	StatStage      string    `json:"statStage"`
	ETA            string    `json:"eta"`
	DTG            FlexID    `json:"dtg"`
	PercComplete   FlexFloat `json:"perc_complete"`
	Icon           string    `json:"icon"`
	ActmpID        FlexID    `json:"actmpId"`
}

// PathPoint is one sample of the flown track.
type PathPoint struct {
	Latitude  FlexFloat `json:"Latitude"`
	Longitude FlexFloat `json:"Longitude"`
}

type MapStyle struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

type ChatMessage struct {
	MessageID FlexID `json:"messageId"`
	PilotID   FlexID `json:"pilotId"`
	Pilot     string `json:"pilot"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
