package services

import (
	"bytes"
	"context"
	"html/template"
	"sync"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/models/dtos"

	"github.com/golang/geo/s2"
)

// arcSegments is the number of great-circle segments drawn per route
const arcSegments = 100

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Marker is the map projection of one live flight.
type Marker struct {
	LatLng
	Heading      float64 `json:"heading"`
	Icon         string  `json:"icon"`
	PopupContent string  `json:"popupContent"`
	Departure    LatLng  `json:"departure"`
	Arrival      LatLng  `json:"arrival"`
	DepICAO      string  `json:"depIcao"`
	ArrICAO      string  `json:"arrIcao"`
	ActmpID      string  `json:"actmpId"`
}

var popupTemplate = template.Must(template.New("popup").Parse(`<div class="flex items-center">{{.FlightNum}}</div>
<div class="flex items-center">{{.Pilot}}</div>
<div class="flex items-center">{{.DepICAO}} &rarr; {{.ArrICAO}}</div>
<div class="flex items-center">Altitude: {{.StatAltitude}} ft</div>
<div class="flex items-center">Heading: {{.StatHdg}}&deg;</div>
<div class="flex items-center">Ground Speed: {{.StatSpeed}} kt</div>
<div class="flex items-center">{{.AircraftTypeID}}</div>
<div class="flex items-center">ETA: {{.ETA}} HH:MM DTG: {{.DTG}} nm</div>
<div class="flex items-center">{{.StatStage}}</div>
<hr>
<div class="progress" role="progressbar" aria-valuenow="{{.PercComplete}}" aria-valuemin="0" aria-valuemax="100"><div class="progress-bar" style="width: {{.PercComplete}}%">{{.PercComplete}}%</div></div>
`))

// RenderPopup renders the popup shown for a live flight marker.
func RenderPopup(f dtos.LiveFlight) string {
	var buf bytes.Buffer
	if err := popupTemplate.Execute(&buf, f); err != nil {
		logging.Warn("Failed to render marker popup", "flight", f.FlightNum, "error", err.Error())
		return ""
	}
	return buf.String()
}

// ProjectMarker maps one live flight to its marker.
func ProjectMarker(f dtos.LiveFlight) Marker {
	return Marker{
		LatLng:       LatLng{Lat: f.PresLat.Float64(), Lng: f.PresLong.Float64()},
		Heading:      f.StatHdg.Float64(),
		Icon:         f.Icon,
		PopupContent: RenderPopup(f),
		Departure:    LatLng{Lat: f.StartLat.Float64(), Lng: f.StartLong.Float64()},
		Arrival:      LatLng{Lat: f.ArrLat.Float64(), Lng: f.ArrLong.Float64()},
		DepICAO:      f.DepICAORaw,
		ArrICAO:      f.ArrICAORaw,
		ActmpID:      f.ActmpID.String(),
	}
}

// ProjectMarkers recomputes the full marker list; nothing is diffed.
func ProjectMarkers(flights []dtos.LiveFlight) []Marker {
	markers := make([]Marker, 0, len(flights))
	for _, f := range flights {
		markers = append(markers, ProjectMarker(f))
	}
	return markers
}

// GreatCircleArc returns segments+1 points along the shortest path from a to b.
func GreatCircleArc(a, b LatLng, segments int) []LatLng {
	if segments < 1 {
		segments = 1
	}
	pa := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Lat, a.Lng))
	pb := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Lat, b.Lng))

	out := make([]LatLng, 0, segments+1)
	for i := 0; i <= segments; i++ {
		ll := s2.LatLngFromPoint(s2.Interpolate(float64(i)/float64(segments), pa, pb))
		out = append(out, LatLng{Lat: ll.Lat.Degrees(), Lng: ll.Lng.Degrees()})
	}
	return out
}

// PathFetcher loads the flown track of one live flight.
type PathFetcher interface {
	PathData(ctx context.Context, id string) ([]dtos.PathPoint, error)
}

// Selection is the marker the user picked with its track and planned arc.
type Selection struct {
	Marker Marker
	Path   []LatLng
	Arc    []LatLng
}

// LiveMapService holds the current marker set and selection.
type LiveMapService struct {
	Paths    PathFetcher
	Notifier common.Notifier

	mu        sync.Mutex
	markers   []Marker
	selection *Selection
	selectGen uint64
}

func NewLiveMapService(paths PathFetcher, notifier common.Notifier) *LiveMapService {
	if notifier == nil {
		notifier = common.LogNotifier{}
	}
	return &LiveMapService{Paths: paths, Notifier: notifier, markers: []Marker{}}
}

// Update replaces every marker from the latest collection.
func (s *LiveMapService) Update(flights []dtos.LiveFlight) []Marker {
	markers := ProjectMarkers(flights)
	s.mu.Lock()
	s.markers = markers
	s.mu.Unlock()
	return markers
}

func (s *LiveMapService) Markers() []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// Select picks the marker for a live flight and fetches its track. The new
// track replaces any previous one; a selection overtaken by a later one is
// dropped when its track arrives.
func (s *LiveMapService) Select(ctx context.Context, f dtos.LiveFlight) (*Selection, error) {
	marker := ProjectMarker(f)

	s.mu.Lock()
	s.selectGen++
	gen := s.selectGen
	s.selection = &Selection{
		Marker: marker,
		Path:   []LatLng{},
		Arc:    GreatCircleArc(marker.Departure, marker.Arrival, arcSegments),
	}
	s.mu.Unlock()

	points, err := s.Paths.PathData(ctx, marker.ActmpID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.selectGen {
		return s.copySelection(), nil
	}
	if err != nil {
		logging.Warn("Error while getting path data", "actmp_id", marker.ActmpID, "error", err.Error())
		s.Notifier.Notify(common.Notification{
			Plugin:  constants.PluginLiveFlights,
			Type:    constants.NotifyDanger,
			Message: constants.MsgFailedPath,
		})
		return s.copySelection(), err
	}

	path := make([]LatLng, 0, len(points))
	for _, p := range points {
		path = append(path, LatLng{Lat: p.Latitude.Float64(), Lng: p.Longitude.Float64()})
	}
	s.selection.Path = path
	return s.copySelection(), nil
}

// Selected returns the current selection, or nil.
func (s *LiveMapService) Selected() *Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copySelection()
}

func (s *LiveMapService) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectGen++
	s.selection = nil
}

func (s *LiveMapService) copySelection() *Selection {
	if s.selection == nil {
		return nil
	}
	cp := *s.selection
	cp.Path = append([]LatLng(nil), s.selection.Path...)
	cp.Arc = append([]LatLng(nil), s.selection.Arc...)
	return &cp
}
