package screens

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"cav/flightrelay/internal/client"
	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/metrics"
	"cav/flightrelay/internal/models/dtos"
	"cav/flightrelay/internal/services"
	"cav/flightrelay/internal/workers"
)

// TourSearchAPI is the relay surface behind the tour search screen.
type TourSearchAPI interface {
	FlightCenterAPI
	SearchTours(ctx context.Context, q client.TourQuery) ([]dtos.Flight, error)
	Tours(ctx context.Context) ([]dtos.Tour, error)
	TourCategories(ctx context.Context) ([]dtos.TourCategory, error)
}

// EventSearchAPI is the relay surface behind the event search screen.
type EventSearchAPI interface {
	FlightCenterAPI
	SearchEvents(ctx context.Context) ([]dtos.Flight, error)
}

// resultsCap is the listing size at which the screen reports "100+"
const resultsCap = 100

// flightSearch is the state shared by the tour and event search screens.
type flightSearch struct {
	kind     services.SourceKind
	api      FlightCenterAPI
	host     HostAPI
	dispatch *services.DispatchService
	notifier common.Notifier
	results  *workers.Poller[dtos.Flight]
	ref      referenceData
	simBrief atomic.Bool
}

func newFlightSearch(kind services.SourceKind, api FlightCenterAPI, host HostAPI, notifier common.Notifier, reg *metrics.MetricsRegistry, op string, fetch workers.FetchFunc[dtos.Flight]) *flightSearch {
	if notifier == nil {
		notifier = common.LogNotifier{}
	}
	return &flightSearch{
		kind:     kind,
		api:      api,
		host:     host,
		dispatch: services.NewDispatchService(api, host, notifier),
		notifier: notifier,
		results: workers.NewPoller(workers.PollerConfig[dtos.Flight]{
			Source:         op,
			Plugin:         constants.PluginFlightCenter,
			FailureMessage: constants.MsgFailedFlights,
			Describe:       describeFlightSearchError,
			Notifier:       notifier,
			Metrics:        reg,
		}, fetch),
	}
}

// checkPlugins records whether the SimBrief plugin is installed.
func (s *flightSearch) checkPlugins(ctx context.Context) {
	s.simBrief.Store(s.host.IsPluginInstalled(ctx, constants.PluginSimBrief))
}

// SimBriefInstalled gates the plan-with-SimBrief action.
func (s *flightSearch) SimBriefInstalled() bool {
	return s.simBrief.Load()
}

// Rows renders the latest results. Nothing is listed until aircraft load.
func (s *flightSearch) Rows() []FlightRow {
	_, aircraft := s.ref.get()
	if len(aircraft) == 0 {
		return []FlightRow{}
	}
	results := s.results.Snapshot()
	rows := make([]FlightRow, 0, len(results))
	for _, f := range results {
		src := services.FlightSource{Kind: s.kind, Flight: f}
		rows = append(rows, buildRow(flightSourceView{label: src.Label(), flight: f}, aircraft))
	}
	return rows
}

// Summary is the result count line shown above the listing.
func (s *flightSearch) Summary(noun string) string {
	n := len(s.results.Snapshot())
	switch {
	case n >= resultsCap:
		return fmt.Sprintf("%d+ %s Found", resultsCap, noun)
	case n == 1:
		return fmt.Sprintf("1 %s Found", strings.TrimSuffix(noun, "s"))
	case n > 1:
		return fmt.Sprintf("%d %s Found", n, noun)
	default:
		return "No " + noun + " Found"
	}
}

func (s *flightSearch) request(flightID, network, route string) (services.DispatchRequest, error) {
	for _, f := range s.results.Snapshot() {
		if f.ID.String() == flightID {
			airports, aircraft := s.ref.get()
			return services.DispatchRequest{
				Source:   services.FlightSource{Kind: s.kind, Flight: f},
				Airports: airports,
				Aircraft: aircraft,
				Network:  network,
				Route:    route,
			}, nil
		}
	}
	return services.DispatchRequest{}, fmt.Errorf("no listed flight with id %q", flightID)
}

// Book dispatches a listed flight.
func (s *flightSearch) Book(ctx context.Context, flightID string) (dtos.FlexID, error) {
	req, err := s.request(flightID, "", "")
	if err != nil {
		return "", err
	}
	return s.dispatch.Book(ctx, req)
}

// Fly books a listed flight and starts tracking it.
func (s *flightSearch) Fly(ctx context.Context, flightID, network, route string) error {
	req, err := s.request(flightID, network, route)
	if err != nil {
		return err
	}
	return s.dispatch.Fly(ctx, req)
}

// PlanWithSimBrief books a listed flight and hands it to SimBrief.
func (s *flightSearch) PlanWithSimBrief(ctx context.Context, flightID, network, route string) error {
	req, err := s.request(flightID, network, route)
	if err != nil {
		return err
	}
	return s.dispatch.PlanWithSimBrief(ctx, req)
}

// TourSearchScreen searches tour legs by tour and category.
type TourSearchScreen struct {
	*flightSearch
	API TourSearchAPI

	mu         sync.Mutex
	query      client.TourQuery
	tours      []dtos.Tour
	categories []dtos.TourCategory
}

func NewTourSearchScreen(api TourSearchAPI, host HostAPI, notifier common.Notifier, reg *metrics.MetricsRegistry) *TourSearchScreen {
	s := &TourSearchScreen{API: api}
	s.flightSearch = newFlightSearch(services.SourceTour, api, host, notifier, reg, constants.OpSearchTours,
		func(ctx context.Context) ([]dtos.Flight, error) {
			return api.SearchTours(ctx, s.Query())
		})
	return s
}

// Mount loads tours, categories and reference data, then runs a first search.
func (s *TourSearchScreen) Mount(ctx context.Context) {
	tours, err := s.API.Tours(ctx)
	if err != nil {
		logging.Warn("Failed to fetch tours", "error", err.Error())
		s.notifier.Notify(common.Notification{Plugin: constants.PluginFlightCenter, Type: constants.NotifyDanger, Message: "Failed to fetch tours"})
		tours = nil
	}
	sort.SliceStable(tours, func(i, j int) bool { return tours[i].Name < tours[j].Name })

	categories, err := s.API.TourCategories(ctx)
	if err != nil {
		logging.Warn("Failed to fetch tour categories", "error", err.Error())
		s.notifier.Notify(common.Notification{Plugin: constants.PluginFlightCenter, Type: constants.NotifyDanger, Message: "Failed to fetch tour categories"})
		categories = nil
	}

	s.mu.Lock()
	s.tours = tours
	s.categories = categories
	s.mu.Unlock()

	s.ref.load(ctx, s.API, s.notifier)
	s.checkPlugins(ctx)
	s.results.FetchNow(ctx)
}

func (s *TourSearchScreen) Query() client.TourQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Search replaces the query and runs it.
func (s *TourSearchScreen) Search(ctx context.Context, q client.TourQuery) []FlightRow {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
	s.results.FetchNow(ctx)
	return s.Rows()
}

// TourLabels lists tours as "name [category]", narrowed to the current
// category filter when one is set.
func (s *TourSearchScreen) TourLabels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	labels := make([]string, 0, len(s.tours))
	for _, t := range s.tours {
		if s.query.Category != "" && !strings.EqualFold(t.Category, s.query.Category) {
			continue
		}
		labels = append(labels, t.Label())
	}
	return labels
}

func (s *TourSearchScreen) CategoryNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.categories))
	for _, c := range s.categories {
		names = append(names, c.Name)
	}
	return names
}

// EventSearchScreen lists events the pilot can fly.
type EventSearchScreen struct {
	*flightSearch
	API EventSearchAPI
}

func NewEventSearchScreen(api EventSearchAPI, host HostAPI, notifier common.Notifier, reg *metrics.MetricsRegistry) *EventSearchScreen {
	s := &EventSearchScreen{API: api}
	s.flightSearch = newFlightSearch(services.SourceEvent, api, host, notifier, reg, constants.OpSearchEvents, api.SearchEvents)
	return s
}

func (s *EventSearchScreen) Mount(ctx context.Context) {
	s.ref.load(ctx, s.API, s.notifier)
	s.checkPlugins(ctx)
	s.results.FetchNow(ctx)
}

// Refresh re-runs the event search.
func (s *EventSearchScreen) Refresh(ctx context.Context) []FlightRow {
	s.results.FetchNow(ctx)
	return s.Rows()
}
