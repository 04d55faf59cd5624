package routes

import (
	"net/http"

	"cav/flightrelay/internal/api"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/middleware"
	"cav/flightrelay/internal/services"

	"github.com/go-chi/chi/v5"
)

// liveFlightRoutes are proxied under /api/com.cav.live-flights
var liveFlightRoutes = map[string]api.ProxyRoute{
	"/flights":      {Operation: constants.OpLiveFlights, Method: http.MethodGet, RemotePath: "flights/liveFlights"},
	"/map_style":    {Operation: constants.OpMapStyle, Method: http.MethodGet, RemotePath: "pilot/map_style"},
	"/path_data":    {Operation: constants.OpPathData, Method: http.MethodGet, RemotePath: "flights/path_data"},
	"/chatMessages": {Operation: constants.OpChatMessages, Method: http.MethodGet, RemotePath: "flights/chatMessages"},
	"/sendMessage":  {Operation: constants.OpSendMessage, Method: http.MethodPost, RemotePath: "flights/sendMessage"},
}

// flightCenterRoutes are proxied under /api/com.cav.flight-center
var flightCenterRoutes = map[string]api.ProxyRoute{
	"/bookings":       {Operation: constants.OpBookings, Method: http.MethodGet, RemotePath: "flights/bookings"},
	"/book-flight":    {Operation: constants.OpBookFlight, Method: http.MethodPost, RemotePath: "flights/book"},
	"/unbook-flight":  {Operation: constants.OpUnbookFlight, Method: http.MethodPost, RemotePath: "flights/unbook"},
	"/searchTours":    {Operation: constants.OpSearchTours, Method: http.MethodGet, RemotePath: "flights/searchTours"},
	"/searchEvents":   {Operation: constants.OpSearchEvents, Method: http.MethodGet, RemotePath: "flights/searchEvents"},
	"/tours":          {Operation: constants.OpTours, Method: http.MethodGet, RemotePath: "flights/tours"},
	"/tourCategories": {Operation: constants.OpTourCategories, Method: http.MethodGet, RemotePath: "flights/tourCategories"},
}

// RegisterAPIRoutes registers the relay routes for both plugin namespaces.
// POST routes share the mutation rate limiter.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, limiter *middleware.RateLimiter) {

	r.Route("/api/"+constants.PluginLiveFlights, func(live chi.Router) {
		mountProxyRoutes(live, deps, limiter, liveFlightRoutes)
	})

	r.Route("/api/"+constants.PluginFlightCenter, func(fc chi.Router) {
		mountProxyRoutes(fc, deps, limiter, flightCenterRoutes)

		// Reference data is served from the bootstrap cache
		fc.Get("/airports", api.ReferenceHandler(deps.Reference, deps.Relay, services.ReferenceAirports))
		fc.Get("/aircrafts", api.ReferenceHandler(deps.Reference, deps.Relay, services.ReferenceAircraft))
	})
}

func mountProxyRoutes(r chi.Router, deps *api.Dependencies, limiter *middleware.RateLimiter, table map[string]api.ProxyRoute) {
	for path, route := range table {
		handler := api.ProxyHandler(deps.Upstream, deps.Relay, route)
		if route.Method == http.MethodPost {
			r.With(limiter.Middleware).Post(path, handler)
			continue
		}
		r.Get(path, handler)
	}
}
