package constants

type (
	APIStatus        string
	CachePrefix      string
	NotificationType string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixAirports CachePrefix = "REF_AIRPORTS"
	CachePrefixAircraft CachePrefix = "REF_AIRCRAFT"

	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
	NotifyDanger  NotificationType = "danger"
)

// Plugin identifiers understood by the host local API.
const (
	PluginLiveFlights    = "com.cav.live-flights"
	PluginFlightCenter   = "com.cav.flight-center"
	PluginFlightTracking = "com.tfdidesign.flight-tracking"
	PluginSimBrief       = "com.tfdidesign.simbrief"
	PluginLogbook        = "com.tfdidesign.logbook"
)

// Relay operation names. They tag log records and metrics.
const (
	OpLiveFlights    = "liveFlights"
	OpMapStyle       = "mapStyle"
	OpPathData       = "pathData"
	OpChatMessages   = "chatMessages"
	OpSendMessage    = "sendMessage"
	OpBookings       = "bookings"
	OpBookFlight     = "bookFlight"
	OpUnbookFlight   = "unbookFlight"
	OpAirports       = "airports"
	OpAircrafts      = "aircrafts"
	OpSearchTours    = "searchTours"
	OpSearchEvents   = "searchEvents"
	OpTours          = "tours"
	OpTourCategories = "tourCategories"
)
