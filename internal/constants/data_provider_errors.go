package constants

// Upstream and host error codes
const (
	ErrCodeMissingSession   = "MISSING_SESSION"
	ErrCodeMissingScriptURL = "MISSING_SCRIPT_URL"
	ErrCodeNetworkError     = "NETWORK_ERROR"
	ErrCodeUpstreamStatus   = "UPSTREAM_STATUS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeNotFound         = "RESOURCE_NOT_FOUND"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeMalformedBody    = "MALFORMED_BODY"
	ErrCodeHostUnavailable  = "HOST_UNAVAILABLE"
)

var ErrorMessages = map[string]string{
	ErrCodeMissingSession:   "No VA session is available; sign in through the host first",
	ErrCodeMissingScriptURL: "The airline has no script URL configured",
	ErrCodeNetworkError:     "Unable to reach the airline web service",
	ErrCodeUpstreamStatus:   "The airline web service returned an error",
	ErrCodeUnauthorized:     "The airline web service rejected the session",
	ErrCodeNotFound:         "The requested resource does not exist",
	ErrCodeRateLimited:      "Rate limit exceeded. Please try again later",
	ErrCodeInvalidRequest:   "The request could not be built",
	ErrCodeMalformedBody:    "The response body has an unexpected shape",
	ErrCodeHostUnavailable:  "The host local API is not reachable",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := ErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}

// User-facing notification texts
const (
	MsgFailedLiveFlights   = "Failed to get live flights"
	MsgFailedChat          = "Failed to get chat messages"
	MsgFailedSendMessage   = "Failed to send message"
	MsgFailedBookings      = "Failed to get dispatched flights"
	MsgFailedUnbook        = "Failed to delete dispatch"
	MsgFailedDispatch      = "Failed to dispatch flight"
	MsgDispatched          = "Flight dispatched successfully"
	MsgDispatchNotFound    = "Failed to start flight - dispatched flight not found"
	MsgNoAircraft          = "No suitable aircraft for this flight"
	MsgNoRecoverableFlight = "No suitable flight found"
	MsgFailedSimBrief      = "Failed to plan flight with SimBrief"
	MsgFailedFlights       = "Failed to fetch flights"
	MsgParseFlights        = "Error parsing flights"
	MsgFailedAirports      = "Failed to fetch airports"
	MsgFailedAircraft      = "Failed to fetch aircraft"
	MsgFailedSettings      = "Failed to retrieve settings"
	MsgFailedIdentity      = "Failed to fetch identity."
	MsgFailedPath          = "Failed to get flight path"
)
