package common

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httputil"

	"cav/flightrelay/internal/logging"
)

// LogHTTPRequest dumps an outgoing request at debug level with the
// Authorization header redacted.
func LogHTTPRequest(req *http.Request) {
	// Make a copy of the body if it exists
	var bodyCopy []byte
	if req.Body != nil {
		bodyCopy, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(bodyCopy)) // reset body
	}

	auth := req.Header.Get("Authorization")
	if auth != "" {
		req.Header.Set("Authorization", "Bearer [redacted]")
	}

	dump, err := httputil.DumpRequestOut(req, true) // true to include body
	if err != nil {
		logging.Debug("Failed to dump HTTP request", "error", err.Error())
	} else {
		logging.Debug("Upstream request", "dump", string(dump))
	}

	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	// Reset the body again (req.Body may be read again later)
	if bodyCopy != nil {
		req.Body = io.NopCloser(bytes.NewReader(bodyCopy))
	}
}
