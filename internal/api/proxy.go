package api

import (
	"errors"
	"io"
	"net/http"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/middleware"
	"cav/flightrelay/internal/providers"
	"cav/flightrelay/internal/services"
)

// maxRelayBody bounds request bodies accepted for forwarding
const maxRelayBody = 1 << 20

// ProxyRoute maps one local relay route to its remote path.
type ProxyRoute struct {
	Operation  string
	Method     string
	RemotePath string
}

// ProxyHandler forwards the request to the airline web service with the
// session bearer token. Query, body and content type pass through unchanged;
// the remote status and body are returned verbatim. Any failure becomes a
// 500 with {"error": "..."}.
func ProxyHandler(upstream Upstream, rc *services.RelayContext, route ProxyRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			var err error
			body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxRelayBody))
			if err != nil {
				relayFailure(w, r, route.Operation, err)
				return
			}
		}

		resp, err := upstream.Forward(r.Context(), rc.Credentials, providers.ForwardRequest{
			Operation:   route.Operation,
			Method:      route.Method,
			Path:        route.RemotePath,
			Query:       r.URL.Query(),
			Body:        body,
			ContentType: r.Header.Get("Content-Type"),
		})
		if err != nil {
			relayFailure(w, r, route.Operation, err)
			return
		}

		contentType := resp.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(resp.StatusCode)
		if _, err := w.Write(resp.Body); err != nil {
			logging.Warn("Failed to write relay response", "operation", route.Operation, "error", err.Error())
		}
	}
}

// relayFailure logs the failure tagged with the operation and writes the 500.
func relayFailure(w http.ResponseWriter, r *http.Request, operation string, err error) {
	message := constants.GetErrorMessage(constants.ErrCodeNetworkError)
	fields := []interface{}{
		"operation", operation,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err.Error(),
	}

	var perr *providers.ProviderError
	if errors.As(err, &perr) {
		message = perr.Message
		fields = append(fields, "code", perr.Code)
		if perr.StatusCode != 0 {
			fields = append(fields, "upstream_status", perr.StatusCode)
		}
	}

	logging.Error("Relay call failed", fields...)
	common.WriteRelayError(w, http.StatusInternalServerError, message)
}
