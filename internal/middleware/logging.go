package middleware

import (
	"bytes"
	"net/http"
	"time"

	"cav/flightrelay/internal/logging"
)

// maxLoggedBody caps how much of a response body is logged
const maxLoggedBody = 2048

type respLogger struct {
	http.ResponseWriter
	status int
	buf    *bytes.Buffer
}

func (l *respLogger) WriteHeader(code int) {
	l.status = code
	l.ResponseWriter.WriteHeader(code)
}

func (l *respLogger) Write(b []byte) (int, error) {
	if room := maxLoggedBody - l.buf.Len(); room > 0 {
		if len(b) > room {
			l.buf.Write(b[:room])
		} else {
			l.buf.Write(b)
		}
	}
	return l.ResponseWriter.Write(b)
}

// Logging dumps every request and response at debug level. Authorization
// headers are never logged.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := make(map[string]string, len(r.Header))
		for name, vals := range r.Header {
			if name == "Authorization" || name == "Cookie" {
				continue
			}
			if len(vals) > 0 {
				headers[name] = vals[0]
			}
		}
		logging.Debug("Relay request",
			"request_id", GetRequestID(r.Context()),
			"method", r.Method,
			"url", r.URL.String(),
			"headers", headers,
		)

		// wrap response
		lw := &respLogger{ResponseWriter: w, status: http.StatusOK, buf: &bytes.Buffer{}}

		start := time.Now()
		next.ServeHTTP(lw, r)

		logging.Debug("Relay response",
			"request_id", GetRequestID(r.Context()),
			"status", lw.status,
			"duration", time.Since(start).String(),
			"body", lw.buf.String(),
		)
	})
}
