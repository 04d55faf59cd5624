package middleware

import (
	"net"
	"net/http"
	"sync"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/logging"

	"golang.org/x/time/rate"
)

// RateLimiter throttles mutation calls per client address so a stuck
// screen cannot flood the airline web service with bookings.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[ip]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[ip] = limiter
	return limiter
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !rl.getLimiter(ip).Allow() {
			logging.Warn("Mutation rate limited", "ip", ip, "path", r.URL.Path)
			common.WriteRelayError(w, http.StatusTooManyRequests, constants.GetErrorMessage(constants.ErrCodeRateLimited))
			return
		}

		next.ServeHTTP(w, r)
	})
}
