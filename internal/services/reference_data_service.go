package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/metrics"
	"cav/flightrelay/internal/providers"

	"golang.org/x/sync/errgroup"
)

// Forwarder performs one upstream round trip.
type Forwarder interface {
	Forward(ctx context.Context, creds providers.Credentials, fr providers.ForwardRequest) (*providers.ForwardResponse, error)
}

// ReferenceKind describes one cacheable reference collection.
type ReferenceKind struct {
	CacheKey  constants.CachePrefix
	Operation string
	Path      string
}

var (
	ReferenceAirports = ReferenceKind{
		CacheKey:  constants.CachePrefixAirports,
		Operation: constants.OpAirports,
		Path:      "data/airports",
	}
	ReferenceAircraft = ReferenceKind{
		CacheKey:  constants.CachePrefixAircraft,
		Operation: constants.OpAircrafts,
		Path:      "data/aircraft",
	}
)

// ReferenceDataService serves airports and aircraft from cache, loading
// them from the airline web service on a miss.
type ReferenceDataService struct {
	Upstream Forwarder
	Cache    common.CacheInterface
	TTL      time.Duration
	Metrics  *metrics.MetricsRegistry
}

func NewReferenceDataService(upstream Forwarder, cache common.CacheInterface, ttl time.Duration, reg *metrics.MetricsRegistry) *ReferenceDataService {
	return &ReferenceDataService{
		Upstream: upstream,
		Cache:    cache,
		TTL:      ttl,
		Metrics:  reg,
	}
}

// Get returns the raw JSON list for kind. When fresh is set the cache is
// bypassed and refilled.
func (s *ReferenceDataService) Get(ctx context.Context, creds providers.Credentials, kind ReferenceKind, fresh bool) ([]byte, error) {
	key := string(kind.CacheKey)

	if !fresh {
		if val, found := s.Cache.Get(key); found {
			s.observe(key, true)
			return val, nil
		}
	}
	s.observe(key, false)

	body, err := s.load(ctx, creds, kind)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(key, body, s.TTL)
	return body, nil
}

// Warm loads airports and aircraft concurrently.
func (s *ReferenceDataService) Warm(ctx context.Context, creds providers.Credentials) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range []ReferenceKind{ReferenceAirports, ReferenceAircraft} {
		kind := kind
		g.Go(func() error {
			body, err := s.Get(gctx, creds, kind, true)
			if err != nil {
				return fmt.Errorf("warm %s: %w", kind.Operation, err)
			}
			logging.Info("Reference data cached", "operation", kind.Operation, "bytes", len(body))
			return nil
		})
	}
	return g.Wait()
}

func (s *ReferenceDataService) load(ctx context.Context, creds providers.Credentials, kind ReferenceKind) ([]byte, error) {
	resp, err := s.Upstream.Forward(ctx, creds, providers.ForwardRequest{
		Operation: kind.Operation,
		Method:    http.MethodGet,
		Path:      kind.Path,
	})
	if err != nil {
		return nil, err
	}

	// Only lists are worth caching
	trimmed := bytes.TrimSpace(resp.Body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &providers.ProviderError{
			Code:       constants.ErrCodeMalformedBody,
			Message:    fmt.Sprintf("Expected a list from %s", kind.Path),
			Details:    string(resp.Body),
			StatusCode: resp.StatusCode,
		}
	}
	return resp.Body, nil
}

func (s *ReferenceDataService) observe(key string, hit bool) {
	if s.Metrics == nil {
		return
	}
	if hit {
		s.Metrics.CacheHitsTotal.WithLabelValues(key).Inc()
	} else {
		s.Metrics.CacheMissesTotal.WithLabelValues(key).Inc()
	}
}
