package api

import (
	"context"
	"fmt"
	"time"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/config"
	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/metrics"
	"cav/flightrelay/internal/providers"
	"cav/flightrelay/internal/services"
)

// Upstream forwards relay calls to the airline web service.
type Upstream interface {
	services.Forwarder
}

// Dependencies is everything the relay handlers are built from.
type Dependencies struct {
	Config    *config.Config
	Relay     *services.RelayContext
	Upstream  Upstream
	Host      *providers.HostAPIProvider
	Reference *services.ReferenceDataService
	Cache     common.CacheInterface
	Metrics   *metrics.MetricsRegistry
}

// NewCache builds the reference cache selected by configuration.
func NewCache(cfg config.CacheConfig) (common.CacheInterface, error) {
	switch cfg.Driver {
	case "", "memory":
		return common.NewCacheService(cfg.ReferenceTTL, 10*time.Minute), nil
	case "redis":
		return common.NewRedisCacheService(common.NewRedisClient(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// InitDependencies wires providers and services and runs the bootstrap.
func InitDependencies(ctx context.Context, cfg *config.Config, reg *metrics.MetricsRegistry) (*Dependencies, error) {
	cache, err := NewCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	logging.Info("Reference cache ready", "backend", cache.Backend())

	upstream := providers.NewAirlineAPIProvider(cfg.Upstream.Timeout, reg)
	upstream.DumpRequests = cfg.AppEnv == "development"
	host := providers.NewHostAPIProvider(cfg.Host.BaseURL)
	reference := services.NewReferenceDataService(upstream, cache, cfg.Cache.ReferenceTTL, reg)

	rc := services.NewBootstrapService(host, reference, cfg.Upstream).Bootstrap(ctx)

	return &Dependencies{
		Config:    cfg,
		Relay:     rc,
		Upstream:  upstream,
		Host:      host,
		Reference: reference,
		Cache:     cache,
		Metrics:   reg,
	}, nil
}
