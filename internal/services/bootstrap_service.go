package services

import (
	"context"
	"encoding/json"
	"time"

	"cav/flightrelay/internal/config"
	"cav/flightrelay/internal/logging"
	"cav/flightrelay/internal/models/dtos"
	"cav/flightrelay/internal/providers"

	"github.com/golang-jwt/jwt/v5"
)

// sessionExpiryWarning is how close to expiry a session gets logged
const sessionExpiryWarning = 30 * time.Minute

// IdentitySource is the part of the host API the bootstrap needs.
type IdentitySource interface {
	GetIdentity(ctx context.Context) (*dtos.Identity, error)
	GetConfig(ctx context.Context) (json.RawMessage, error)
}

// BootstrapService builds the RelayContext at startup.
type BootstrapService struct {
	Host      IdentitySource
	Reference *ReferenceDataService
	Upstream  config.UpstreamConfig
	Now       func() time.Time
}

func NewBootstrapService(host IdentitySource, reference *ReferenceDataService, upstream config.UpstreamConfig) *BootstrapService {
	return &BootstrapService{
		Host:      host,
		Reference: reference,
		Upstream:  upstream,
		Now:       time.Now,
	}
}

// Bootstrap fetches identity and operator configuration, then warms the
// reference cache. Failures are logged and never fatal: the relay still
// starts, and calls fail individually until a session is available.
func (s *BootstrapService) Bootstrap(ctx context.Context) *RelayContext {
	rc := &RelayContext{
		Identity: &dtos.Identity{},
		LoadedAt: s.now(),
	}

	identity, err := s.Host.GetIdentity(ctx)
	if err != nil {
		logging.Warn("Failed to fetch identity from host", "error", err.Error())
	} else {
		rc.Identity = identity
	}

	cfg, err := s.Host.GetConfig(ctx)
	if err != nil {
		logging.Warn("Error while getting config", "error", err.Error())
	} else {
		rc.HostConfig = cfg
	}

	rc.Credentials = providers.Credentials{
		ScriptURL: rc.Identity.Airline.Settings.ScriptURL,
		Session:   rc.Identity.VAUser.Session,
	}
	if s.Upstream.ScriptURL != "" {
		rc.Credentials.ScriptURL = s.Upstream.ScriptURL
	}
	if s.Upstream.Session != "" {
		rc.Credentials.Session = s.Upstream.Session
	}

	if !rc.IdentityLoaded() {
		logging.Warn("Relay started without a usable session; upstream calls will fail")
		return rc
	}

	s.inspectSession(rc.Credentials.Session)

	if s.Reference != nil {
		if err := s.Reference.Warm(ctx, rc.Credentials); err != nil {
			logging.Warn("Failed to warm reference data", "error", err.Error())
		}
	}

	logging.Info("Relay context ready",
		"script_url", rc.Credentials.ScriptURL,
		"pilot_db_id", rc.Identity.VAUser.DBID.String(),
		"plugins", len(rc.Identity.Airline.Plugins),
	)
	return rc
}

// SessionExpiry reads the exp claim of a JWT session without verifying it.
// Sessions that are not JWTs report false.
func SessionExpiry(session string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(session, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *BootstrapService) inspectSession(session string) {
	exp, ok := SessionExpiry(session)
	if !ok {
		logging.Debug("Session is opaque; skipping expiry check")
		return
	}
	remaining := exp.Sub(s.now())
	switch {
	case remaining <= 0:
		logging.Warn("VA session has expired", "expired_at", exp)
	case remaining < sessionExpiryWarning:
		logging.Warn("VA session expires soon", "expires_at", exp, "remaining", remaining.String())
	default:
		logging.Debug("VA session valid", "expires_at", exp)
	}
}

func (s *BootstrapService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
