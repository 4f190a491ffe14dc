package handlers

import (
	"context"
	"net/http"

	"github.com/abrezinsky/ldtab/internal/auth"
	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/services"
)

// Services groups the engine operations exposed over HTTP
type Services struct {
	Tournaments   services.TournamentServicer
	Profiles      services.ProfileServicer
	Rounds        services.RoundServicer
	Ballots       services.BallotServicer
	Standings     services.StandingsServicer
	Notifications services.NotificationServicer
	Seed          services.SeedServicer
}

// Options configures the optional parts of the router
type Options struct {
	// BaseURL prefixes the join link encoded in tournament QR codes
	BaseURL        string
	AllowedOrigins []string
	// LoginLimiter throttles POST /api/session per client IP. Nil disables it.
	LoginLimiter *auth.IPRateLimiter
	// TrustProxy takes the client IP from X-Forwarded-For/X-Real-IP. Off, the
	// connection's own address is used and those headers are ignored.
	TrustProxy bool
	// WebSocket serves /ws. Nil leaves the route unregistered.
	WebSocket http.Handler
	// Metrics serves /metrics. Nil leaves the route unregistered.
	Metrics http.Handler
	// Health reports store reachability for /healthz
	Health func(ctx context.Context) error
	// StoreMode is reported by /healthz
	StoreMode string
	// Subscribers reports open change-feed subscriptions for /healthz
	Subscribers func() int
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Services
	Auth *auth.Auth
	Log  logger.Logger
	opts Options
}

// New creates a new Handlers instance with all dependencies
func New(svc Services, sessions *auth.Auth, log logger.Logger, opts Options) *Handlers {
	return &Handlers{
		Services: svc,
		Auth:     sessions,
		Log:      log,
		opts:     opts,
	}
}
