package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"

	"github.com/abrezinsky/ldtab/internal/auth"
	"github.com/abrezinsky/ldtab/internal/config"
	"github.com/abrezinsky/ldtab/internal/handlers"
	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/metrics"
	"github.com/abrezinsky/ldtab/internal/notify"
	"github.com/abrezinsky/ldtab/internal/repository"
	"github.com/abrezinsky/ldtab/internal/services"
	"github.com/abrezinsky/ldtab/internal/websocket"
)

const (
	shutdownTimeout = 10 * time.Second
	natsTimeout     = 2 * time.Second
)

// App holds all application dependencies
type App struct {
	cfg       *config.Config
	log       logger.Logger
	repo      repository.FullRepository
	storeMode string
	baseURL   string
	metrics   *metrics.Metrics
	hub       *websocket.Hub
	handlers  *handlers.Handlers
	nc        *nats.Conn
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates and initializes a new application instance.
// The configured store is tried once; if it cannot be opened the app runs on
// the in-memory store instead.
func New(cfg *config.Config, log logger.Logger) (*App, error) {
	repo, mode := openStore(cfg.Store, log)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		generated, err := auth.GenerateSecret()
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to initialize auth: %w", err)
		}
		secret = generated
		log.Warn("No JWT secret configured, sessions end when the server restarts")
	}
	sessions, err := auth.New(secret, cfg.Auth.AdminPassword, cfg.Auth.SessionTTL)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}
	if !sessions.PasswordRequired() {
		log.Warn("No admin password configured, anyone can open an admin session")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := metrics.New()

	var relay notify.Relay = notify.NewStoreRelay(repo)
	nc := connectNATS(cfg.NATS, log)
	if nc != nil {
		nr := notify.NewNATSRelay(relay, nc, cfg.NATS.SubjectPrefix, log)
		go nr.Run(ctx, repo.SubscribeAll())
		relay = nr
	}

	standings := services.NewStandingsService(log, repo)
	svc := handlers.Services{
		Tournaments:   services.NewTournamentService(log, repo, m),
		Profiles:      services.NewProfileService(log, repo, m),
		Rounds:        services.NewRoundService(log, repo, relay, m),
		Ballots:       services.NewBallotService(log, repo, m),
		Standings:     standings,
		Notifications: services.NewNotificationService(log, repo),
		Seed:          services.NewSeedService(log, repo, gofakeit.New(0), m),
	}

	hub := websocket.New(log, repo, svc.Profiles, services.NewSnapshotService(log, repo), standings, m)
	hub.Start(ctx)

	var limiter *auth.IPRateLimiter
	if cfg.Auth.LoginRate > 0 {
		limiter = auth.NewIPRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst)
	}

	baseURL := defaultBaseURL(cfg.Server.BaseURL, realNetworkProvider{})
	h := handlers.New(svc, sessions, log, handlers.Options{
		BaseURL:        baseURL,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustProxy:     cfg.Server.TrustProxy,
		LoginLimiter:   limiter,
		WebSocket:      http.HandlerFunc(hub.ServeWs),
		Metrics:        m.Handler(),
		Health:         repo.Ping,
		StoreMode:      mode,
		Subscribers:    repo.Subscribers,
	})

	return &App{
		cfg:       cfg,
		log:       log,
		repo:      repo,
		storeMode: mode,
		baseURL:   baseURL,
		metrics:   m,
		hub:       hub,
		handlers:  h,
		nc:        nc,
		cancel:    cancel,
	}, nil
}

// openStore opens the configured repository, falling back to memory
func openStore(cfg config.StoreConfig, log logger.Logger) (repository.FullRepository, string) {
	if cfg.Driver == config.DriverMemory {
		log.Info("Using in-memory store, data is lost on restart")
		return repository.NewMemory(), config.DriverMemory
	}
	repo, err := repository.New(cfg.DSN)
	if err != nil {
		log.Warn("Store unavailable, falling back to in-memory store", "dsn", cfg.DSN, "error", err)
		return repository.NewMemory(), config.DriverMemory
	}
	return repo, config.DriverSQLite
}

// connectNATS returns nil when fan-out is disabled or the server is unreachable
func connectNATS(cfg config.NATSConfig, log logger.Logger) *nats.Conn {
	if cfg.URL == "" {
		return nil
	}
	nc, err := nats.Connect(cfg.URL, nats.Name("ldtab"), nats.Timeout(natsTimeout))
	if err != nil {
		log.Warn("NATS unavailable, notifications stay local", "url", cfg.URL, "error", err)
		return nil
	}
	log.Info("NATS fan-out enabled", "url", cfg.URL, "prefix", cfg.SubjectPrefix)
	return nc
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// StoreMode reports which store backs the app: sqlite or memory
func (a *App) StoreMode() string {
	return a.storeMode
}

// BaseURL is the address embedded in join QR codes
func (a *App) BaseURL() string {
	return a.baseURL
}

// Close stops the hub and NATS fan-out and closes the store. Safe to call twice.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.cancel()
		if a.nc != nil {
			if err := a.nc.Drain(); err != nil {
				a.log.Warn("Failed to drain NATS connection", "error", err)
			}
		}
		if err := a.repo.Close(); err != nil {
			a.log.Warn("Failed to close store", "error", err)
		}
	})
}

// Run listens on the configured port and serves until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is cancelled, then shuts down gracefully
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(ln)
	}()

	a.log.Info("Server starting", "addr", ln.Addr().String(), "url", a.baseURL, "store", a.storeMode)

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down")
	// websocket connections are hijacked, so the hub has to drop them itself
	a.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
