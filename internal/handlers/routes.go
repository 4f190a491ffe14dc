package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abrezinsky/ldtab/internal/auth"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

func (h *Handlers) corsMiddleware() func(http.Handler) http.Handler {
	origins := h.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: len(h.opts.AllowedOrigins) > 0,
		MaxAge:           300,
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	if h.opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(h.corsMiddleware())
	r.Use(h.Auth.Middleware)

	// Operational endpoints (public)
	r.Get("/healthz", h.handleHealth)
	if h.opts.Metrics != nil {
		r.Handle("/metrics", h.opts.Metrics)
	}

	// Sessions (public, rate limited)
	r.Group(func(r chi.Router) {
		if h.opts.LoginLimiter != nil {
			r.Use(auth.RateLimit(h.opts.LoginLimiter))
		}
		r.Post("/api/session", h.handleCreateSession)
	})
	r.Delete("/api/session", h.handleDeleteSession)

	// WebSocket upgrades are long-lived so they skip the request timeout
	if h.opts.WebSocket != nil {
		r.With(auth.RequireAuthAPI).Get("/ws", h.opts.WebSocket.ServeHTTP)
	}

	// API (session required)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuthAPI)
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/api/session", h.handleGetSession)

		// Tournaments
		r.Post("/api/tournaments", h.handleCreateTournament)
		r.Get("/api/tournaments/{code}", h.handleGetTournament)
		r.Post("/api/tournaments/{code}/join", h.handleJoinTournament)
		r.Post("/api/tournaments/{code}/close", h.handleCloseTournament)
		r.Get("/api/tournaments/{code}/qr", h.handleTournamentQR)

		// Standings
		r.Get("/api/standings", h.handleGetStandings)
		r.Get("/api/standings.xlsx", h.handleExportStandings)

		// Debates
		r.Get("/api/debates", h.handleListDebates)
		r.Post("/api/debates", h.handleCreateDebate)
		r.Get("/api/debates/{id}", h.handleGetDebate)
		r.Delete("/api/debates/{id}", h.handleDeleteDebate)
		r.Post("/api/debates/{id}/judges", h.handleAssignJudge)
		r.Delete("/api/debates/{id}/judges/{judgeID}", h.handleRemoveJudge)
		r.Post("/api/debates/{id}/finalize", h.handleFinalizeDebate)
		r.Get("/api/debates/{id}/winner", h.handleGetWinner)
		r.Get("/api/debates/{id}/ballots", h.handleListBallots)
		r.Post("/api/debates/{id}/ballot", h.handleSubmitBallot)
		r.Get("/api/assignments", h.handleMyAssignments)

		// Profiles
		r.Get("/api/profiles", h.handleListProfiles)
		r.Put("/api/profiles/me/contact", h.handleUpdateContact)
		r.Put("/api/profiles/{id}/status", h.handleSetStatus)
		r.Delete("/api/profiles/{id}", h.handleKickProfile)

		// Notifications
		r.Get("/api/notifications", h.handleListNotifications)
		r.Delete("/api/notifications/{id}", h.handleDismissNotification)

		// Admin tools
		r.Post("/api/admin/seed", h.handleSeed)
	})

	return r
}
