package handlers

import (
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/services"
)

// SessionResponse is returned when a session is started
type SessionResponse struct {
	Token   string              `json:"token"`
	Profile *models.UserProfile `json:"profile"`
}

// SessionInfoResponse describes the current caller
type SessionInfoResponse struct {
	Caller      services.Caller   `json:"caller"`
	Preferences map[string]string `json:"preferences"`
}

// WinnerResponse is the live tally of a debate
type WinnerResponse struct {
	DebateID string        `json:"debate_id"`
	Winner   models.Winner `json:"winner"`
}

// HealthResponse is the /healthz body
type HealthResponse struct {
	Status      string `json:"status"`
	Store       string `json:"store,omitempty"`
	Subscribers int    `json:"subscribers"`
	Error       string `json:"error,omitempty"`
}
