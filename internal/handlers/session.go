package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/abrezinsky/ldtab/internal/auth"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/services"
)

// caller resolves the request's session to the stored profile. The profile,
// not the token, is authoritative for name, role and tournament.
func (h *Handlers) caller(r *http.Request) (services.Caller, error) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		return services.Caller{}, ErrUnauthorized
	}
	p, err := h.Profiles.Get(r.Context(), claims.UserID())
	if stderrors.Is(err, services.ErrProfileNotFound) {
		return services.Caller{}, Unauthorized("Session is no longer valid")
	}
	if err != nil {
		return services.Caller{}, err
	}
	return services.Caller{
		UserID:       p.ID,
		Name:         p.Name,
		Role:         p.Role,
		TournamentID: p.TournamentID,
	}, nil
}

// handleCreateSession registers the caller and issues a session token.
// An existing session keeps its user id so renames and role switches stick.
func (h *Handlers) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.Role == models.RoleAdmin && !h.Auth.CheckAdminPassword(req.Password) {
		h.Log.Warn("Admin login rejected", "name", req.Name)
		h.respondError(w, r, Unauthorized("Invalid admin password"))
		return
	}

	userID := uuid.NewString()
	if claims, ok := auth.FromContext(r.Context()); ok {
		userID = claims.UserID()
	}

	p, err := h.Profiles.Register(r.Context(), userID, req.Name, req.Role)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	token, err := h.Auth.Issue(p.ID, p.Name, string(p.Role))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.Auth.SetSessionCookie(w, token)
	respondCreated(w, SessionResponse{Token: token, Profile: p})
}

func (h *Handlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	prefs, err := h.Profiles.Preferences(r.Context(), c.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, SessionInfoResponse{Caller: c, Preferences: prefs})
}

func (h *Handlers) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	respondDeleted(w)
}
