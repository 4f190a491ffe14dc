package handlers

import (
	"net/http"
	"strings"

	"github.com/abrezinsky/ldtab/internal/models"
)

// handleListProfiles lists tournament members.
// ?role=Debater narrows to debaters and ?eligible=true to Active debaters.
func (h *Handlers) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var profiles []models.UserProfile
	switch {
	case r.URL.Query().Get("eligible") == "true":
		profiles, err = h.Profiles.EligibleDebaters(r.Context(), c)
	case strings.EqualFold(r.URL.Query().Get("role"), string(models.RoleDebater)):
		profiles, err = h.Profiles.Debaters(r.Context(), c)
	default:
		profiles, err = h.Profiles.List(r.Context(), c)
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, profiles)
}

func (h *Handlers) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req ContactUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.Profiles.UpdateContact(r.Context(), c, req.Email, req.Phone); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondSuccess(w, "Contact updated")
}

func (h *Handlers) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.Profiles.SetStatus(r.Context(), c, id, req.Status); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondSuccess(w, "Status updated")
}

func (h *Handlers) handleKickProfile(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.Profiles.Kick(r.Context(), c, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	list, err := h.Notifications.List(r.Context(), c)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, list)
}

func (h *Handlers) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.Notifications.Dismiss(r.Context(), c, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleSeed(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req SeedRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	created, err := h.Seed.SeedDemo(r.Context(), c, req.Debaters, req.Judges)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, created)
}

// handleHealth reports 503 when the store cannot be reached
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Store: h.opts.StoreMode}
	if h.opts.Subscribers != nil {
		resp.Subscribers = h.opts.Subscribers()
	}
	if h.opts.Health != nil {
		if err := h.opts.Health(r.Context()); err != nil {
			resp.Status = "unavailable"
			resp.Error = err.Error()
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	respondOK(w, resp)
}
