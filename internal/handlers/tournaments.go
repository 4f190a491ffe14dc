package handlers

import (
	"fmt"
	"net/http"

	"github.com/abrezinsky/ldtab/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handlers) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req TournamentCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	t, err := h.Tournaments.Create(r.Context(), c, req.Name, req.Topic)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, t)
}

func (h *Handlers) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	code, err := pathParam(r, "code")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	t, err := h.Tournaments.Get(r.Context(), code)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, t)
}

func (h *Handlers) handleJoinTournament(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	code, err := pathParam(r, "code")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	p, err := h.Tournaments.Join(r.Context(), c, code)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, p)
}

func (h *Handlers) handleCloseTournament(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	code, err := pathParam(r, "code")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.Tournaments.Close(r.Context(), c, code); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondSuccess(w, "Tournament closed")
}

// handleTournamentQR serves a PNG of the join link
func (h *Handlers) handleTournamentQR(w http.ResponseWriter, r *http.Request) {
	code, err := pathParam(r, "code")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	png, err := h.Tournaments.QRCode(r.Context(), code, h.opts.BaseURL)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

func (h *Handlers) handleGetStandings(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	rows, err := h.Standings.Standings(r.Context(), c)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, rows)
}

// handleExportStandings serves the standings workbook as a download
func (h *Handlers) handleExportStandings(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	data, err := h.Standings.ExportXLSX(r.Context(), c)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="standings-%s.xlsx"`, services.NormalizeCode(c.TournamentID)))
	w.Write(data)
}
