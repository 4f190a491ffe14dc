package handlers

import (
	"net/http"

	"github.com/abrezinsky/ldtab/internal/services"
)

// debateRequest resolves the caller and the {id} parameter shared by the debate routes
func (h *Handlers) debateRequest(r *http.Request) (services.Caller, string, error) {
	c, err := h.caller(r)
	if err != nil {
		return c, "", err
	}
	id, err := pathParam(r, "id")
	return c, id, err
}

func (h *Handlers) handleListDebates(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	debates, err := h.Rounds.List(r.Context(), c)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, debates)
}

func (h *Handlers) handleCreateDebate(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req services.RoundInput
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	d, err := h.Rounds.Create(r.Context(), c, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, d)
}

func (h *Handlers) handleGetDebate(w http.ResponseWriter, r *http.Request) {
	c, id, err := h.debateRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	d, err := h.Rounds.Get(r.Context(), c, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, d)
}

// handleDeleteDebate answers 204 whether or not the debate existed
func (h *Handlers) handleDeleteDebate(w http.ResponseWriter, r *http.Request) {
	c, id, err := h.debateRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.Rounds.Delete(r.Context(), c, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleAssignJudge(w http.ResponseWriter, r *http.Request) {
	c, id, err := h.debateRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req JudgeAssignRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.Rounds.AssignJudge(r.Context(), c, id, req.JudgeID); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleRemoveJudge(w http.ResponseWriter, r *http.Request) {
	c, id, err := h.debateRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	judgeID, err := pathParam(r, "judgeID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.Rounds.RemoveJudge(r.Context(), c, id, judgeID); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleFinalizeDebate(w http.ResponseWriter, r *http.Request) {
	c, id, err := h.debateRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	winner, err := h.Rounds.Finalize(r.Context(), c, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, WinnerResponse{DebateID: id, Winner: winner})
}

func (h *Handlers) handleGetWinner(w http.ResponseWriter, r *http.Request) {
	c, id, err := h.debateRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	winner, err := h.Standings.Winner(r.Context(), c, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, WinnerResponse{DebateID: id, Winner: winner})
}

func (h *Handlers) handleListBallots(w http.ResponseWriter, r *http.Request) {
	c, id, err := h.debateRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	ballots, err := h.Ballots.ListForDebate(r.Context(), c, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, ballots)
}

func (h *Handlers) handleSubmitBallot(w http.ResponseWriter, r *http.Request) {
	c, id, err := h.debateRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req BallotSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	ballot, err := h.Ballots.Submit(r.Context(), c, services.BallotInput{
		DebateID: id,
		AffScore: req.AffScore,
		NegScore: req.NegScore,
		Decision: req.Decision,
		RFD:      req.RFD,
		Flow:     req.Flow,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, ballot)
}

func (h *Handlers) handleMyAssignments(w http.ResponseWriter, r *http.Request) {
	c, err := h.caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	debates, err := h.Rounds.MyAssignments(r.Context(), c)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, debates)
}
