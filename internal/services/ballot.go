package services

import (
	"context"
	"strings"

	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
)

// BallotServiceRepository defines the repository methods needed by BallotService
type BallotServiceRepository interface {
	repository.TournamentRepository
	repository.DebateRepository
	repository.ResultRepository
}

// BallotService accepts judge ballots
type BallotService struct {
	log     logger.Logger
	repo    BallotServiceRepository
	metrics Recorder
	guard   guard
}

// NewBallotService creates a new BallotService
func NewBallotService(log logger.Logger, repo BallotServiceRepository, metrics Recorder) *BallotService {
	metrics = recorderOrNop(metrics)
	return &BallotService{
		log:     log,
		repo:    repo,
		metrics: metrics,
		guard:   guard{log: log, repo: repo, metrics: metrics},
	}
}

// BallotInput is what a judge submits. The judge's identity comes from the Caller.
type BallotInput struct {
	DebateID string          `json:"debate_id"`
	AffScore float64         `json:"aff_score"`
	NegScore float64         `json:"neg_score"`
	Decision models.Decision `json:"decision"`
	RFD      string          `json:"rfd"`
	Flow     string          `json:"flow,omitempty"`
}

// Submit records the caller's ballot, replacing any earlier ballot they cast on the same round.
// Only judges on the round's panel may submit.
func (s *BallotService) Submit(ctx context.Context, caller Caller, in BallotInput) (*models.RoundResult, error) {
	if !caller.IsJudge() {
		return nil, s.guard.reject("submit_ballot", caller, ErrNotJudge)
	}
	t, err := s.guard.openTournament(ctx, caller)
	if err != nil {
		return nil, s.guard.reject("submit_ballot", caller, err)
	}
	if !in.Decision.Valid() {
		return nil, s.guard.reject("submit_ballot", caller, ErrInvalidDecision)
	}
	if in.AffScore < 0 || in.NegScore < 0 {
		return nil, s.guard.reject("submit_ballot", caller, ErrInvalidScore)
	}

	d, err := s.repo.GetDebate(ctx, in.DebateID)
	if err == repository.ErrNotFound {
		return nil, ErrDebateNotFound
	}
	if err != nil {
		return nil, err
	}
	if d.TournamentID != t.ID {
		return nil, ErrDebateNotFound
	}
	if d.Status == models.DebateClosed {
		return nil, s.guard.reject("submit_ballot", caller, ErrRoundClosed)
	}
	if !d.HasJudge(caller.UserID) || d.AffID == caller.UserID || d.NegID == caller.UserID {
		return nil, s.guard.reject("submit_ballot", caller, ErrNotOnPanel)
	}

	res := &models.RoundResult{
		TournamentID: t.ID,
		DebateID:     d.ID,
		JudgeID:      caller.UserID,
		JudgeName:    caller.Name,
		AffScore:     in.AffScore,
		NegScore:     in.NegScore,
		Decision:     in.Decision,
		RFD:          strings.TrimSpace(in.RFD),
		Flow:         in.Flow,
	}
	if err := s.repo.UpsertResult(ctx, res); err != nil {
		return nil, err
	}

	s.metrics.BallotSubmitted()
	s.log.Info("Ballot submitted", "tournament", t.ID, "debate", d.ID, "judge", caller.UserID, "decision", res.Decision)
	return res, nil
}

// ListForDebate returns the ballots cast on a round
func (s *BallotService) ListForDebate(ctx context.Context, caller Caller, debateID string) ([]models.RoundResult, error) {
	if caller.TournamentID == "" {
		return nil, ErrNoTournament
	}
	d, err := s.repo.GetDebate(ctx, debateID)
	if err == repository.ErrNotFound {
		return nil, ErrDebateNotFound
	}
	if err != nil {
		return nil, err
	}
	if d.TournamentID != caller.TournamentID {
		return nil, ErrDebateNotFound
	}
	results, err := s.repo.ListResultsForDebate(ctx, debateID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.RoundResult{}
	}
	return results, nil
}
