package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
)

// RoundServiceRepository defines the repository methods needed by RoundService
type RoundServiceRepository interface {
	repository.TournamentRepository
	repository.ProfileRepository
	repository.DebateRepository
	repository.ResultRepository
}

// RoundService drives the Open -> Closed round lifecycle
type RoundService struct {
	log      logger.Logger
	repo     RoundServiceRepository
	notifier Notifier
	metrics  Recorder
	guard    guard
}

// NewRoundService creates a new RoundService. notifier may be nil.
func NewRoundService(log logger.Logger, repo RoundServiceRepository, notifier Notifier, metrics Recorder) *RoundService {
	metrics = recorderOrNop(metrics)
	return &RoundService{
		log:      log,
		repo:     repo,
		notifier: notifier,
		metrics:  metrics,
		guard:    guard{log: log, repo: repo, metrics: metrics},
	}
}

// RoundInput holds the fields an admin supplies when creating a round
type RoundInput struct {
	Topic   string            `json:"topic"`
	Type    models.DebateType `json:"type"`
	Stage   string            `json:"stage"`
	AffID   string            `json:"aff_id"`
	AffName string            `json:"aff_name"`
	NegID   string            `json:"neg_id"`
	NegName string            `json:"neg_name"`
}

// MergeJudges adds judgeID to the panel, keeping insertion order, dropping
// duplicates and keeping only the first MaxJudges members.
func MergeJudges(existing []string, judgeID string) []string {
	merged := make([]string, 0, models.MaxJudges)
	seen := make(map[string]bool)
	for _, id := range append(append([]string{}, existing...), judgeID) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, id)
	}
	if len(merged) > models.MaxJudges {
		merged = merged[:models.MaxJudges]
	}
	return merged
}

// FilterAssignments returns the debates a user takes part in. Debaters keep
// closed rounds so they can review feedback; everyone else sees open rounds only.
func FilterAssignments(debates []models.Debate, userID string, role models.Role) []models.Debate {
	out := []models.Debate{}
	for _, d := range debates {
		if !d.Involves(userID) {
			continue
		}
		if role != models.RoleDebater && d.Status != models.DebateOpen {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (s *RoundService) notify(ctx context.Context, tournamentID, userID, message string) {
	if s.notifier == nil || userID == "" {
		return
	}
	if err := s.notifier.Notify(ctx, tournamentID, userID, message); err != nil {
		s.log.Warn("Failed to queue notification", "tournament", tournamentID, "user", userID, "error", err)
	}
}

// debate loads a debate of the caller's tournament; found is false when it does not exist
func (s *RoundService) debate(ctx context.Context, caller Caller, debateID string) (d *models.Debate, found bool, err error) {
	d, err = s.repo.GetDebate(ctx, debateID)
	if err == repository.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if d.TournamentID != caller.TournamentID {
		return nil, false, nil
	}
	return d, true, nil
}

func (s *RoundService) fillName(ctx context.Context, id, name string) string {
	if name != "" {
		return name
	}
	if p, err := s.repo.GetProfile(ctx, id); err == nil {
		return p.Name
	}
	return name
}

// Create opens a new round with an empty judge panel and tells both debaters their side
func (s *RoundService) Create(ctx context.Context, caller Caller, in RoundInput) (*models.Debate, error) {
	t, err := s.guard.admin(ctx, caller)
	if err != nil {
		return nil, s.guard.reject("create_round", caller, err)
	}

	if in.Type == "" {
		in.Type = models.DebatePrelim
	}
	if !in.Type.Valid() {
		return nil, s.guard.reject("create_round", caller, ErrInvalidDebateType)
	}
	in.AffID = strings.TrimSpace(in.AffID)
	in.NegID = strings.TrimSpace(in.NegID)
	if in.AffID == "" || in.NegID == "" {
		return nil, s.guard.reject("create_round", caller, ErrMissingDebater)
	}
	if in.AffID == in.NegID {
		return nil, s.guard.reject("create_round", caller, ErrSameDebater)
	}
	if strings.TrimSpace(in.Topic) == "" {
		in.Topic = t.Topic
	}

	d := &models.Debate{
		TournamentID: t.ID,
		Topic:        strings.TrimSpace(in.Topic),
		Type:         in.Type,
		Stage:        strings.TrimSpace(in.Stage),
		AffID:        in.AffID,
		AffName:      s.fillName(ctx, in.AffID, strings.TrimSpace(in.AffName)),
		NegID:        in.NegID,
		NegName:      s.fillName(ctx, in.NegID, strings.TrimSpace(in.NegName)),
		JudgeIDs:     []string{},
		Status:       models.DebateOpen,
	}
	if err := s.repo.CreateDebate(ctx, d); err != nil {
		return nil, err
	}

	s.metrics.RoundCreated()
	s.log.Info("Round created", "tournament", t.ID, "debate", d.ID, "type", d.Type, "stage", d.Stage, "aff", d.AffID, "neg", d.NegID)

	label := d.Stage
	if label == "" {
		label = "a new round"
	}
	s.notify(ctx, t.ID, d.AffID, fmt.Sprintf("You are Affirmative in %s vs %s", label, d.NegName))
	s.notify(ctx, t.ID, d.NegID, fmt.Sprintf("You are Negative in %s vs %s", label, d.AffName))
	return d, nil
}

// AssignJudge adds a judge to an open round. Unknown debates are ignored and
// assignments beyond the third judge are dropped.
func (s *RoundService) AssignJudge(ctx context.Context, caller Caller, debateID, judgeID string) error {
	if _, err := s.guard.admin(ctx, caller); err != nil {
		return s.guard.reject("assign_judge", caller, err)
	}
	judgeID = strings.TrimSpace(judgeID)
	if judgeID == "" {
		return s.guard.reject("assign_judge", caller, ErrMissingJudge)
	}

	d, found, err := s.debate(ctx, caller, debateID)
	if err != nil {
		return err
	}
	if !found {
		s.log.Debug("Assign judge ignored for unknown debate", "tournament", caller.TournamentID, "debate", debateID)
		return nil
	}
	if d.Status == models.DebateClosed {
		return s.guard.reject("assign_judge", caller, ErrRoundClosed)
	}
	if d.HasJudge(judgeID) {
		return nil
	}

	merged := MergeJudges(d.JudgeIDs, judgeID)
	if len(merged) == len(d.JudgeIDs) {
		s.log.Info("Judge panel full, assignment dropped", "tournament", caller.TournamentID, "debate", d.ID, "judge", judgeID)
		return nil
	}
	if err := s.repo.SetDebateJudges(ctx, d.ID, merged); err != nil {
		return err
	}

	s.metrics.JudgeAssigned()
	s.log.Info("Judge assigned", "tournament", caller.TournamentID, "debate", d.ID, "judge", judgeID)
	s.notify(ctx, caller.TournamentID, judgeID, fmt.Sprintf("You are judging %s vs %s (%s)", d.AffName, d.NegName, d.Stage))
	return nil
}

// RemoveJudge takes a judge off a round's panel whatever the round's status
func (s *RoundService) RemoveJudge(ctx context.Context, caller Caller, debateID, judgeID string) error {
	if _, err := s.guard.admin(ctx, caller); err != nil {
		return s.guard.reject("remove_judge", caller, err)
	}

	d, found, err := s.debate(ctx, caller, debateID)
	if err != nil {
		return err
	}
	if !found || !d.HasJudge(judgeID) {
		return nil
	}

	remaining := make([]string, 0, len(d.JudgeIDs))
	for _, id := range d.JudgeIDs {
		if id != judgeID {
			remaining = append(remaining, id)
		}
	}
	if err := s.repo.SetDebateJudges(ctx, d.ID, remaining); err != nil {
		return err
	}
	s.log.Info("Judge removed", "tournament", caller.TournamentID, "debate", d.ID, "judge", judgeID)
	return nil
}

// Finalize closes a round. In an Elimination round with a decisive winner the
// loser is marked Eliminated in the same write.
func (s *RoundService) Finalize(ctx context.Context, caller Caller, debateID string) (models.Winner, error) {
	if _, err := s.guard.admin(ctx, caller); err != nil {
		return models.WinnerPending, s.guard.reject("finalize", caller, err)
	}

	d, found, err := s.debate(ctx, caller, debateID)
	if err != nil {
		return models.WinnerPending, err
	}
	if !found {
		s.log.Debug("Finalize ignored for unknown debate", "tournament", caller.TournamentID, "debate", debateID)
		return models.WinnerPending, nil
	}

	results, err := s.repo.ListResultsForDebate(ctx, d.ID)
	if err != nil {
		return models.WinnerPending, err
	}
	winner := Tally(results)

	if d.Status == models.DebateClosed {
		return winner, nil
	}

	loserID := ""
	if d.Type == models.DebateElimination {
		switch winner {
		case models.WinnerAff:
			loserID = d.NegID
		case models.WinnerNeg:
			loserID = d.AffID
		}
	}
	if loserID != "" {
		if _, err := s.repo.GetProfile(ctx, loserID); err == repository.ErrNotFound {
			s.log.Warn("Loser has no profile, skipping elimination", "tournament", caller.TournamentID, "debate", d.ID, "debater", loserID)
			loserID = ""
		} else if err != nil {
			return models.WinnerPending, err
		}
	}

	if err := s.repo.FinalizeDebate(ctx, d.ID, loserID); err != nil {
		return models.WinnerPending, err
	}

	s.metrics.RoundFinalized(d.Type)
	if loserID != "" {
		s.metrics.Elimination()
	}
	s.log.Info("Round finalized", "tournament", caller.TournamentID, "debate", d.ID, "winner", winner, "eliminated", loserID)
	return winner, nil
}

// Delete removes a round. Its ballots are left orphaned.
func (s *RoundService) Delete(ctx context.Context, caller Caller, debateID string) error {
	if _, err := s.guard.admin(ctx, caller); err != nil {
		return s.guard.reject("delete_round", caller, err)
	}
	_, found, err := s.debate(ctx, caller, debateID)
	if err != nil || !found {
		return err
	}
	if err := s.repo.DeleteDebate(ctx, debateID); err != nil && err != repository.ErrNotFound {
		return err
	}
	s.log.Info("Round deleted", "tournament", caller.TournamentID, "debate", debateID)
	return nil
}

// Get returns one debate of the caller's tournament
func (s *RoundService) Get(ctx context.Context, caller Caller, debateID string) (*models.Debate, error) {
	if caller.TournamentID == "" {
		return nil, ErrNoTournament
	}
	d, found, err := s.debate(ctx, caller, debateID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrDebateNotFound
	}
	return d, nil
}

// List returns every debate of the caller's tournament in creation order
func (s *RoundService) List(ctx context.Context, caller Caller) ([]models.Debate, error) {
	if caller.TournamentID == "" {
		return nil, ErrNoTournament
	}
	debates, err := s.repo.ListDebates(ctx, caller.TournamentID)
	if err != nil {
		return nil, err
	}
	if debates == nil {
		debates = []models.Debate{}
	}
	return debates, nil
}

// MyAssignments returns the caller's rounds
func (s *RoundService) MyAssignments(ctx context.Context, caller Caller) ([]models.Debate, error) {
	debates, err := s.List(ctx, caller)
	if err != nil {
		return nil, err
	}
	return FilterAssignments(debates, caller.UserID, caller.Role), nil
}
