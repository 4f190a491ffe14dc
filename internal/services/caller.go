package services

import (
	"context"
	"strings"

	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
)

// Caller identifies who is performing an operation and in which tournament
type Caller struct {
	UserID       string      `json:"user_id"`
	Name         string      `json:"name"`
	Role         models.Role `json:"role"`
	TournamentID string      `json:"tournament_id,omitempty"`
}

func (c Caller) IsAdmin() bool { return c.Role == models.RoleAdmin }
func (c Caller) IsJudge() bool { return c.Role == models.RoleJudge }

// NormalizeCode upper-cases and trims a tournament code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Recorder receives engine events. internal/metrics provides the Prometheus implementation.
type Recorder interface {
	RoundCreated()
	JudgeAssigned()
	BallotSubmitted()
	RoundFinalized(t models.DebateType)
	Elimination()
	MutationRejected(reason string)
}

type nopRecorder struct{}

func (nopRecorder) RoundCreated()                    {}
func (nopRecorder) JudgeAssigned()                   {}
func (nopRecorder) BallotSubmitted()                 {}
func (nopRecorder) RoundFinalized(models.DebateType) {}
func (nopRecorder) Elimination()                     {}
func (nopRecorder) MutationRejected(string)          {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

// Notifier queues a nudge for a user. internal/notify provides implementations.
type Notifier interface {
	Notify(ctx context.Context, tournamentID, userID, message string) error
}

// guard holds the checks shared by every mutating operation
type guard struct {
	log     logger.Logger
	repo    repository.TournamentRepository
	metrics Recorder
}

// openTournament returns the caller's tournament, rejecting a missing or Closed one
func (g guard) openTournament(ctx context.Context, caller Caller) (*models.Tournament, error) {
	t, err := g.tournament(ctx, caller)
	if err != nil {
		return nil, err
	}
	if t.IsClosed() {
		return nil, ErrTournamentClosed
	}
	return t, nil
}

// tournament returns the caller's tournament in any state
func (g guard) tournament(ctx context.Context, caller Caller) (*models.Tournament, error) {
	if caller.TournamentID == "" {
		return nil, ErrNoTournament
	}
	t, err := g.repo.GetTournament(ctx, caller.TournamentID)
	if err == repository.ErrNotFound {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// admin checks the role and then the tournament state
func (g guard) admin(ctx context.Context, caller Caller) (*models.Tournament, error) {
	if !caller.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return g.openTournament(ctx, caller)
}

// reject logs and counts a refused mutation, returning err unchanged
func (g guard) reject(op string, caller Caller, err error) error {
	reason := rejectReason(err)
	g.log.Warn("Mutation rejected", "op", op, "tournament", caller.TournamentID, "user", caller.UserID, "reason", reason, "error", err)
	g.metrics.MutationRejected(reason)
	return err
}
