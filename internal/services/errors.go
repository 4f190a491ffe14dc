package services

import (
	stderrors "errors"

	"github.com/abrezinsky/ldtab/internal/errors"
)

// Service errors. Closed-state rejections carry errors.ErrClosed so callers
// can tell them apart from unexpected failures.
var (
	ErrTournamentClosed   = errors.Closed("tournament is closed")
	ErrRoundClosed        = errors.Closed("round is closed")
	ErrNoTournament       = errors.Validation("no tournament selected")
	ErrTournamentNotFound = errors.NotFound("tournament not found")
	ErrDebateNotFound     = errors.NotFound("debate not found")
	ErrProfileNotFound    = errors.NotFound("profile not found")
	ErrDuplicateName      = errors.Validation("that name is already taken in this tournament")
	ErrNotAdmin           = errors.Forbidden("admin role required")
	ErrNotJudge           = errors.Forbidden("only judges can submit ballots")
	ErrNotOnPanel         = errors.Forbidden("you are not judging this round")
	ErrNotOwner           = errors.Forbidden("only the tournament owner can do this")
	ErrInvalidDecision    = errors.Validation("decision must be Aff or Neg")
	ErrInvalidScore       = errors.Validation("scores must not be negative")
	ErrInvalidRole        = errors.Validation("role must be Admin, Judge or Debater")
	ErrInvalidStatus      = errors.Validation("status must be Active or Eliminated")
	ErrInvalidDebateType  = errors.Validation("type must be Prelim or Elimination")
	ErrSameDebater        = errors.Validation("affirmative and negative must be different debaters")
	ErrMissingDebater     = errors.Validation("both debaters are required")
	ErrMissingName        = errors.Validation("name is required")
	ErrMissingJudge       = errors.Validation("judge id is required")
	ErrNotDebater         = errors.Validation("profile is not a debater")
	ErrKickSelf           = errors.Validation("you cannot remove yourself")
	ErrInvalidSeedCount   = errors.Validation("counts must be between 0 and 100")
	ErrCodeExhausted      = errors.Internalf("could not generate a unique tournament code")
)

// rejectReason labels a rejected mutation for logs and metrics
func rejectReason(err error) string {
	switch {
	case stderrors.Is(err, ErrTournamentClosed):
		return "tournament_closed"
	case stderrors.Is(err, ErrRoundClosed):
		return "round_closed"
	case stderrors.Is(err, ErrNoTournament):
		return "no_tournament"
	case stderrors.Is(err, ErrNotOnPanel):
		return "not_on_panel"
	}
	return errors.KindOf(err).String()
}
