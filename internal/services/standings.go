package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
)

// Tally decides a round from its ballots by majority of declared decisions.
// Scores are ignored. No ballots or a tie gives Pending.
func Tally(results []models.RoundResult) models.Winner {
	var aff, neg int
	for _, r := range results {
		switch r.Decision {
		case models.DecisionAff:
			aff++
		case models.DecisionNeg:
			neg++
		}
	}
	switch {
	case aff > neg:
		return models.WinnerAff
	case neg > aff:
		return models.WinnerNeg
	default:
		return models.WinnerPending
	}
}

// ComputeStandings derives win/loss records from Closed debates only.
// Rows are seeded from debater profiles in list order, followed by any
// debater that appears only in a debate. The result is sorted by wins,
// descending, with ties keeping seed order.
func ComputeStandings(profiles []models.UserProfile, debates []models.Debate, results []models.RoundResult) []models.DebaterStats {
	var order []string
	stats := make(map[string]*models.DebaterStats)
	ensure := func(id, name string, status models.DebaterStatus) *models.DebaterStats {
		if s, ok := stats[id]; ok {
			return s
		}
		if status == "" {
			status = models.DebaterActive
		}
		s := &models.DebaterStats{ID: id, Name: name, Status: status}
		stats[id] = s
		order = append(order, id)
		return s
	}

	for _, p := range profiles {
		if p.Role == models.RoleDebater {
			ensure(p.ID, p.Name, p.Status)
		}
	}

	byDebate := make(map[string][]models.RoundResult)
	for _, r := range results {
		byDebate[r.DebateID] = append(byDebate[r.DebateID], r)
	}

	for _, d := range debates {
		if d.Status != models.DebateClosed {
			continue
		}
		aff := ensure(d.AffID, d.AffName, "")
		neg := ensure(d.NegID, d.NegName, "")
		switch Tally(byDebate[d.ID]) {
		case models.WinnerAff:
			aff.Wins++
			neg.Losses++
		case models.WinnerNeg:
			neg.Wins++
			aff.Losses++
		}
	}

	out := make([]models.DebaterStats, 0, len(order))
	for _, id := range order {
		out = append(out, *stats[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Wins > out[j].Wins })
	return out
}

// StandingsServiceRepository defines the repository methods needed by StandingsService
type StandingsServiceRepository interface {
	repository.ProfileRepository
	repository.DebateRepository
	repository.ResultRepository
}

// StandingsService answers winner and standings queries
type StandingsService struct {
	log  logger.Logger
	repo StandingsServiceRepository
}

// NewStandingsService creates a new StandingsService
func NewStandingsService(log logger.Logger, repo StandingsServiceRepository) *StandingsService {
	return &StandingsService{log: log, repo: repo}
}

// Winner tallies a round's ballots as they stand now, open or closed
func (s *StandingsService) Winner(ctx context.Context, caller Caller, debateID string) (models.Winner, error) {
	if caller.TournamentID == "" {
		return models.WinnerPending, ErrNoTournament
	}
	d, err := s.repo.GetDebate(ctx, debateID)
	if err == repository.ErrNotFound {
		return models.WinnerPending, ErrDebateNotFound
	}
	if err != nil {
		return models.WinnerPending, err
	}
	if d.TournamentID != caller.TournamentID {
		return models.WinnerPending, ErrDebateNotFound
	}
	results, err := s.repo.ListResultsForDebate(ctx, debateID)
	if err != nil {
		return models.WinnerPending, err
	}
	return Tally(results), nil
}

// Standings returns the caller's tournament standings
func (s *StandingsService) Standings(ctx context.Context, caller Caller) ([]models.DebaterStats, error) {
	if caller.TournamentID == "" {
		return nil, ErrNoTournament
	}
	return s.StandingsFor(ctx, caller.TournamentID)
}

// StandingsFor recomputes standings from the tournament's current collections
func (s *StandingsService) StandingsFor(ctx context.Context, tournamentID string) ([]models.DebaterStats, error) {
	var (
		profiles []models.UserProfile
		debates  []models.Debate
		results  []models.RoundResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.repo.ListProfiles(gctx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		debates, err = s.repo.ListDebates(gctx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		results, err = s.repo.ListResults(gctx, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading standings: %w", err)
	}

	return ComputeStandings(profiles, debates, results), nil
}

// StandingsSheet is the worksheet name used by ExportXLSX
const StandingsSheet = "Standings"

// ExportXLSX renders the standings as a workbook
func (s *StandingsService) ExportXLSX(ctx context.Context, caller Caller) ([]byte, error) {
	rows, err := s.Standings(ctx, caller)
	if err != nil {
		return nil, err
	}
	return StandingsWorkbook(rows)
}

// StandingsWorkbook writes rows to a single-sheet XLSX file
func StandingsWorkbook(rows []models.DebaterStats) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), StandingsSheet); err != nil {
		return nil, err
	}

	header := []interface{}{"Rank", "Debater", "Wins", "Losses", "Status"}
	if err := f.SetSheetRow(StandingsSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, r := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{i + 1, r.Name, r.Wins, r.Losses, string(r.Status)}
		if err := f.SetSheetRow(StandingsSheet, axis, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
