package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository/mock"
	"github.com/abrezinsky/ldtab/internal/services"
	"github.com/abrezinsky/ldtab/internal/testutil"
)

type sentNotification struct {
	TournamentID string
	UserID       string
	Message      string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, tournamentID, userID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotification{tournamentID, userID, message})
	return nil
}

func (n *recordingNotifier) to(userID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, s := range n.sent {
		if s.UserID == userID {
			out = append(out, s.Message)
		}
	}
	return out
}

type recordingMetrics struct {
	mu           sync.Mutex
	created      int
	assigned     int
	ballots      int
	eliminations int
	finalized    []models.DebateType
	rejected     []string
}

func (m *recordingMetrics) RoundCreated()    { m.mu.Lock(); m.created++; m.mu.Unlock() }
func (m *recordingMetrics) JudgeAssigned()   { m.mu.Lock(); m.assigned++; m.mu.Unlock() }
func (m *recordingMetrics) BallotSubmitted() { m.mu.Lock(); m.ballots++; m.mu.Unlock() }
func (m *recordingMetrics) Elimination()     { m.mu.Lock(); m.eliminations++; m.mu.Unlock() }

func (m *recordingMetrics) RoundFinalized(t models.DebateType) {
	m.mu.Lock()
	m.finalized = append(m.finalized, t)
	m.mu.Unlock()
}

func (m *recordingMetrics) MutationRejected(reason string) {
	m.mu.Lock()
	m.rejected = append(m.rejected, reason)
	m.mu.Unlock()
}

// env is a tournament owned by an admin with every service wired to one store
type env struct {
	ctx           context.Context
	repo          *mock.Repository
	notifier      *recordingNotifier
	metrics       *recordingMetrics
	tournaments   *services.TournamentService
	profiles      *services.ProfileService
	rounds        *services.RoundService
	ballots       *services.BallotService
	standings     *services.StandingsService
	snapshot      *services.SnapshotService
	seed          *services.SeedService
	notifications *services.NotificationService
	admin         services.Caller
	tournament    *models.Tournament
}

func setupEnv(t *testing.T) *env {
	t.Helper()

	log := testutil.NewLogger()
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	e := &env{
		ctx:      context.Background(),
		repo:     repo,
		notifier: &recordingNotifier{},
		metrics:  &recordingMetrics{},
	}
	e.tournaments = services.NewTournamentService(log, repo, e.metrics)
	e.profiles = services.NewProfileService(log, repo, e.metrics)
	e.rounds = services.NewRoundService(log, repo, e.notifier, e.metrics)
	e.ballots = services.NewBallotService(log, repo, e.metrics)
	e.standings = services.NewStandingsService(log, repo)
	e.snapshot = services.NewSnapshotService(log, repo)
	e.seed = services.NewSeedService(log, repo, gofakeit.New(42), e.metrics)
	e.notifications = services.NewNotificationService(log, repo)

	e.admin = services.Caller{UserID: "admin", Name: "Ada Admin", Role: models.RoleAdmin}
	if _, err := e.profiles.Register(e.ctx, e.admin.UserID, e.admin.Name, e.admin.Role); err != nil {
		t.Fatalf("Register admin: %v", err)
	}
	tour, err := e.tournaments.Create(e.ctx, e.admin, "Spring Invitational", "Resolved: justice requires privacy")
	if err != nil {
		t.Fatalf("Create tournament: %v", err)
	}
	e.tournament = tour
	e.admin.TournamentID = tour.ID
	return e
}

// join registers and joins a member, returning their session
func (e *env) join(t *testing.T, id, name string, role models.Role) services.Caller {
	t.Helper()
	if _, err := e.profiles.Register(e.ctx, id, name, role); err != nil {
		t.Fatalf("Register %s: %v", id, err)
	}
	c := services.Caller{UserID: id, Name: name, Role: role}
	if _, err := e.tournaments.Join(e.ctx, c, e.tournament.ID); err != nil {
		t.Fatalf("Join %s: %v", id, err)
	}
	c.TournamentID = e.tournament.ID
	return c
}

// round creates a debate between a1 and b1
func (e *env) round(t *testing.T, typ models.DebateType, stage string) *models.Debate {
	t.Helper()
	d, err := e.rounds.Create(e.ctx, e.admin, services.RoundInput{
		Type:  typ,
		Stage: stage,
		AffID: "a1",
		NegID: "b1",
	})
	if err != nil {
		t.Fatalf("Create round: %v", err)
	}
	return d
}

// debaters adds debaters a1 and b1
func (e *env) debaters(t *testing.T) {
	t.Helper()
	e.join(t, "a1", "Avery", models.RoleDebater)
	e.join(t, "b1", "Blake", models.RoleDebater)
}

// judges adds judges j1..jn
func (e *env) judges(t *testing.T, names ...string) []services.Caller {
	t.Helper()
	out := make([]services.Caller, 0, len(names))
	for i, n := range names {
		out = append(out, e.join(t, judgeID(i+1), n, models.RoleJudge))
	}
	return out
}

func judgeID(n int) string {
	return "j" + string(rune('0'+n))
}

// vote seats judge on the panel if needed, then submits their ballot
func (e *env) vote(t *testing.T, judge services.Caller, debateID string, d models.Decision) {
	t.Helper()
	if err := e.rounds.AssignJudge(e.ctx, e.admin, debateID, judge.UserID); err != nil {
		t.Fatalf("AssignJudge %s: %v", judge.UserID, err)
	}
	if _, err := e.ballots.Submit(e.ctx, judge, services.BallotInput{
		DebateID: debateID,
		AffScore: 28,
		NegScore: 27,
		Decision: d,
		RFD:      "clearer weighing",
	}); err != nil {
		t.Fatalf("Submit ballot: %v", err)
	}
}

func (e *env) profile(t *testing.T, id string) *models.UserProfile {
	t.Helper()
	p, err := e.repo.GetProfile(e.ctx, id)
	if err != nil {
		t.Fatalf("GetProfile %s: %v", id, err)
	}
	return p
}

func (e *env) debate(t *testing.T, id string) *models.Debate {
	t.Helper()
	d, err := e.repo.GetDebate(e.ctx, id)
	if err != nil {
		t.Fatalf("GetDebate %s: %v", id, err)
	}
	return d
}
