package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/notify"
	"github.com/abrezinsky/ldtab/internal/repository"
	"github.com/abrezinsky/ldtab/internal/services"
	"github.com/abrezinsky/ldtab/internal/testutil"
)

func TestSnapshotService_All(t *testing.T) {
	e := setupEnv(t)
	e.debaters(t)
	judges := e.judges(t, "Jordan")
	d := e.round(t, models.DebatePrelim, "Round 1")
	e.vote(t, judges[0], d.ID, models.DecisionAff)
	e.repo.CreateNotification(e.ctx, &models.Notification{TournamentID: e.tournament.ID, UserID: "a1", Message: "hi"})

	all, err := e.snapshot.All(e.ctx, e.tournament.ID, "a1")
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != len(repository.AllCollections) {
		t.Fatalf("expected every collection, got %d", len(all))
	}
	if got := all[repository.CollectionTournaments].([]models.Tournament); len(got) != 1 || got[0].ID != e.tournament.ID {
		t.Errorf("tournaments = %+v", got)
	}
	if got := all[repository.CollectionProfiles].([]models.UserProfile); len(got) != 4 {
		t.Errorf("expected 4 profiles, got %d", len(got))
	}
	if got := all[repository.CollectionDebates].([]models.Debate); len(got) != 1 {
		t.Errorf("expected 1 debate, got %d", len(got))
	}
	if got := all[repository.CollectionResults].([]models.RoundResult); len(got) != 1 {
		t.Errorf("expected 1 ballot, got %d", len(got))
	}
	if got := all[repository.CollectionNotifications].([]models.Notification); len(got) != 1 {
		t.Errorf("expected 1 notification for a1, got %d", len(got))
	}

	// notifications are scoped to the user
	other, _ := e.snapshot.Snapshot(e.ctx, e.tournament.ID, "b1", repository.CollectionNotifications)
	if got := other.([]models.Notification); len(got) != 0 {
		t.Errorf("b1 saw a1's notifications: %+v", got)
	}
}

func TestSnapshotService_EmptyCollectionsAreNotNil(t *testing.T) {
	e := setupEnv(t)

	got, err := e.snapshot.Snapshot(e.ctx, "NOPE99", "", repository.CollectionTournaments)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if ts := got.([]models.Tournament); ts == nil || len(ts) != 0 {
		t.Errorf("expected empty slice, got %#v", ts)
	}
	got, _ = e.snapshot.Snapshot(e.ctx, e.tournament.ID, "", repository.CollectionDebates)
	if ds := got.([]models.Debate); ds == nil {
		t.Error("expected non-nil debates slice")
	}
}

func TestSnapshotService_Errors(t *testing.T) {
	e := setupEnv(t)

	if _, err := e.snapshot.Snapshot(e.ctx, e.tournament.ID, "", "ballots"); err == nil {
		t.Error("expected error for unknown collection")
	}

	e.repo.ListDebatesError = errors.New("boom")
	if _, err := e.snapshot.All(e.ctx, e.tournament.ID, ""); err == nil {
		t.Error("expected All to fail when one collection fails")
	}
}

func TestSeedService_SeedDemo(t *testing.T) {
	e := setupEnv(t)
	e.join(t, "a1", "Avery", models.RoleDebater)

	created, err := e.seed.SeedDemo(e.ctx, e.admin, 6, 3)
	if err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	if len(created) != 9 {
		t.Fatalf("expected 9 profiles, got %d", len(created))
	}

	seen := map[string]bool{"avery": true, "ada admin": true}
	debaters := 0
	for _, p := range created {
		key := strings.ToLower(p.Name)
		if seen[key] {
			t.Errorf("duplicate name %q", p.Name)
		}
		seen[key] = true
		if p.TournamentID != e.tournament.ID {
			t.Errorf("%s not in tournament", p.Name)
		}
		if p.Role == models.RoleDebater {
			debaters++
			if p.Status != models.DebaterActive || p.Email == "" {
				t.Errorf("unexpected debater %+v", p)
			}
		}
	}
	if debaters != 6 {
		t.Errorf("expected 6 debaters, got %d", debaters)
	}

	eligible, _ := e.profiles.EligibleDebaters(e.ctx, e.admin)
	if len(eligible) != 7 {
		t.Errorf("expected 7 eligible debaters, got %d", len(eligible))
	}
}

func TestSeedService_SameSeedSameNames(t *testing.T) {
	ctx := context.Background()
	names := func() []string {
		repo := testutil.NewMemoryRepository(t)
		log := testutil.NewLogger()
		admin := services.Caller{UserID: "admin", Name: "Ada", Role: models.RoleAdmin}
		tour, err := services.NewTournamentService(log, repo, nil).Create(ctx, admin, "Demo", "")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		admin.TournamentID = tour.ID
		created, err := services.NewSeedService(log, repo, gofakeit.New(7), nil).SeedDemo(ctx, admin, 3, 0)
		if err != nil {
			t.Fatalf("SeedDemo: %v", err)
		}
		var out []string
		for _, p := range created {
			out = append(out, p.Name)
		}
		return out
	}
	a, b := names(), names()
	if strings.Join(a, ",") != strings.Join(b, ",") {
		t.Errorf("expected deterministic names, got %v and %v", a, b)
	}
}

func TestSeedService_Rejections(t *testing.T) {
	e := setupEnv(t)
	judge := e.join(t, "j1", "Jordan", models.RoleJudge)

	if _, err := e.seed.SeedDemo(e.ctx, judge, 1, 1); !errors.Is(err, services.ErrNotAdmin) {
		t.Errorf("expected ErrNotAdmin, got %v", err)
	}
	for _, counts := range [][2]int{{-1, 0}, {0, 101}} {
		if _, err := e.seed.SeedDemo(e.ctx, e.admin, counts[0], counts[1]); !errors.Is(err, services.ErrInvalidSeedCount) {
			t.Errorf("%v: expected ErrInvalidSeedCount, got %v", counts, err)
		}
	}
}

func TestNotificationService_ListAndDismiss(t *testing.T) {
	e := setupEnv(t)
	e.debaters(t)
	relay := notify.NewStoreRelay(e.repo)
	relay.Notify(e.ctx, e.tournament.ID, "a1", "first")
	relay.Notify(e.ctx, e.tournament.ID, "a1", "second")
	relay.Notify(e.ctx, e.tournament.ID, "b1", "theirs")

	me := services.Caller{UserID: "a1", Role: models.RoleDebater, TournamentID: e.tournament.ID}
	list, err := e.notifications.List(e.ctx, me)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Message != "first" || list[1].Message != "second" {
		t.Fatalf("unexpected notifications %+v", list)
	}

	if err := e.notifications.Dismiss(e.ctx, me, list[0].ID); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	list, _ = e.notifications.List(e.ctx, me)
	if len(list) != 1 || list[0].Message != "second" {
		t.Errorf("unexpected notifications after dismiss %+v", list)
	}

	// someone else's notification is left alone
	theirs, _ := e.repo.ListNotifications(e.ctx, e.tournament.ID, "b1")
	if err := e.notifications.Dismiss(e.ctx, me, theirs[0].ID); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if still, _ := e.repo.ListNotifications(e.ctx, e.tournament.ID, "b1"); len(still) != 1 {
		t.Error("dismissed another user's notification")
	}

	if _, err := e.notifications.List(e.ctx, services.Caller{UserID: "a1"}); !errors.Is(err, services.ErrNoTournament) {
		t.Errorf("expected ErrNoTournament, got %v", err)
	}
}
