package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
	"github.com/abrezinsky/ldtab/internal/services"
	"github.com/abrezinsky/ldtab/internal/testutil"
)

func setupProfileService(t *testing.T) *services.ProfileService {
	t.Helper()
	return services.NewProfileService(testutil.NewLogger(), testutil.NewTestRepository(t), nil)
}

func TestProfileService_Register(t *testing.T) {
	svc := setupProfileService(t)
	ctx := context.Background()

	p, err := svc.Register(ctx, "u1", "  Avery ", models.RoleDebater)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if p.Name != "Avery" || p.Status != models.DebaterActive || p.TournamentID != "" {
		t.Errorf("unexpected profile %+v", p)
	}

	prefs, err := svc.Preferences(ctx, "u1")
	if err != nil {
		t.Fatalf("Preferences failed: %v", err)
	}
	want := map[string]string{
		repository.PrefUserName: "Avery",
		repository.PrefUserRole: "Debater",
	}
	if diff := cmp.Diff(want, prefs); diff != "" {
		t.Errorf("preferences (-want +got):\n%s", diff)
	}

	// switching to judge clears debater status
	p, err = svc.Register(ctx, "u1", "Avery", models.RoleJudge)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if p.Role != models.RoleJudge || p.Status != "" {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestProfileService_Register_Validation(t *testing.T) {
	svc := setupProfileService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "u1", "", models.RoleJudge); !errors.Is(err, services.ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
	if _, err := svc.Register(ctx, "u1", "Avery", "Coach"); !errors.Is(err, services.ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestProfileService_Register_RenameCollides(t *testing.T) {
	e := setupEnv(t)
	e.debaters(t)

	_, err := e.profiles.Register(e.ctx, "b1", "avery", models.RoleDebater)
	if !errors.Is(err, services.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
	if got := e.profile(t, "b1").Name; got != "Blake" {
		t.Errorf("name changed to %q", got)
	}
}

func TestProfileService_Lists(t *testing.T) {
	e := setupEnv(t)
	e.debaters(t)
	e.join(t, "j1", "Jordan", models.RoleJudge)
	e.profiles.SetStatus(e.ctx, e.admin, "b1", models.DebaterEliminated)

	all, err := e.profiles.List(e.ctx, e.admin)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 members, got %d", len(all))
	}

	names := func(ps []models.UserProfile) []string {
		out := []string{}
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}
	debaters, _ := e.profiles.Debaters(e.ctx, e.admin)
	if diff := cmp.Diff([]string{"Avery", "Blake"}, names(debaters)); diff != "" {
		t.Errorf("debaters (-want +got):\n%s", diff)
	}
	eligible, _ := e.profiles.EligibleDebaters(e.ctx, e.admin)
	if diff := cmp.Diff([]string{"Avery"}, names(eligible)); diff != "" {
		t.Errorf("eligible (-want +got):\n%s", diff)
	}

	if _, err := e.profiles.List(e.ctx, services.Caller{UserID: "x"}); !errors.Is(err, services.ErrNoTournament) {
		t.Errorf("expected ErrNoTournament, got %v", err)
	}
}

func TestProfileService_SetStatus(t *testing.T) {
	e := setupEnv(t)
	e.debaters(t)
	judge := e.join(t, "j1", "Jordan", models.RoleJudge)

	if err := e.profiles.SetStatus(e.ctx, e.admin, "a1", models.DebaterEliminated); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if s := e.profile(t, "a1").Status; s != models.DebaterEliminated {
		t.Errorf("expected Eliminated, got %q", s)
	}
	if err := e.profiles.SetStatus(e.ctx, e.admin, "a1", models.DebaterActive); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if s := e.profile(t, "a1").Status; s != models.DebaterActive {
		t.Errorf("expected Active, got %q", s)
	}

	tests := []struct {
		name   string
		caller services.Caller
		id     string
		status models.DebaterStatus
		want   error
	}{
		{"not admin", judge, "a1", models.DebaterEliminated, services.ErrNotAdmin},
		{"bad status", e.admin, "a1", "Benched", services.ErrInvalidStatus},
		{"not a debater", e.admin, "j1", models.DebaterEliminated, services.ErrNotDebater},
		{"unknown", e.admin, "zz", models.DebaterEliminated, services.ErrProfileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.profiles.SetStatus(e.ctx, tt.caller, tt.id, tt.status); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProfileService_UpdateContact(t *testing.T) {
	e := setupEnv(t)
	me := e.join(t, "a1", "Avery", models.RoleDebater)

	if err := e.profiles.UpdateContact(e.ctx, me, " avery@example.org ", "555-0100"); err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	p := e.profile(t, "a1")
	if p.Email != "avery@example.org" || p.Phone != "555-0100" {
		t.Errorf("unexpected contact %q / %q", p.Email, p.Phone)
	}

	ghost := services.Caller{UserID: "ghost", Role: models.RoleDebater}
	if err := e.profiles.UpdateContact(e.ctx, ghost, "x@example.org", ""); !errors.Is(err, services.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileService_Kick(t *testing.T) {
	e := setupEnv(t)
	e.debaters(t)

	if err := e.profiles.Kick(e.ctx, e.admin, "b1"); err != nil {
		t.Fatalf("Kick: %v", err)
	}
	if _, err := e.profiles.Get(e.ctx, "b1"); !errors.Is(err, services.ErrProfileNotFound) {
		t.Errorf("expected kicked profile gone, got %v", err)
	}
	if err := e.profiles.Kick(e.ctx, e.admin, "b1"); err != nil {
		t.Errorf("kicking twice should be a no-op, got %v", err)
	}
	if err := e.profiles.Kick(e.ctx, e.admin, e.admin.UserID); !errors.Is(err, services.ErrKickSelf) {
		t.Errorf("expected ErrKickSelf, got %v", err)
	}
}
