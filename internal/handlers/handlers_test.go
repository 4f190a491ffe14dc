package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"

	"github.com/abrezinsky/ldtab/internal/auth"
	"github.com/abrezinsky/ldtab/internal/handlers"
	"github.com/abrezinsky/ldtab/internal/metrics"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/notify"
	"github.com/abrezinsky/ldtab/internal/repository/mock"
	"github.com/abrezinsky/ldtab/internal/services"
	"github.com/abrezinsky/ldtab/internal/testutil"
)

const adminPassword = "test-password"

// testSetup creates all the dependencies needed for testing handlers
type testSetup struct {
	repo    *mock.Repository
	router  http.Handler
	metrics *metrics.Metrics
}

func newTestSetup(t *testing.T, opts handlers.Options) *testSetup {
	t.Helper()

	repo := mock.NewRepository(testutil.NewTestRepository(t))
	log := testutil.NewLogger()
	m := metrics.New()
	relay := notify.NewStoreRelay(repo)

	svc := handlers.Services{
		Tournaments:   services.NewTournamentService(log, repo, m),
		Profiles:      services.NewProfileService(log, repo, m),
		Rounds:        services.NewRoundService(log, repo, relay, m),
		Ballots:       services.NewBallotService(log, repo, m),
		Standings:     services.NewStandingsService(log, repo),
		Notifications: services.NewNotificationService(log, repo),
		Seed:          services.NewSeedService(log, repo, gofakeit.New(3), m),
	}
	sessions, err := auth.New("test-secret", adminPassword, 0)
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}

	if opts.BaseURL == "" {
		opts.BaseURL = "http://tab.local"
	}
	if opts.Health == nil {
		opts.Health = repo.Ping
	}
	opts.Metrics = m.Handler()
	opts.StoreMode = "sqlite"
	opts.Subscribers = repo.Subscribers

	h := handlers.New(svc, sessions, log, opts)
	return &testSetup{repo: repo, router: h.Router(), metrics: m}
}

func (s *testSetup) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, w, status)
	if got := decode[handlers.APIError](t, w); got.Code != code {
		t.Errorf("expected code %s, got %s (%s)", code, got.Code, got.Message)
	}
}

// session starts a session and returns its token and profile
func (s *testSetup) session(t *testing.T, name string, role models.Role, password string) (string, models.UserProfile) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/session", "", handlers.SessionRequest{Name: name, Role: role, Password: password})
	expectStatus(t, w, http.StatusCreated)
	resp := decode[handlers.SessionResponse](t, w)
	if resp.Token == "" || resp.Profile == nil {
		t.Fatalf("incomplete session response %+v", resp)
	}
	return resp.Token, *resp.Profile
}

// tournament is an admin-run tournament with two debaters and a judge joined
type tournament struct {
	code                   string
	admin, aff, neg, judge string
	affID, negID, judgeID  string
}

func (s *testSetup) tournament(t *testing.T) tournament {
	t.Helper()
	var tr tournament
	tr.admin, _ = s.session(t, "Ada", models.RoleAdmin, adminPassword)

	w := s.do(t, http.MethodPost, "/api/tournaments", tr.admin, handlers.TournamentCreateRequest{Name: "Spring Invitational", Topic: "Resolved: justice requires privacy"})
	expectStatus(t, w, http.StatusCreated)
	tr.code = decode[models.Tournament](t, w).ID

	join := func(name string, role models.Role) (string, string) {
		token, p := s.session(t, name, role, "")
		expectStatus(t, s.do(t, http.MethodPost, "/api/tournaments/"+tr.code+"/join", token, nil), http.StatusOK)
		return token, p.ID
	}
	tr.aff, tr.affID = join("Avery", models.RoleDebater)
	tr.neg, tr.negID = join("Blake", models.RoleDebater)
	tr.judge, tr.judgeID = join("Jordan", models.RoleJudge)
	return tr
}

func TestAPI_FullRound(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})
	tr := s.tournament(t)

	w := s.do(t, http.MethodPost, "/api/debates", tr.admin, services.RoundInput{Type: models.DebateElimination, Stage: "Final", AffID: tr.affID, NegID: tr.negID})
	expectStatus(t, w, http.StatusCreated)
	d := decode[models.Debate](t, w)
	if d.AffName != "Avery" || d.NegName != "Blake" || d.Topic != "Resolved: justice requires privacy" {
		t.Errorf("unexpected debate %+v", d)
	}

	expectStatus(t, s.do(t, http.MethodPost, "/api/debates/"+d.ID+"/judges", tr.admin, handlers.JudgeAssignRequest{JudgeID: tr.judgeID}), http.StatusNoContent)

	w = s.do(t, http.MethodGet, "/api/assignments", tr.judge, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[[]models.Debate](t, w); len(got) != 1 || got[0].ID != d.ID {
		t.Fatalf("unexpected assignments %+v", got)
	}

	w = s.do(t, http.MethodPost, "/api/debates/"+d.ID+"/ballot", tr.judge, handlers.BallotSubmitRequest{AffScore: 29, NegScore: 28, Decision: models.DecisionAff, RFD: "cleaner framework"})
	expectStatus(t, w, http.StatusCreated)
	if b := decode[models.RoundResult](t, w); b.JudgeID != tr.judgeID || b.JudgeName != "Jordan" {
		t.Errorf("ballot identity not taken from session: %+v", b)
	}

	w = s.do(t, http.MethodGet, "/api/debates/"+d.ID+"/winner", tr.aff, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[handlers.WinnerResponse](t, w); got.Winner != models.WinnerAff {
		t.Errorf("expected live winner Aff, got %s", got.Winner)
	}

	w = s.do(t, http.MethodPost, "/api/debates/"+d.ID+"/finalize", tr.admin, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[handlers.WinnerResponse](t, w); got.Winner != models.WinnerAff {
		t.Errorf("expected Aff, got %s", got.Winner)
	}

	w = s.do(t, http.MethodGet, "/api/standings", tr.aff, nil)
	expectStatus(t, w, http.StatusOK)
	want := []models.DebaterStats{
		{ID: tr.affID, Name: "Avery", Wins: 1, Losses: 0, Status: models.DebaterActive},
		{ID: tr.negID, Name: "Blake", Wins: 0, Losses: 1, Status: models.DebaterEliminated},
	}
	if diff := cmp.Diff(want, decode[[]models.DebaterStats](t, w)); diff != "" {
		t.Errorf("standings (-want +got):\n%s", diff)
	}

	// closed round
	w = s.do(t, http.MethodPost, "/api/debates/"+d.ID+"/ballot", tr.judge, handlers.BallotSubmitRequest{Decision: models.DecisionNeg})
	expectError(t, w, http.StatusConflict, handlers.ErrCodeRoundClosed)

	w = s.do(t, http.MethodGet, "/api/notifications", tr.aff, nil)
	expectStatus(t, w, http.StatusOK)
	notes := decode[[]models.Notification](t, w)
	if len(notes) != 1 || !strings.Contains(notes[0].Message, "Affirmative in Final vs Blake") {
		t.Fatalf("unexpected notifications %+v", notes)
	}
	expectStatus(t, s.do(t, http.MethodDelete, "/api/notifications/"+notes[0].ID, tr.aff, nil), http.StatusNoContent)
	w = s.do(t, http.MethodGet, "/api/notifications", tr.aff, nil)
	if got := decode[[]models.Notification](t, w); len(got) != 0 {
		t.Errorf("expected notification dismissed, got %+v", got)
	}
}

func TestAPI_ClosedTournament(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})
	tr := s.tournament(t)

	expectError(t, s.do(t, http.MethodPost, "/api/tournaments/"+tr.code+"/close", tr.aff, nil), http.StatusForbidden, handlers.ErrCodeForbidden)
	expectStatus(t, s.do(t, http.MethodPost, "/api/tournaments/"+strings.ToLower(tr.code)+"/close", tr.admin, nil), http.StatusOK)

	w := s.do(t, http.MethodGet, "/api/tournaments/"+tr.code, tr.aff, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[models.Tournament](t, w); got.Status != models.TournamentClosed {
		t.Errorf("expected Closed, got %s", got.Status)
	}

	writes := s.repo.Writes
	expectError(t, s.do(t, http.MethodPost, "/api/debates", tr.admin, services.RoundInput{AffID: tr.affID, NegID: tr.negID}), http.StatusConflict, handlers.ErrCodeTournamentClosed)
	expectError(t, s.do(t, http.MethodPut, "/api/profiles/"+tr.negID+"/status", tr.admin, handlers.StatusUpdateRequest{Status: models.DebaterEliminated}), http.StatusConflict, handlers.ErrCodeTournamentClosed)
	expectError(t, s.do(t, http.MethodPost, "/api/admin/seed", tr.admin, handlers.SeedRequest{Debaters: 1}), http.StatusConflict, handlers.ErrCodeTournamentClosed)
	if s.repo.Writes != writes {
		t.Errorf("closed tournament accepted %d writes", s.repo.Writes-writes)
	}

	// reads still work
	expectStatus(t, s.do(t, http.MethodGet, "/api/standings", tr.aff, nil), http.StatusOK)
}

func TestAPI_RequiresSession(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})

	for _, path := range []string{"/api/session", "/api/debates", "/api/standings", "/api/notifications"} {
		expectError(t, s.do(t, http.MethodGet, path, "", nil), http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
	}
	expectError(t, s.do(t, http.MethodGet, "/api/debates", "not-a-token", nil), http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
}

func TestAPI_SessionCookie(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})

	w := s.do(t, http.MethodPost, "/api/session", "", handlers.SessionRequest{Name: "Avery", Role: models.RoleDebater})
	expectStatus(t, w, http.StatusCreated)
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusOK)
	info := decode[handlers.SessionInfoResponse](t, w)
	if info.Caller.Name != "Avery" || info.Preferences["debate-user-role"] != "Debater" {
		t.Errorf("unexpected session info %+v", info)
	}

	w = s.do(t, http.MethodDelete, "/api/session", "", nil)
	expectStatus(t, w, http.StatusNoContent)
	if cs := w.Result().Cookies(); len(cs) != 1 || cs[0].MaxAge >= 0 {
		t.Errorf("expected cleared cookie, got %+v", cs)
	}
}

func TestAPI_SessionKeepsUserID(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})
	token, first := s.session(t, "Avery", models.RoleDebater, "")

	w := s.do(t, http.MethodPost, "/api/session", token, handlers.SessionRequest{Name: "Avery Q", Role: models.RoleJudge})
	expectStatus(t, w, http.StatusCreated)
	second := decode[handlers.SessionResponse](t, w).Profile
	if second.ID != first.ID || second.Name != "Avery Q" || second.Role != models.RoleJudge {
		t.Errorf("expected same user renamed, got %+v", second)
	}
}

func TestAPI_AdminPassword(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})

	w := s.do(t, http.MethodPost, "/api/session", "", handlers.SessionRequest{Name: "Mallory", Role: models.RoleAdmin, Password: "guess"})
	expectError(t, w, http.StatusUnauthorized, handlers.ErrCodeUnauthorized)

	w = s.do(t, http.MethodPost, "/api/session", "", handlers.SessionRequest{Name: "", Role: models.RoleJudge})
	expectError(t, w, http.StatusBadRequest, handlers.ErrCodeValidation)

	w = s.do(t, http.MethodPost, "/api/session", "", "{not json")
	expectError(t, w, http.StatusBadRequest, handlers.ErrCodeBadRequest)
}

func TestAPI_SessionRateLimited(t *testing.T) {
	s := newTestSetup(t, handlers.Options{LoginLimiter: auth.NewIPRateLimiter(1, 2)})

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodPost, "/api/session", "", handlers.SessionRequest{Name: "Avery", Role: models.RoleDebater})
		expectStatus(t, w, http.StatusCreated)
	}
	w := s.do(t, http.MethodPost, "/api/session", "", handlers.SessionRequest{Name: "Avery", Role: models.RoleDebater})
	expectStatus(t, w, http.StatusTooManyRequests)
}

func (s *testSetup) sessionFrom(t *testing.T, forwardedFor string) int {
	t.Helper()
	body := strings.NewReader(`{"name":"Avery","role":"Debater"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/session", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	req.Header.Set("X-Real-IP", forwardedFor)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w.Code
}

func TestAPI_SessionRateLimitIgnoresForwardedHeaders(t *testing.T) {
	s := newTestSetup(t, handlers.Options{LoginLimiter: auth.NewIPRateLimiter(1, 2)})

	for i, ip := range []string{"203.0.113.1", "203.0.113.2"} {
		if code := s.sessionFrom(t, ip); code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, code)
		}
	}
	if code := s.sessionFrom(t, "203.0.113.3"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 despite a new X-Forwarded-For, got %d", code)
	}
}

func TestAPI_SessionRateLimitTrustsProxyWhenEnabled(t *testing.T) {
	s := newTestSetup(t, handlers.Options{LoginLimiter: auth.NewIPRateLimiter(1, 1), TrustProxy: true})

	if code := s.sessionFrom(t, "203.0.113.1"); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if code := s.sessionFrom(t, "203.0.113.1"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 for the same forwarded client, got %d", code)
	}
	if code := s.sessionFrom(t, "203.0.113.2"); code != http.StatusCreated {
		t.Errorf("expected a different forwarded client to get its own budget, got %d", code)
	}
}

func TestAPI_KickedSessionRejected(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})
	tr := s.tournament(t)

	expectStatus(t, s.do(t, http.MethodDelete, "/api/profiles/"+tr.negID, tr.admin, nil), http.StatusNoContent)
	expectError(t, s.do(t, http.MethodGet, "/api/standings", tr.neg, nil), http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
}

func TestAPI_RoleChecks(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})
	tr := s.tournament(t)

	w := s.do(t, http.MethodPost, "/api/debates", tr.aff, services.RoundInput{AffID: tr.affID, NegID: tr.negID})
	expectError(t, w, http.StatusForbidden, handlers.ErrCodeForbidden)

	w = s.do(t, http.MethodPost, "/api/debates", tr.admin, services.RoundInput{AffID: tr.affID, NegID: tr.affID})
	expectError(t, w, http.StatusBadRequest, handlers.ErrCodeValidation)

	w = s.do(t, http.MethodPost, "/api/debates", tr.admin, services.RoundInput{AffID: tr.affID, NegID: tr.negID})
	d := decode[models.Debate](t, w)

	w = s.do(t, http.MethodPost, "/api/debates/"+d.ID+"/ballot", tr.aff, handlers.BallotSubmitRequest{Decision: models.DecisionAff})
	expectError(t, w, http.StatusForbidden, handlers.ErrCodeForbidden)

	w = s.do(t, http.MethodPost, "/api/debates/"+d.ID+"/ballot", tr.judge, handlers.BallotSubmitRequest{Decision: "Draw"})
	expectError(t, w, http.StatusBadRequest, handlers.ErrCodeValidation)

	// judge not seated on this round
	w = s.do(t, http.MethodPost, "/api/debates/"+d.ID+"/ballot", tr.judge, handlers.BallotSubmitRequest{Decision: models.DecisionAff})
	expectError(t, w, http.StatusForbidden, handlers.ErrCodeForbidden)

	w = s.do(t, http.MethodGet, "/api/debates/missing/winner", tr.aff, nil)
	expectError(t, w, http.StatusNotFound, handlers.ErrCodeNotFound)
}

func TestAPI_DebateManagement(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})
	tr := s.tournament(t)

	w := s.do(t, http.MethodPost, "/api/debates", tr.admin, services.RoundInput{Stage: "Round 1", AffID: tr.affID, NegID: tr.negID})
	expectStatus(t, w, http.StatusCreated)
	d := decode[models.Debate](t, w)

	expectStatus(t, s.do(t, http.MethodPost, "/api/debates/"+d.ID+"/judges", tr.admin, handlers.JudgeAssignRequest{JudgeID: tr.judgeID}), http.StatusNoContent)
	w = s.do(t, http.MethodGet, "/api/debates/"+d.ID, tr.aff, nil)
	if got := decode[models.Debate](t, w); !cmp.Equal(got.JudgeIDs, []string{tr.judgeID}) {
		t.Errorf("expected judge on panel, got %v", got.JudgeIDs)
	}

	expectStatus(t, s.do(t, http.MethodDelete, "/api/debates/"+d.ID+"/judges/"+tr.judgeID, tr.admin, nil), http.StatusNoContent)
	w = s.do(t, http.MethodGet, "/api/debates/"+d.ID, tr.aff, nil)
	if got := decode[models.Debate](t, w); len(got.JudgeIDs) != 0 {
		t.Errorf("expected empty panel, got %v", got.JudgeIDs)
	}

	w = s.do(t, http.MethodGet, "/api/debates/"+d.ID+"/ballots", tr.admin, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[[]models.RoundResult](t, w); len(got) != 0 {
		t.Errorf("expected no ballots, got %+v", got)
	}

	// unknown debates are silent no-ops
	expectStatus(t, s.do(t, http.MethodPost, "/api/debates/missing/judges", tr.admin, handlers.JudgeAssignRequest{JudgeID: tr.judgeID}), http.StatusNoContent)

	expectStatus(t, s.do(t, http.MethodDelete, "/api/debates/"+d.ID, tr.admin, nil), http.StatusNoContent)
	w = s.do(t, http.MethodGet, "/api/debates", tr.admin, nil)
	if got := decode[[]models.Debate](t, w); len(got) != 0 {
		t.Errorf("expected debate deleted, got %+v", got)
	}
	expectError(t, s.do(t, http.MethodGet, "/api/debates/"+d.ID, tr.admin, nil), http.StatusNotFound, handlers.ErrCodeNotFound)
}

func TestAPI_Profiles(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})
	tr := s.tournament(t)

	names := func(path string) []string {
		w := s.do(t, http.MethodGet, path, tr.admin, nil)
		expectStatus(t, w, http.StatusOK)
		var out []string
		for _, p := range decode[[]models.UserProfile](t, w) {
			out = append(out, p.Name)
		}
		return out
	}
	if got := names("/api/profiles"); len(got) != 4 {
		t.Errorf("expected 4 members, got %v", got)
	}

	expectStatus(t, s.do(t, http.MethodPut, "/api/profiles/"+tr.negID+"/status", tr.admin, handlers.StatusUpdateRequest{Status: models.DebaterEliminated}), http.StatusOK)
	if diff := cmp.Diff([]string{"Avery", "Blake"}, names("/api/profiles?role=debater")); diff != "" {
		t.Errorf("debaters (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Avery"}, names("/api/profiles?eligible=true")); diff != "" {
		t.Errorf("eligible (-want +got):\n%s", diff)
	}

	expectStatus(t, s.do(t, http.MethodPut, "/api/profiles/me/contact", tr.aff, handlers.ContactUpdateRequest{Email: "avery@example.org"}), http.StatusOK)
	p, err := s.repo.GetProfile(context.Background(), tr.affID)
	if err != nil || p.Email != "avery@example.org" {
		t.Errorf("contact not saved: %+v (%v)", p, err)
	}
}

func TestAPI_Seed(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})
	tr := s.tournament(t)

	w := s.do(t, http.MethodPost, "/api/admin/seed", tr.admin, handlers.SeedRequest{Debaters: 4, Judges: 2})
	expectStatus(t, w, http.StatusCreated)
	if got := decode[[]models.UserProfile](t, w); len(got) != 6 {
		t.Errorf("expected 6 seeded profiles, got %d", len(got))
	}

	w = s.do(t, http.MethodPost, "/api/admin/seed", tr.admin, handlers.SeedRequest{Debaters: 500})
	expectError(t, w, http.StatusBadRequest, handlers.ErrCodeValidation)
}

func TestAPI_QRCodeAndExport(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})
	tr := s.tournament(t)

	w := s.do(t, http.MethodGet, "/api/tournaments/"+tr.code+"/qr", tr.aff, nil)
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected PNG body")
	}

	w = s.do(t, http.MethodGet, "/api/standings.xlsx", tr.admin, nil)
	expectStatus(t, w, http.StatusOK)
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "standings-"+tr.code+".xlsx") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("expected zip container")
	}

	expectError(t, s.do(t, http.MethodGet, "/api/tournaments/NOPE99/qr", tr.aff, nil), http.StatusNotFound, handlers.ErrCodeNotFound)
}

func TestAPI_InternalErrorsAreGeneric(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})
	tr := s.tournament(t)

	s.repo.ListDebatesError = errors.New("database is locked")
	w := s.do(t, http.MethodGet, "/api/debates", tr.admin, nil)
	expectStatus(t, w, http.StatusInternalServerError)
	if strings.Contains(w.Body.String(), "locked") {
		t.Errorf("internal error leaked: %s", w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})
	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[handlers.HealthResponse](t, w); got.Status != "ok" || got.Store != "sqlite" {
		t.Errorf("unexpected health %+v", got)
	}

	down := newTestSetup(t, handlers.Options{Health: func(context.Context) error { return errors.New("gone") }})
	w = down.do(t, http.MethodGet, "/healthz", "", nil)
	expectStatus(t, w, http.StatusServiceUnavailable)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestSetup(t, handlers.Options{})
	tr := s.tournament(t)
	s.do(t, http.MethodPost, "/api/debates", tr.admin, services.RoundInput{AffID: tr.affID, NegID: tr.negID})

	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "ldtab_rounds_created_total 1") {
		t.Errorf("expected round counter in metrics output")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestSetup(t, handlers.Options{AllowedOrigins: []string{"https://tab.example.org"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/debates", nil)
	req.Header.Set("Origin", "https://tab.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://tab.example.org" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}
}
