package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/ldtab/internal/models"
)

// Memory is a process-local store with the same semantics as Repository.
// Nothing survives a restart.
type Memory struct {
	mu   sync.RWMutex
	seq  int64
	feed *Feed

	tournaments   map[string]models.Tournament
	profiles      map[string]memProfile
	debates       map[string]memDebate
	results       map[string]memResult // keyed by debate id + "\x00" + judge id
	notifications map[string]memNotification
	preferences   map[string]string // keyed by user id + "\x00" + key
}

type memProfile struct {
	seq int64
	models.UserProfile
}

type memDebate struct {
	seq int64
	models.Debate
}

type memResult struct {
	seq int64
	models.RoundResult
}

type memNotification struct {
	seq int64
	models.Notification
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		feed:          NewFeed(),
		tournaments:   make(map[string]models.Tournament),
		profiles:      make(map[string]memProfile),
		debates:       make(map[string]memDebate),
		results:       make(map[string]memResult),
		notifications: make(map[string]memNotification),
		preferences:   make(map[string]string),
	}
}

func (m *Memory) next() int64 {
	m.seq++
	return m.seq
}

func pairKey(a, b string) string {
	return a + "\x00" + b
}

func copyDebate(d models.Debate) models.Debate {
	d.JudgeIDs = append([]string{}, d.JudgeIDs...)
	return d
}

// Ping always succeeds
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}

// Subscribe watches changes to a tournament's collections
func (m *Memory) Subscribe(tournamentID string, collections ...Collection) *Subscription {
	return m.feed.Subscribe(tournamentID, collections...)
}

// SubscribeAll watches changes to every tournament
func (m *Memory) SubscribeAll(collections ...Collection) *Subscription {
	return m.feed.SubscribeAll(collections...)
}

// Subscribers returns the number of open subscriptions
func (m *Memory) Subscribers() int {
	return m.feed.Subscribers()
}

func (m *Memory) publish(tournamentID string, collections ...Collection) {
	for _, c := range collections {
		m.feed.Publish(Change{TournamentID: tournamentID, Collection: c})
	}
}

// ==================== Tournament Methods ====================

func (m *Memory) CreateTournament(ctx context.Context, t *models.Tournament) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Status == "" {
		t.Status = models.TournamentActive
	}

	m.mu.Lock()
	if _, ok := m.tournaments[t.ID]; ok {
		m.mu.Unlock()
		return ErrDuplicate
	}
	m.tournaments[t.ID] = *t
	m.mu.Unlock()

	m.publish(t.ID, CollectionTournaments)
	return nil
}

func (m *Memory) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tournaments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *Memory) TournamentExists(ctx context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tournaments[id]
	return ok, nil
}

func (m *Memory) SetTournamentStatus(ctx context.Context, id string, status models.TournamentStatus) error {
	m.mu.Lock()
	t, ok := m.tournaments[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	t.Status = status
	m.tournaments[id] = t
	m.mu.Unlock()

	m.publish(id, CollectionTournaments)
	return nil
}

func (m *Memory) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tournaments []models.Tournament
	for _, t := range m.tournaments {
		tournaments = append(tournaments, t)
	}
	sort.SliceStable(tournaments, func(i, j int) bool {
		return tournaments[i].CreatedAt.After(tournaments[j].CreatedAt)
	})
	return tournaments, nil
}

// ==================== Profile Methods ====================

func (m *Memory) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	m.mu.Lock()
	existing, ok := m.profiles[p.ID]
	seq := existing.seq
	previous := existing.TournamentID
	if !ok {
		seq = m.next()
		previous = ""
	}
	m.profiles[p.ID] = memProfile{seq: seq, UserProfile: *p}
	m.mu.Unlock()

	if previous != "" && previous != p.TournamentID {
		m.publish(previous, CollectionProfiles)
	}
	if p.TournamentID != "" {
		m.publish(p.TournamentID, CollectionProfiles)
	}
	return nil
}

func (m *Memory) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := p.UserProfile
	return &out, nil
}

func (m *Memory) sortedProfiles(tournamentID string) []memProfile {
	var matches []memProfile
	for _, p := range m.profiles {
		if p.TournamentID == tournamentID {
			matches = append(matches, p)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].seq < matches[j].seq })
	return matches
}

func (m *Memory) ListProfiles(ctx context.Context, tournamentID string) ([]models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var profiles []models.UserProfile
	for _, p := range m.sortedProfiles(tournamentID) {
		profiles = append(profiles, p.UserProfile)
	}
	return profiles, nil
}

func (m *Memory) FindProfileByName(ctx context.Context, tournamentID, name string) (*models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.sortedProfiles(tournamentID) {
		if strings.EqualFold(p.Name, name) {
			out := p.UserProfile
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) updateProfile(id string, fn func(p *models.UserProfile)) error {
	m.mu.Lock()
	p, ok := m.profiles[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	fn(&p.UserProfile)
	m.profiles[id] = p
	m.mu.Unlock()

	m.publish(p.TournamentID, CollectionProfiles)
	return nil
}

func (m *Memory) SetProfileStatus(ctx context.Context, id string, status models.DebaterStatus) error {
	return m.updateProfile(id, func(p *models.UserProfile) { p.Status = status })
}

func (m *Memory) UpdateProfileContact(ctx context.Context, id, email, phone string) error {
	return m.updateProfile(id, func(p *models.UserProfile) {
		p.Email = email
		p.Phone = phone
	})
}

func (m *Memory) DeleteProfile(ctx context.Context, id string) error {
	m.mu.Lock()
	p, ok := m.profiles[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.profiles, id)
	m.mu.Unlock()

	m.publish(p.TournamentID, CollectionProfiles)
	return nil
}

// ==================== Debate Methods ====================

func (m *Memory) CreateDebate(ctx context.Context, d *models.Debate) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	if d.Status == "" {
		d.Status = models.DebateOpen
	}
	if d.JudgeIDs == nil {
		d.JudgeIDs = []string{}
	}

	m.mu.Lock()
	if _, ok := m.debates[d.ID]; ok {
		m.mu.Unlock()
		return ErrDuplicate
	}
	m.debates[d.ID] = memDebate{seq: m.next(), Debate: copyDebate(*d)}
	m.mu.Unlock()

	m.publish(d.TournamentID, CollectionDebates)
	return nil
}

func (m *Memory) GetDebate(ctx context.Context, id string) (*models.Debate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.debates[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyDebate(d.Debate)
	return &out, nil
}

func (m *Memory) ListDebates(ctx context.Context, tournamentID string) ([]models.Debate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matches []memDebate
	for _, d := range m.debates {
		if d.TournamentID == tournamentID {
			matches = append(matches, d)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].seq < matches[j].seq })

	var debates []models.Debate
	for _, d := range matches {
		debates = append(debates, copyDebate(d.Debate))
	}
	return debates, nil
}

func (m *Memory) SetDebateJudges(ctx context.Context, id string, judgeIDs []string) error {
	m.mu.Lock()
	d, ok := m.debates[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	d.JudgeIDs = append([]string{}, judgeIDs...)
	m.debates[id] = d
	m.mu.Unlock()

	m.publish(d.TournamentID, CollectionDebates)
	return nil
}

// FinalizeDebate applies both writes under one lock so neither is visible alone
func (m *Memory) FinalizeDebate(ctx context.Context, id, loserID string) error {
	m.mu.Lock()
	d, ok := m.debates[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	var loser memProfile
	if loserID != "" {
		loser, ok = m.profiles[loserID]
		if !ok {
			m.mu.Unlock()
			return ErrNotFound
		}
		loser.Status = models.DebaterEliminated
		m.profiles[loserID] = loser
	}
	d.Status = models.DebateClosed
	m.debates[id] = d
	m.mu.Unlock()

	m.publish(d.TournamentID, CollectionDebates)
	if loserID != "" {
		m.publish(d.TournamentID, CollectionProfiles)
	}
	return nil
}

func (m *Memory) DeleteDebate(ctx context.Context, id string) error {
	m.mu.Lock()
	d, ok := m.debates[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.debates, id)
	m.mu.Unlock()

	m.publish(d.TournamentID, CollectionDebates)
	return nil
}

// ==================== Result Methods ====================

func (m *Memory) UpsertResult(ctx context.Context, res *models.RoundResult) error {
	if res.SubmittedAt.IsZero() {
		res.SubmittedAt = time.Now()
	}
	key := pairKey(res.DebateID, res.JudgeID)

	m.mu.Lock()
	existing, ok := m.results[key]
	if ok {
		res.ID = existing.ID
		res.TournamentID = existing.TournamentID
	} else {
		if res.ID == "" {
			res.ID = uuid.NewString()
		}
		existing.seq = m.next()
	}
	m.results[key] = memResult{seq: existing.seq, RoundResult: *res}
	m.mu.Unlock()

	m.publish(res.TournamentID, CollectionResults)
	return nil
}

func (m *Memory) filterResults(match func(r *models.RoundResult) bool) []models.RoundResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matches []memResult
	for _, r := range m.results {
		if match(&r.RoundResult) {
			matches = append(matches, r)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].seq < matches[j].seq })

	var results []models.RoundResult
	for _, r := range matches {
		results = append(results, r.RoundResult)
	}
	return results
}

func (m *Memory) ListResultsForDebate(ctx context.Context, debateID string) ([]models.RoundResult, error) {
	return m.filterResults(func(r *models.RoundResult) bool { return r.DebateID == debateID }), nil
}

func (m *Memory) ListResults(ctx context.Context, tournamentID string) ([]models.RoundResult, error) {
	return m.filterResults(func(r *models.RoundResult) bool { return r.TournamentID == tournamentID }), nil
}

// ==================== Notification Methods ====================

func (m *Memory) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	m.mu.Lock()
	m.notifications[n.ID] = memNotification{seq: m.next(), Notification: *n}
	m.mu.Unlock()

	m.publish(n.TournamentID, CollectionNotifications)
	return nil
}

func (m *Memory) ListNotifications(ctx context.Context, tournamentID, userID string) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matches []memNotification
	for _, n := range m.notifications {
		if n.TournamentID == tournamentID && n.UserID == userID {
			matches = append(matches, n)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].seq < matches[j].seq })

	var notifications []models.Notification
	for _, n := range matches {
		notifications = append(notifications, n.Notification)
	}
	return notifications, nil
}

func (m *Memory) DeleteNotification(ctx context.Context, id string) error {
	m.mu.Lock()
	n, ok := m.notifications[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.notifications, id)
	m.mu.Unlock()

	m.publish(n.TournamentID, CollectionNotifications)
	return nil
}

// ==================== Preference Methods ====================

func (m *Memory) GetPreference(ctx context.Context, userID, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.preferences[pairKey(userID, key)]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) SetPreference(ctx context.Context, userID, key, value string) error {
	m.mu.Lock()
	m.preferences[pairKey(userID, key)] = value
	m.mu.Unlock()
	return nil
}
