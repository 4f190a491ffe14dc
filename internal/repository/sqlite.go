package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/ldtab/internal/models"
)

// Repository provides data access methods backed by sqlite
type Repository struct {
	db   *sql.DB
	feed *Feed
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db, feed: NewFeed()}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Subscribe watches changes to a tournament's collections
func (r *Repository) Subscribe(tournamentID string, collections ...Collection) *Subscription {
	return r.feed.Subscribe(tournamentID, collections...)
}

// SubscribeAll watches changes to every tournament
func (r *Repository) SubscribeAll(collections ...Collection) *Subscription {
	return r.feed.SubscribeAll(collections...)
}

// Subscribers returns the number of open subscriptions
func (r *Repository) Subscribers() int {
	return r.feed.Subscribers()
}

func (r *Repository) publish(tournamentID string, collections ...Collection) {
	for _, c := range collections {
		r.feed.Publish(Change{TournamentID: tournamentID, Collection: c})
	}
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS tournaments (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			topic TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Active',
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			tournament_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS debates (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			tournament_id TEXT NOT NULL,
			topic TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			stage TEXT NOT NULL DEFAULT '',
			aff_id TEXT NOT NULL,
			aff_name TEXT NOT NULL DEFAULT '',
			neg_id TEXT NOT NULL,
			neg_name TEXT NOT NULL DEFAULT '',
			judge_ids TEXT NOT NULL DEFAULT '[]', -- JSON array, insertion order
			status TEXT NOT NULL DEFAULT 'Open',
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			tournament_id TEXT NOT NULL,
			debate_id TEXT NOT NULL,
			judge_id TEXT NOT NULL,
			judge_name TEXT NOT NULL DEFAULT '',
			aff_score REAL NOT NULL DEFAULT 0,
			neg_score REAL NOT NULL DEFAULT 0,
			decision TEXT NOT NULL,
			rfd TEXT NOT NULL DEFAULT '',
			flow TEXT NOT NULL DEFAULT '',
			submitted_at DATETIME NOT NULL,
			UNIQUE(debate_id, judge_id)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			tournament_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			user_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (user_id, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_tournament ON profiles(tournament_id)`,
		`CREATE INDEX IF NOT EXISTS idx_debates_tournament ON debates(tournament_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_tournament ON results(tournament_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_debate ON results(debate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(tournament_id, user_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Tournament Methods ====================

// CreateTournament inserts a tournament. Returns ErrDuplicate if the code is taken.
func (r *Repository) CreateTournament(ctx context.Context, t *models.Tournament) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Status == "" {
		t.Status = models.TournamentActive
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, topic, owner_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Topic, t.OwnerID, t.Status, t.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	r.publish(t.ID, CollectionTournaments)
	return nil
}

// GetTournament retrieves a tournament by code
func (r *Repository) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	var t models.Tournament
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, topic, owner_id, status, created_at FROM tournaments WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &t.Topic, &t.OwnerID, &t.Status, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TournamentExists checks whether a code is taken
func (r *Repository) TournamentExists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments WHERE id = ?`, id).Scan(&count)
	return count > 0, err
}

// SetTournamentStatus updates a tournament's status
func (r *Repository) SetTournamentStatus(ctx context.Context, id string, status models.TournamentStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tournaments SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	r.publish(id, CollectionTournaments)
	return nil
}

// ListTournaments returns all tournaments, newest first
func (r *Repository) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, topic, owner_id, status, created_at FROM tournaments ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tournaments []models.Tournament
	for rows.Next() {
		var t models.Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.Topic, &t.OwnerID, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

// ==================== Profile Methods ====================

const profileColumns = `id, name, role, tournament_id, status, email, phone`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := row.Scan(&p.ID, &p.Name, &p.Role, &p.TournamentID, &p.Status, &p.Email, &p.Phone); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProfile creates or replaces a profile, keeping its original position in listings
func (r *Repository) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	var previous string
	err := r.db.QueryRowContext(ctx, `SELECT tournament_id FROM profiles WHERE id = ?`, p.ID).Scan(&previous)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, role, tournament_id, status, email, phone)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			tournament_id = excluded.tournament_id,
			status = excluded.status,
			email = excluded.email,
			phone = excluded.phone
	`, p.ID, p.Name, p.Role, p.TournamentID, p.Status, p.Email, p.Phone)
	if err != nil {
		return err
	}

	if previous != "" && previous != p.TournamentID {
		r.publish(previous, CollectionProfiles)
	}
	if p.TournamentID != "" {
		r.publish(p.TournamentID, CollectionProfiles)
	}
	return nil
}

// GetProfile retrieves a profile by user id
func (r *Repository) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// ListProfiles returns a tournament's members in registration order
func (r *Repository) ListProfiles(ctx context.Context, tournamentID string) ([]models.UserProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE tournament_id = ? ORDER BY seq
	`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// FindProfileByName looks up a member by name, ignoring case
func (r *Repository) FindProfileByName(ctx context.Context, tournamentID, name string) (*models.UserProfile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM profiles
		WHERE tournament_id = ? AND name = ? COLLATE NOCASE
		ORDER BY seq LIMIT 1
	`, tournamentID, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *Repository) profileTournament(ctx context.Context, id string) (string, error) {
	var tournamentID string
	err := r.db.QueryRowContext(ctx, `SELECT tournament_id FROM profiles WHERE id = ?`, id).Scan(&tournamentID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return tournamentID, err
}

// SetProfileStatus sets a debater's Active/Eliminated status
func (r *Repository) SetProfileStatus(ctx context.Context, id string, status models.DebaterStatus) error {
	tournamentID, err := r.profileTournament(ctx, id)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE profiles SET status = ? WHERE id = ?`, status, id); err != nil {
		return err
	}
	r.publish(tournamentID, CollectionProfiles)
	return nil
}

// UpdateProfileContact sets the optional contact fields
func (r *Repository) UpdateProfileContact(ctx context.Context, id, email, phone string) error {
	tournamentID, err := r.profileTournament(ctx, id)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE profiles SET email = ?, phone = ? WHERE id = ?`, email, phone, id); err != nil {
		return err
	}
	r.publish(tournamentID, CollectionProfiles)
	return nil
}

// DeleteProfile removes a profile
func (r *Repository) DeleteProfile(ctx context.Context, id string) error {
	tournamentID, err := r.profileTournament(ctx, id)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id); err != nil {
		return err
	}
	r.publish(tournamentID, CollectionProfiles)
	return nil
}

// ==================== Debate Methods ====================

const debateColumns = `id, tournament_id, topic, type, stage, aff_id, aff_name, neg_id, neg_name, judge_ids, status, created_at`

func scanDebate(row rowScanner) (*models.Debate, error) {
	var d models.Debate
	var judges string
	if err := row.Scan(&d.ID, &d.TournamentID, &d.Topic, &d.Type, &d.Stage,
		&d.AffID, &d.AffName, &d.NegID, &d.NegName, &judges, &d.Status, &d.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(judges), &d.JudgeIDs); err != nil {
		return nil, err
	}
	if d.JudgeIDs == nil {
		d.JudgeIDs = []string{}
	}
	return &d, nil
}

func encodeJudges(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	return string(b), err
}

// CreateDebate inserts a debate, assigning an id when none is set
func (r *Repository) CreateDebate(ctx context.Context, d *models.Debate) error {
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
	judges, err := encodeJudges(d.JudgeIDs)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO debates (`+debateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.TournamentID, d.Topic, d.Type, d.Stage, d.AffID, d.AffName,
		d.NegID, d.NegName, judges, d.Status, d.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	r.publish(d.TournamentID, CollectionDebates)
	return nil
}

// GetDebate retrieves a debate by id
func (r *Repository) GetDebate(ctx context.Context, id string) (*models.Debate, error) {
	d, err := scanDebate(r.db.QueryRowContext(ctx, `SELECT `+debateColumns+` FROM debates WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return d, err
}

// ListDebates returns a tournament's debates in creation order
func (r *Repository) ListDebates(ctx context.Context, tournamentID string) ([]models.Debate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+debateColumns+` FROM debates WHERE tournament_id = ? ORDER BY seq
	`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debates []models.Debate
	for rows.Next() {
		d, err := scanDebate(rows)
		if err != nil {
			return nil, err
		}
		debates = append(debates, *d)
	}
	return debates, rows.Err()
}

func (r *Repository) debateTournament(ctx context.Context, id string) (string, error) {
	var tournamentID string
	err := r.db.QueryRowContext(ctx, `SELECT tournament_id FROM debates WHERE id = ?`, id).Scan(&tournamentID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return tournamentID, err
}

// SetDebateJudges replaces the judge panel
func (r *Repository) SetDebateJudges(ctx context.Context, id string, judgeIDs []string) error {
	tournamentID, err := r.debateTournament(ctx, id)
	if err != nil {
		return err
	}
	judges, err := encodeJudges(judgeIDs)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE debates SET judge_ids = ? WHERE id = ?`, judges, id); err != nil {
		return err
	}
	r.publish(tournamentID, CollectionDebates)
	return nil
}

// FinalizeDebate closes a debate and optionally eliminates the loser in one transaction
func (r *Repository) FinalizeDebate(ctx context.Context, id, loserID string) error {
	tournamentID, err := r.debateTournament(ctx, id)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE debates SET status = ? WHERE id = ?`, models.DebateClosed, id); err != nil {
		return err
	}
	if loserID != "" {
		res, err := tx.ExecContext(ctx, `UPDATE profiles SET status = ? WHERE id = ?`, models.DebaterEliminated, loserID)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	r.publish(tournamentID, CollectionDebates)
	if loserID != "" {
		r.publish(tournamentID, CollectionProfiles)
	}
	return nil
}

// DeleteDebate removes a debate. Its ballots are left in place.
func (r *Repository) DeleteDebate(ctx context.Context, id string) error {
	tournamentID, err := r.debateTournament(ctx, id)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM debates WHERE id = ?`, id); err != nil {
		return err
	}
	r.publish(tournamentID, CollectionDebates)
	return nil
}

// ==================== Result Methods ====================

const resultColumns = `id, tournament_id, debate_id, judge_id, judge_name, aff_score, neg_score, decision, rfd, flow, submitted_at`

func scanResult(row rowScanner) (*models.RoundResult, error) {
	var res models.RoundResult
	if err := row.Scan(&res.ID, &res.TournamentID, &res.DebateID, &res.JudgeID, &res.JudgeName,
		&res.AffScore, &res.NegScore, &res.Decision, &res.RFD, &res.Flow, &res.SubmittedAt); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpsertResult saves a ballot, replacing the judge's earlier ballot for the same debate.
// On return res.ID holds the stored ballot's id.
func (r *Repository) UpsertResult(ctx context.Context, res *models.RoundResult) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.SubmittedAt.IsZero() {
		res.SubmittedAt = time.Now()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO results (`+resultColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(debate_id, judge_id) DO UPDATE SET
			judge_name = excluded.judge_name,
			aff_score = excluded.aff_score,
			neg_score = excluded.neg_score,
			decision = excluded.decision,
			rfd = excluded.rfd,
			flow = excluded.flow,
			submitted_at = excluded.submitted_at
		RETURNING id
	`, res.ID, res.TournamentID, res.DebateID, res.JudgeID, res.JudgeName,
		res.AffScore, res.NegScore, res.Decision, res.RFD, res.Flow, res.SubmittedAt).Scan(&res.ID)
	if err != nil {
		return err
	}
	r.publish(res.TournamentID, CollectionResults)
	return nil
}

func (r *Repository) listResults(ctx context.Context, query string, arg string) ([]models.RoundResult, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.RoundResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

// ListResultsForDebate returns the ballots for one debate
func (r *Repository) ListResultsForDebate(ctx context.Context, debateID string) ([]models.RoundResult, error) {
	return r.listResults(ctx, `SELECT `+resultColumns+` FROM results WHERE debate_id = ? ORDER BY seq`, debateID)
}

// ListResults returns every ballot in a tournament
func (r *Repository) ListResults(ctx context.Context, tournamentID string) ([]models.RoundResult, error) {
	return r.listResults(ctx, `SELECT `+resultColumns+` FROM results WHERE tournament_id = ? ORDER BY seq`, tournamentID)
}

// ==================== Notification Methods ====================

// CreateNotification stores a notification for a user
func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, tournament_id, user_id, message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.ID, n.TournamentID, n.UserID, n.Message, n.CreatedAt)
	if err != nil {
		return err
	}
	r.publish(n.TournamentID, CollectionNotifications)
	return nil
}

// ListNotifications returns a user's notifications in a tournament, oldest first
func (r *Repository) ListNotifications(ctx context.Context, tournamentID, userID string) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tournament_id, user_id, message, created_at FROM notifications
		WHERE tournament_id = ? AND user_id = ? ORDER BY seq
	`, tournamentID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.TournamentID, &n.UserID, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// DeleteNotification dismisses a notification
func (r *Repository) DeleteNotification(ctx context.Context, id string) error {
	var tournamentID string
	err := r.db.QueryRowContext(ctx, `SELECT tournament_id FROM notifications WHERE id = ?`, id).Scan(&tournamentID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id); err != nil {
		return err
	}
	r.publish(tournamentID, CollectionNotifications)
	return nil
}

// ==================== Preference Methods ====================

// GetPreference retrieves a stored per-user value
func (r *Repository) GetPreference(ctx context.Context, userID, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE user_id = ? AND key = ?`, userID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetPreference stores a per-user value
func (r *Repository) SetPreference(ctx context.Context, userID, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO preferences (user_id, key, value) VALUES (?, ?, ?)`, userID, key, value)
	return err
}
