package repository

import (
	"context"

	"github.com/abrezinsky/ldtab/internal/models"
)

// TournamentRepository defines tournament data operations
type TournamentRepository interface {
	CreateTournament(ctx context.Context, t *models.Tournament) error
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	TournamentExists(ctx context.Context, id string) (bool, error)
	SetTournamentStatus(ctx context.Context, id string, status models.TournamentStatus) error
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
}

// ProfileRepository defines user profile data operations.
// ListProfiles returns profiles in the order they were first stored.
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, p *models.UserProfile) error
	GetProfile(ctx context.Context, id string) (*models.UserProfile, error)
	ListProfiles(ctx context.Context, tournamentID string) ([]models.UserProfile, error)
	FindProfileByName(ctx context.Context, tournamentID, name string) (*models.UserProfile, error)
	SetProfileStatus(ctx context.Context, id string, status models.DebaterStatus) error
	UpdateProfileContact(ctx context.Context, id, email, phone string) error
	DeleteProfile(ctx context.Context, id string) error
}

// DebateRepository defines round data operations
type DebateRepository interface {
	CreateDebate(ctx context.Context, d *models.Debate) error
	GetDebate(ctx context.Context, id string) (*models.Debate, error)
	ListDebates(ctx context.Context, tournamentID string) ([]models.Debate, error)
	SetDebateJudges(ctx context.Context, id string, judgeIDs []string) error
	// FinalizeDebate closes the debate and, when loserID is set, marks that
	// debater Eliminated. Both writes commit or neither does.
	FinalizeDebate(ctx context.Context, id, loserID string) error
	DeleteDebate(ctx context.Context, id string) error
}

// ResultRepository defines ballot data operations.
// UpsertResult replaces any ballot with the same (DebateID, JudgeID).
type ResultRepository interface {
	UpsertResult(ctx context.Context, r *models.RoundResult) error
	ListResultsForDebate(ctx context.Context, debateID string) ([]models.RoundResult, error)
	ListResults(ctx context.Context, tournamentID string) ([]models.RoundResult, error)
}

// NotificationRepository defines notification data operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, tournamentID, userID string) ([]models.Notification, error)
	DeleteNotification(ctx context.Context, id string) error
}

// PreferenceRepository is per-user key-value storage
type PreferenceRepository interface {
	GetPreference(ctx context.Context, userID, key string) (string, error)
	SetPreference(ctx context.Context, userID, key, value string) error
}

// Watcher delivers change notifications per tournament and collection
type Watcher interface {
	Subscribe(tournamentID string, collections ...Collection) *Subscription
	SubscribeAll(collections ...Collection) *Subscription
	Subscribers() int
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	TournamentRepository
	ProfileRepository
	DebateRepository
	ResultRepository
	NotificationRepository
	PreferenceRepository
	Watcher
	Ping(ctx context.Context) error
	Close() error
}

// Ensure both stores implement all interfaces
var (
	_ FullRepository = (*Repository)(nil)
	_ FullRepository = (*Memory)(nil)
)
