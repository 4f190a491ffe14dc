package services

import (
	"context"

	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
)

// TournamentServicer defines the interface for tournament operations
type TournamentServicer interface {
	Create(ctx context.Context, caller Caller, name, topic string) (*models.Tournament, error)
	Get(ctx context.Context, code string) (*models.Tournament, error)
	IsClosed(ctx context.Context, code string) (bool, error)
	Close(ctx context.Context, caller Caller, code string) error
	Join(ctx context.Context, caller Caller, code string) (*models.UserProfile, error)
	QRCode(ctx context.Context, code, baseURL string) ([]byte, error)
	GenerateCode(ctx context.Context) (string, error)
}

// ProfileServicer defines the interface for profile operations
type ProfileServicer interface {
	Register(ctx context.Context, userID, name string, role models.Role) (*models.UserProfile, error)
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	List(ctx context.Context, caller Caller) ([]models.UserProfile, error)
	Debaters(ctx context.Context, caller Caller) ([]models.UserProfile, error)
	EligibleDebaters(ctx context.Context, caller Caller) ([]models.UserProfile, error)
	SetStatus(ctx context.Context, caller Caller, profileID string, status models.DebaterStatus) error
	UpdateContact(ctx context.Context, caller Caller, email, phone string) error
	Kick(ctx context.Context, caller Caller, profileID string) error
	Preferences(ctx context.Context, userID string) (map[string]string, error)
}

// RoundServicer defines the interface for round lifecycle operations
type RoundServicer interface {
	Create(ctx context.Context, caller Caller, in RoundInput) (*models.Debate, error)
	AssignJudge(ctx context.Context, caller Caller, debateID, judgeID string) error
	RemoveJudge(ctx context.Context, caller Caller, debateID, judgeID string) error
	Finalize(ctx context.Context, caller Caller, debateID string) (models.Winner, error)
	Delete(ctx context.Context, caller Caller, debateID string) error
	Get(ctx context.Context, caller Caller, debateID string) (*models.Debate, error)
	List(ctx context.Context, caller Caller) ([]models.Debate, error)
	MyAssignments(ctx context.Context, caller Caller) ([]models.Debate, error)
}

// BallotServicer defines the interface for ballot operations
type BallotServicer interface {
	Submit(ctx context.Context, caller Caller, in BallotInput) (*models.RoundResult, error)
	ListForDebate(ctx context.Context, caller Caller, debateID string) ([]models.RoundResult, error)
}

// StandingsServicer defines the interface for winner and standings queries
type StandingsServicer interface {
	Winner(ctx context.Context, caller Caller, debateID string) (models.Winner, error)
	Standings(ctx context.Context, caller Caller) ([]models.DebaterStats, error)
	StandingsFor(ctx context.Context, tournamentID string) ([]models.DebaterStats, error)
	ExportXLSX(ctx context.Context, caller Caller) ([]byte, error)
}

// SnapshotServicer reads whole collections for live updates
type SnapshotServicer interface {
	Snapshot(ctx context.Context, tournamentID, userID string, collection repository.Collection) (interface{}, error)
	All(ctx context.Context, tournamentID, userID string) (map[repository.Collection]interface{}, error)
}

// SeedServicer creates demo participants
type SeedServicer interface {
	SeedDemo(ctx context.Context, caller Caller, debaters, judges int) ([]models.UserProfile, error)
}

// NotificationServicer lists and dismisses a user's notifications
type NotificationServicer interface {
	List(ctx context.Context, caller Caller) ([]models.Notification, error)
	Dismiss(ctx context.Context, caller Caller, id string) error
}

// Ensure concrete types implement interfaces
var (
	_ TournamentServicer   = (*TournamentService)(nil)
	_ ProfileServicer      = (*ProfileService)(nil)
	_ RoundServicer        = (*RoundService)(nil)
	_ BallotServicer       = (*BallotService)(nil)
	_ StandingsServicer    = (*StandingsService)(nil)
	_ SnapshotServicer     = (*SnapshotService)(nil)
	_ SeedServicer         = (*SeedService)(nil)
	_ NotificationServicer = (*NotificationService)(nil)
)
