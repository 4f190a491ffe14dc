package mock

import (
	"context"

	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.FinalizeDebateError = errors.New("database error")
//	svc := services.NewRoundService(log, mockRepo, relay, nil)
//	err := svc.Finalize(ctx, caller, debateID)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Tournament Errors =====
	CreateTournamentError    error
	GetTournamentError       error
	TournamentExistsError    error
	SetTournamentStatusError error

	// ===== Profile Errors =====
	UpsertProfileError        error
	GetProfileError           error
	ListProfilesError         error
	FindProfileByNameError    error
	SetProfileStatusError     error
	UpdateProfileContactError error
	DeleteProfileError        error

	// ===== Debate Errors =====
	CreateDebateError    error
	GetDebateError       error
	ListDebatesError     error
	SetDebateJudgesError error
	FinalizeDebateError  error
	DeleteDebateError    error

	// ===== Result Errors =====
	UpsertResultError         error
	ListResultsForDebateError error
	ListResultsError          error

	// ===== Notification Errors =====
	CreateNotificationError error
	ListNotificationsError  error
	DeleteNotificationError error

	// ===== Preference Errors =====
	GetPreferenceError error
	SetPreferenceError error

	// AlwaysTakenCodes makes TournamentExists report every code as taken
	AlwaysTakenCodes bool

	// Writes counts mutating calls that reached the wrapped repository
	Writes int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Tournament Methods =====

func (m *Repository) CreateTournament(ctx context.Context, t *models.Tournament) error {
	if m.CreateTournamentError != nil {
		return m.CreateTournamentError
	}
	m.Writes++
	return m.FullRepository.CreateTournament(ctx, t)
}

func (m *Repository) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	if m.GetTournamentError != nil {
		return nil, m.GetTournamentError
	}
	return m.FullRepository.GetTournament(ctx, id)
}

func (m *Repository) TournamentExists(ctx context.Context, id string) (bool, error) {
	if m.TournamentExistsError != nil {
		return false, m.TournamentExistsError
	}
	if m.AlwaysTakenCodes {
		return true, nil
	}
	return m.FullRepository.TournamentExists(ctx, id)
}

func (m *Repository) SetTournamentStatus(ctx context.Context, id string, status models.TournamentStatus) error {
	if m.SetTournamentStatusError != nil {
		return m.SetTournamentStatusError
	}
	m.Writes++
	return m.FullRepository.SetTournamentStatus(ctx, id, status)
}

// ===== Profile Methods =====

func (m *Repository) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	if m.UpsertProfileError != nil {
		return m.UpsertProfileError
	}
	m.Writes++
	return m.FullRepository.UpsertProfile(ctx, p)
}

func (m *Repository) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	if m.GetProfileError != nil {
		return nil, m.GetProfileError
	}
	return m.FullRepository.GetProfile(ctx, id)
}

func (m *Repository) ListProfiles(ctx context.Context, tournamentID string) ([]models.UserProfile, error) {
	if m.ListProfilesError != nil {
		return nil, m.ListProfilesError
	}
	return m.FullRepository.ListProfiles(ctx, tournamentID)
}

func (m *Repository) FindProfileByName(ctx context.Context, tournamentID, name string) (*models.UserProfile, error) {
	if m.FindProfileByNameError != nil {
		return nil, m.FindProfileByNameError
	}
	return m.FullRepository.FindProfileByName(ctx, tournamentID, name)
}

func (m *Repository) SetProfileStatus(ctx context.Context, id string, status models.DebaterStatus) error {
	if m.SetProfileStatusError != nil {
		return m.SetProfileStatusError
	}
	m.Writes++
	return m.FullRepository.SetProfileStatus(ctx, id, status)
}

func (m *Repository) UpdateProfileContact(ctx context.Context, id, email, phone string) error {
	if m.UpdateProfileContactError != nil {
		return m.UpdateProfileContactError
	}
	m.Writes++
	return m.FullRepository.UpdateProfileContact(ctx, id, email, phone)
}

func (m *Repository) DeleteProfile(ctx context.Context, id string) error {
	if m.DeleteProfileError != nil {
		return m.DeleteProfileError
	}
	m.Writes++
	return m.FullRepository.DeleteProfile(ctx, id)
}

// ===== Debate Methods =====

func (m *Repository) CreateDebate(ctx context.Context, d *models.Debate) error {
	if m.CreateDebateError != nil {
		return m.CreateDebateError
	}
	m.Writes++
	return m.FullRepository.CreateDebate(ctx, d)
}

func (m *Repository) GetDebate(ctx context.Context, id string) (*models.Debate, error) {
	if m.GetDebateError != nil {
		return nil, m.GetDebateError
	}
	return m.FullRepository.GetDebate(ctx, id)
}

func (m *Repository) ListDebates(ctx context.Context, tournamentID string) ([]models.Debate, error) {
	if m.ListDebatesError != nil {
		return nil, m.ListDebatesError
	}
	return m.FullRepository.ListDebates(ctx, tournamentID)
}

func (m *Repository) SetDebateJudges(ctx context.Context, id string, judgeIDs []string) error {
	if m.SetDebateJudgesError != nil {
		return m.SetDebateJudgesError
	}
	m.Writes++
	return m.FullRepository.SetDebateJudges(ctx, id, judgeIDs)
}

func (m *Repository) FinalizeDebate(ctx context.Context, id, loserID string) error {
	if m.FinalizeDebateError != nil {
		return m.FinalizeDebateError
	}
	m.Writes++
	return m.FullRepository.FinalizeDebate(ctx, id, loserID)
}

func (m *Repository) DeleteDebate(ctx context.Context, id string) error {
	if m.DeleteDebateError != nil {
		return m.DeleteDebateError
	}
	m.Writes++
	return m.FullRepository.DeleteDebate(ctx, id)
}

// ===== Result Methods =====

func (m *Repository) UpsertResult(ctx context.Context, r *models.RoundResult) error {
	if m.UpsertResultError != nil {
		return m.UpsertResultError
	}
	m.Writes++
	return m.FullRepository.UpsertResult(ctx, r)
}

func (m *Repository) ListResultsForDebate(ctx context.Context, debateID string) ([]models.RoundResult, error) {
	if m.ListResultsForDebateError != nil {
		return nil, m.ListResultsForDebateError
	}
	return m.FullRepository.ListResultsForDebate(ctx, debateID)
}

func (m *Repository) ListResults(ctx context.Context, tournamentID string) ([]models.RoundResult, error) {
	if m.ListResultsError != nil {
		return nil, m.ListResultsError
	}
	return m.FullRepository.ListResults(ctx, tournamentID)
}

// ===== Notification Methods =====

func (m *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if m.CreateNotificationError != nil {
		return m.CreateNotificationError
	}
	m.Writes++
	return m.FullRepository.CreateNotification(ctx, n)
}

func (m *Repository) ListNotifications(ctx context.Context, tournamentID, userID string) ([]models.Notification, error) {
	if m.ListNotificationsError != nil {
		return nil, m.ListNotificationsError
	}
	return m.FullRepository.ListNotifications(ctx, tournamentID, userID)
}

func (m *Repository) DeleteNotification(ctx context.Context, id string) error {
	if m.DeleteNotificationError != nil {
		return m.DeleteNotificationError
	}
	m.Writes++
	return m.FullRepository.DeleteNotification(ctx, id)
}

// ===== Preference Methods =====

func (m *Repository) GetPreference(ctx context.Context, userID, key string) (string, error) {
	if m.GetPreferenceError != nil {
		return "", m.GetPreferenceError
	}
	return m.FullRepository.GetPreference(ctx, userID, key)
}

func (m *Repository) SetPreference(ctx context.Context, userID, key, value string) error {
	if m.SetPreferenceError != nil {
		return m.SetPreferenceError
	}
	m.Writes++
	return m.FullRepository.SetPreference(ctx, userID, key, value)
}
