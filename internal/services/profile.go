package services

import (
	"context"
	"strings"

	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
)

// ProfileServiceRepository defines the repository methods needed by ProfileService
type ProfileServiceRepository interface {
	repository.TournamentRepository
	repository.ProfileRepository
	repository.PreferenceRepository
}

// ProfileService handles registration, membership and debater status
type ProfileService struct {
	log   logger.Logger
	repo  ProfileServiceRepository
	guard guard
}

// NewProfileService creates a new ProfileService
func NewProfileService(log logger.Logger, repo ProfileServiceRepository, metrics Recorder) *ProfileService {
	return &ProfileService{
		log:   log,
		repo:  repo,
		guard: guard{log: log, repo: repo, metrics: recorderOrNop(metrics)},
	}
}

// Register creates or updates the profile for a session identity
func (s *ProfileService) Register(ctx context.Context, userID, name string, role models.Role) (*models.UserProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingName
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	p, err := s.repo.GetProfile(ctx, userID)
	switch {
	case err == repository.ErrNotFound:
		p = &models.UserProfile{ID: userID}
	case err != nil:
		return nil, err
	}

	changed := p.Name != name || p.Role != role
	if changed && p.TournamentID != "" {
		caller := Caller{UserID: userID, Name: name, Role: role, TournamentID: p.TournamentID}
		if _, err := s.guard.openTournament(ctx, caller); err != nil {
			if err == ErrTournamentNotFound {
				p.TournamentID = ""
			} else {
				return nil, s.guard.reject("register", caller, err)
			}
		}
		if p.TournamentID != "" {
			other, err := s.repo.FindProfileByName(ctx, p.TournamentID, name)
			if err == nil && other.ID != userID {
				return nil, s.guard.reject("register", caller, ErrDuplicateName)
			}
			if err != nil && err != repository.ErrNotFound {
				return nil, err
			}
		}
	}

	if changed {
		p.Name = name
		p.Role = role
		switch {
		case role == models.RoleDebater && p.Status == "":
			p.Status = models.DebaterActive
		case role != models.RoleDebater:
			p.Status = ""
		}
		if err := s.repo.UpsertProfile(ctx, p); err != nil {
			return nil, err
		}
		s.log.Info("Profile registered", "user", userID, "name", name, "role", role)
	}

	for key, value := range map[string]string{
		repository.PrefUserName: name,
		repository.PrefUserRole: string(role),
	} {
		if err := s.repo.SetPreference(ctx, userID, key, value); err != nil {
			s.log.Warn("Failed to persist preference", "user", userID, "key", key, "error", err)
		}
	}
	return p, nil
}

// Get returns a profile by user id
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, ErrProfileNotFound
	}
	return p, err
}

// List returns every member of the caller's tournament
func (s *ProfileService) List(ctx context.Context, caller Caller) ([]models.UserProfile, error) {
	if caller.TournamentID == "" {
		return nil, ErrNoTournament
	}
	return s.repo.ListProfiles(ctx, caller.TournamentID)
}

// Debaters returns the debaters of the caller's tournament
func (s *ProfileService) Debaters(ctx context.Context, caller Caller) ([]models.UserProfile, error) {
	return s.filter(ctx, caller, func(p *models.UserProfile) bool {
		return p.Role == models.RoleDebater
	})
}

// EligibleDebaters returns debaters that have not been eliminated
func (s *ProfileService) EligibleDebaters(ctx context.Context, caller Caller) ([]models.UserProfile, error) {
	return s.filter(ctx, caller, func(p *models.UserProfile) bool {
		return p.Role == models.RoleDebater && p.Status != models.DebaterEliminated
	})
}

func (s *ProfileService) filter(ctx context.Context, caller Caller, keep func(p *models.UserProfile) bool) ([]models.UserProfile, error) {
	all, err := s.List(ctx, caller)
	if err != nil {
		return nil, err
	}
	out := []models.UserProfile{}
	for i := range all {
		if keep(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// member loads a profile that belongs to the caller's tournament
func (s *ProfileService) member(ctx context.Context, caller Caller, profileID string) (*models.UserProfile, error) {
	p, err := s.repo.GetProfile(ctx, profileID)
	if err == repository.ErrNotFound {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.TournamentID != caller.TournamentID {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// SetStatus toggles a debater between Active and Eliminated
func (s *ProfileService) SetStatus(ctx context.Context, caller Caller, profileID string, status models.DebaterStatus) error {
	if _, err := s.guard.admin(ctx, caller); err != nil {
		return s.guard.reject("set_status", caller, err)
	}
	if !status.Valid() {
		return s.guard.reject("set_status", caller, ErrInvalidStatus)
	}
	p, err := s.member(ctx, caller, profileID)
	if err != nil {
		return err
	}
	if p.Role != models.RoleDebater {
		return s.guard.reject("set_status", caller, ErrNotDebater)
	}
	if p.Status == status {
		return nil
	}
	if err := s.repo.SetProfileStatus(ctx, profileID, status); err != nil {
		return err
	}
	s.log.Info("Debater status changed", "tournament", caller.TournamentID, "debater", profileID, "status", status)
	return nil
}

// UpdateContact edits the caller's own contact fields
func (s *ProfileService) UpdateContact(ctx context.Context, caller Caller, email, phone string) error {
	if caller.TournamentID != "" {
		if _, err := s.guard.openTournament(ctx, caller); err != nil {
			return s.guard.reject("update_contact", caller, err)
		}
	}
	err := s.repo.UpdateProfileContact(ctx, caller.UserID, strings.TrimSpace(email), strings.TrimSpace(phone))
	if err == repository.ErrNotFound {
		return ErrProfileNotFound
	}
	return err
}

// Kick removes a member from the tournament. Unknown profiles are ignored.
func (s *ProfileService) Kick(ctx context.Context, caller Caller, profileID string) error {
	if _, err := s.guard.admin(ctx, caller); err != nil {
		return s.guard.reject("kick", caller, err)
	}
	if profileID == caller.UserID {
		return s.guard.reject("kick", caller, ErrKickSelf)
	}
	if _, err := s.member(ctx, caller, profileID); err != nil {
		if err == ErrProfileNotFound {
			s.log.Debug("Kick ignored for unknown profile", "tournament", caller.TournamentID, "profile", profileID)
			return nil
		}
		return err
	}
	if err := s.repo.DeleteProfile(ctx, profileID); err != nil && err != repository.ErrNotFound {
		return err
	}
	s.log.Info("Profile removed", "tournament", caller.TournamentID, "profile", profileID, "by", caller.UserID)
	return nil
}

// Preferences returns the persisted session keys for a user
func (s *ProfileService) Preferences(ctx context.Context, userID string) (map[string]string, error) {
	prefs := make(map[string]string)
	for _, key := range []string{repository.PrefUserName, repository.PrefUserRole, repository.PrefTournamentID} {
		v, err := s.repo.GetPreference(ctx, userID, key)
		if err == repository.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		prefs[key] = v
	}
	return prefs, nil
}
