package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
)

const (
	// codeAlphabet leaves out 0/O, 1/I/L so codes can be read aloud
	codeAlphabet    = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
	codeLength      = 6
	maxCodeAttempts = 10
	// codeByteLimit is the largest multiple of len(codeAlphabet) below 256.
	// Bytes at or above it are redrawn so every character is equally likely.
	codeByteLimit = 256 - 256%len(codeAlphabet)
)

// TournamentServiceRepository defines the repository methods needed by TournamentService
type TournamentServiceRepository interface {
	repository.TournamentRepository
	repository.ProfileRepository
	repository.PreferenceRepository
}

// TournamentService handles tournament creation, joining and closing
type TournamentService struct {
	log        logger.Logger
	repo       TournamentServiceRepository
	guard      guard
	randReader io.Reader // for testing: defaults to crypto/rand.Reader
}

// NewTournamentService creates a new TournamentService
func NewTournamentService(log logger.Logger, repo TournamentServiceRepository, metrics Recorder) *TournamentService {
	return &TournamentService{
		log:        log,
		repo:       repo,
		guard:      guard{log: log, repo: repo, metrics: recorderOrNop(metrics)},
		randReader: rand.Reader,
	}
}

// SetRandReader replaces the code entropy source
func (s *TournamentService) SetRandReader(r io.Reader) {
	s.randReader = r
}

// GenerateCode returns a code not used by any tournament
func (s *TournamentService) GenerateCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := s.randomCode()
		if err != nil {
			return "", err
		}

		exists, err := s.repo.TournamentExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("error checking code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
		s.log.Debug("Generated code already exists, retrying", "code", code, "attempt", i+1)
	}
	return "", ErrCodeExhausted
}

func (s *TournamentService) randomCode() (string, error) {
	var b strings.Builder
	one := make([]byte, 1)
	for b.Len() < codeLength {
		if _, err := io.ReadFull(s.randReader, one); err != nil {
			return "", fmt.Errorf("failed to generate random code: %w", err)
		}
		if int(one[0]) >= codeByteLimit {
			continue
		}
		b.WriteByte(codeAlphabet[int(one[0])%len(codeAlphabet)])
	}
	return b.String(), nil
}

// Create starts a new Active tournament owned by the calling admin, who joins it
func (s *TournamentService) Create(ctx context.Context, caller Caller, name, topic string) (*models.Tournament, error) {
	if !caller.IsAdmin() {
		return nil, s.guard.reject("create_tournament", caller, ErrNotAdmin)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, s.guard.reject("create_tournament", caller, ErrMissingName)
	}

	var t *models.Tournament
	created := false
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.GenerateCode(ctx)
		if err != nil {
			return nil, err
		}
		t = &models.Tournament{
			ID:      code,
			Name:    name,
			Topic:   strings.TrimSpace(topic),
			OwnerID: caller.UserID,
			Status:  models.TournamentActive,
		}
		err = s.repo.CreateTournament(ctx, t)
		if err == repository.ErrDuplicate {
			// lost a race for the code
			continue
		}
		if err != nil {
			return nil, err
		}
		created = true
		break
	}
	if !created {
		return nil, ErrCodeExhausted
	}

	if _, err := s.joinProfile(ctx, caller, t.ID); err != nil {
		return nil, err
	}

	s.log.Info("Tournament created", "tournament", t.ID, "owner", caller.UserID, "name", t.Name)
	return t, nil
}

// Get looks up a tournament by code, ignoring case
func (s *TournamentService) Get(ctx context.Context, code string) (*models.Tournament, error) {
	t, err := s.repo.GetTournament(ctx, NormalizeCode(code))
	if err == repository.ErrNotFound {
		return nil, ErrTournamentNotFound
	}
	return t, err
}

// IsClosed reports whether the tournament is read-only
func (s *TournamentService) IsClosed(ctx context.Context, code string) (bool, error) {
	t, err := s.Get(ctx, code)
	if err != nil {
		return false, err
	}
	return t.IsClosed(), nil
}

// Close makes a tournament read-only. Only its owner may close it; closing twice is a no-op.
func (s *TournamentService) Close(ctx context.Context, caller Caller, code string) error {
	t, err := s.Get(ctx, code)
	if err != nil {
		return err
	}
	if t.OwnerID != caller.UserID {
		return s.guard.reject("close_tournament", caller, ErrNotOwner)
	}
	if t.IsClosed() {
		return nil
	}
	if err := s.repo.SetTournamentStatus(ctx, t.ID, models.TournamentClosed); err != nil {
		return err
	}
	s.log.Info("Tournament closed", "tournament", t.ID, "by", caller.UserID)
	return nil
}

// Join makes the caller a member of an Active tournament
func (s *TournamentService) Join(ctx context.Context, caller Caller, code string) (*models.UserProfile, error) {
	t, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if t.IsClosed() {
		caller.TournamentID = t.ID
		return nil, s.guard.reject("join", caller, ErrTournamentClosed)
	}
	p, err := s.joinProfile(ctx, caller, t.ID)
	if err != nil {
		if err == ErrDuplicateName {
			caller.TournamentID = t.ID
			return nil, s.guard.reject("join", caller, err)
		}
		return nil, err
	}
	s.log.Info("Joined tournament", "tournament", t.ID, "user", p.ID, "role", p.Role)
	return p, nil
}

func (s *TournamentService) joinProfile(ctx context.Context, caller Caller, tournamentID string) (*models.UserProfile, error) {
	p, err := s.repo.GetProfile(ctx, caller.UserID)
	if err == repository.ErrNotFound {
		p = &models.UserProfile{ID: caller.UserID, Name: caller.Name, Role: caller.Role}
	} else if err != nil {
		return nil, err
	}

	other, err := s.repo.FindProfileByName(ctx, tournamentID, p.Name)
	if err == nil && other.ID != p.ID {
		return nil, ErrDuplicateName
	}
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}

	p.TournamentID = tournamentID
	if p.Role == models.RoleDebater && p.Status == "" {
		p.Status = models.DebaterActive
	}
	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.SetPreference(ctx, p.ID, repository.PrefTournamentID, tournamentID); err != nil {
		s.log.Warn("Failed to persist tournament preference", "user", p.ID, "error", err)
	}
	return p, nil
}

// QRCode renders a PNG linking to the join page for a tournament
func (s *TournamentService) QRCode(ctx context.Context, code, baseURL string) ([]byte, error) {
	t, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		return nil, fmt.Errorf("base_url not configured")
	}
	joinURL := fmt.Sprintf("%s/join/%s", strings.TrimSuffix(baseURL, "/"), t.ID)
	return qrcode.Encode(joinURL, qrcode.Medium, 256)
}
