package services

import (
	"context"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
)

const maxSeedCount = 100

// SeedServiceRepository defines the repository methods needed by SeedService
type SeedServiceRepository interface {
	repository.TournamentRepository
	repository.ProfileRepository
}

// SeedService fills a tournament with fake participants for demos
type SeedService struct {
	log   logger.Logger
	repo  SeedServiceRepository
	faker *gofakeit.Faker
	guard guard
}

// NewSeedService creates a new SeedService. A nil faker uses a random seed.
func NewSeedService(log logger.Logger, repo SeedServiceRepository, faker *gofakeit.Faker, metrics Recorder) *SeedService {
	if faker == nil {
		faker = gofakeit.New(0)
	}
	return &SeedService{
		log:   log,
		repo:  repo,
		faker: faker,
		guard: guard{log: log, repo: repo, metrics: recorderOrNop(metrics)},
	}
}

// SeedDemo creates debaters and judges with fake names in the caller's tournament
func (s *SeedService) SeedDemo(ctx context.Context, caller Caller, debaters, judges int) ([]models.UserProfile, error) {
	t, err := s.guard.admin(ctx, caller)
	if err != nil {
		return nil, s.guard.reject("seed", caller, err)
	}
	if debaters < 0 || judges < 0 || debaters > maxSeedCount || judges > maxSeedCount {
		return nil, s.guard.reject("seed", caller, ErrInvalidSeedCount)
	}

	existing, err := s.repo.ListProfiles(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[strings.ToLower(p.Name)] = true
	}

	created := []models.UserProfile{}
	add := func(role models.Role) error {
		name := s.uniqueName(taken)
		p := &models.UserProfile{ID: uuid.NewString(), Name: name, Role: role, TournamentID: t.ID}
		if role == models.RoleDebater {
			p.Status = models.DebaterActive
			p.Email = s.faker.Email()
		}
		if err := s.repo.UpsertProfile(ctx, p); err != nil {
			return err
		}
		created = append(created, *p)
		return nil
	}

	for i := 0; i < debaters; i++ {
		if err := add(models.RoleDebater); err != nil {
			return nil, err
		}
	}
	for i := 0; i < judges; i++ {
		if err := add(models.RoleJudge); err != nil {
			return nil, err
		}
	}

	s.log.Info("Seeded demo participants", "tournament", t.ID, "debaters", debaters, "judges", judges)
	return created, nil
}

func (s *SeedService) uniqueName(taken map[string]bool) string {
	for {
		name := s.faker.Name()
		key := strings.ToLower(name)
		if !taken[key] {
			taken[key] = true
			return name
		}
	}
}
