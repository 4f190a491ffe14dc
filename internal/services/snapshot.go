package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
)

// SnapshotService reads whole collections so clients can rebuild their views
type SnapshotService struct {
	log  logger.Logger
	repo repository.FullRepository
}

// NewSnapshotService creates a new SnapshotService
func NewSnapshotService(log logger.Logger, repo repository.FullRepository) *SnapshotService {
	return &SnapshotService{log: log, repo: repo}
}

// Snapshot returns the current members of one collection. Notifications are
// scoped to userID.
func (s *SnapshotService) Snapshot(ctx context.Context, tournamentID, userID string, collection repository.Collection) (interface{}, error) {
	switch collection {
	case repository.CollectionTournaments:
		t, err := s.repo.GetTournament(ctx, tournamentID)
		if err == repository.ErrNotFound {
			return []models.Tournament{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []models.Tournament{*t}, nil
	case repository.CollectionProfiles:
		return nonNil(s.repo.ListProfiles(ctx, tournamentID))
	case repository.CollectionDebates:
		return nonNil(s.repo.ListDebates(ctx, tournamentID))
	case repository.CollectionResults:
		return nonNil(s.repo.ListResults(ctx, tournamentID))
	case repository.CollectionNotifications:
		return nonNil(s.repo.ListNotifications(ctx, tournamentID, userID))
	}
	return nil, fmt.Errorf("unknown collection %q", collection)
}

func nonNil[T any](items []T, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// All loads every collection concurrently
func (s *SnapshotService) All(ctx context.Context, tournamentID, userID string) (map[repository.Collection]interface{}, error) {
	var mu sync.Mutex
	out := make(map[repository.Collection]interface{}, len(repository.AllCollections))

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range repository.AllCollections {
		c := c
		g.Go(func() error {
			records, err := s.Snapshot(gctx, tournamentID, userID, c)
			if err != nil {
				return err
			}
			mu.Lock()
			out[c] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
