package testutil

import (
	"testing"

	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/repository"
)

// NewTestRepository creates a new in-memory sqlite repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// NewMemoryRepository creates an empty process-local store
func NewMemoryRepository(t *testing.T) *repository.Memory {
	t.Helper()
	return repository.NewMemory()
}

// NewLogger returns a logger that only reports errors, keeping test output quiet
func NewLogger() logger.Logger {
	log := logger.New()
	log.SetLevel(logger.ParseLevel("error"))
	return log
}
