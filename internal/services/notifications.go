package services

import (
	"context"

	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
)

// NotificationService lists and dismisses the caller's notifications
type NotificationService struct {
	log  logger.Logger
	repo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(log logger.Logger, repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{log: log, repo: repo}
}

// List returns the caller's notifications, oldest first
func (s *NotificationService) List(ctx context.Context, caller Caller) ([]models.Notification, error) {
	if caller.TournamentID == "" {
		return nil, ErrNoTournament
	}
	list, err := s.repo.ListNotifications(ctx, caller.TournamentID, caller.UserID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

// Dismiss deletes one of the caller's notifications. Unknown ids are ignored.
func (s *NotificationService) Dismiss(ctx context.Context, caller Caller, id string) error {
	list, err := s.List(ctx, caller)
	if err != nil {
		return err
	}
	for _, n := range list {
		if n.ID == id {
			if err := s.repo.DeleteNotification(ctx, id); err != nil && err != repository.ErrNotFound {
				return err
			}
			s.log.Debug("Notification dismissed", "tournament", caller.TournamentID, "user", caller.UserID, "id", id)
			return nil
		}
	}
	return nil
}
