// Package notify delivers short messages to tournament members.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/ldtab/internal/logger"
	"github.com/abrezinsky/ldtab/internal/models"
	"github.com/abrezinsky/ldtab/internal/repository"
)

// Relay queues a notification for a user
type Relay interface {
	Notify(ctx context.Context, tournamentID, userID, message string) error
}

// StoreRelay writes notifications to the repository so they show up in the
// notifications collection
type StoreRelay struct {
	repo repository.NotificationRepository
	now  func() time.Time
}

// NewStoreRelay creates a relay backed by repo
func NewStoreRelay(repo repository.NotificationRepository) *StoreRelay {
	return &StoreRelay{repo: repo, now: time.Now}
}

// Notify stores one notification record
func (r *StoreRelay) Notify(ctx context.Context, tournamentID, userID, message string) error {
	n := &models.Notification{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		UserID:       userID,
		Message:      message,
		CreatedAt:    r.now(),
	}
	if err := r.repo.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("storing notification: %w", err)
	}
	return nil
}

// Publisher is the subset of *nats.Conn used for fan-out
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSRelay stores notifications through next and mirrors them, and
// collection changes, onto NATS subjects
type NATSRelay struct {
	next   Relay
	pub    Publisher
	prefix string
	log    logger.Logger
}

// NewNATSRelay wraps next. An empty prefix defaults to "ldtab".
func NewNATSRelay(next Relay, pub Publisher, prefix string, log logger.Logger) *NATSRelay {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		prefix = "ldtab"
	}
	return &NATSRelay{next: next, pub: pub, prefix: prefix, log: log}
}

type notifyMessage struct {
	TournamentID string    `json:"tournament_id"`
	UserID       string    `json:"user_id"`
	Message      string    `json:"message"`
	SentAt       time.Time `json:"sent_at"`
}

// Notify delegates to the wrapped relay and then publishes. Publish failures
// are logged and never returned.
func (r *NATSRelay) Notify(ctx context.Context, tournamentID, userID, message string) error {
	if r.next != nil {
		if err := r.next.Notify(ctx, tournamentID, userID, message); err != nil {
			return err
		}
	}
	data, err := json.Marshal(notifyMessage{
		TournamentID: tournamentID,
		UserID:       userID,
		Message:      message,
		SentAt:       time.Now().UTC(),
	})
	if err != nil {
		r.log.Warn("Failed to encode notification", "error", err)
		return nil
	}
	r.publish(r.NotifySubject(tournamentID, userID), data)
	return nil
}

// Forward publishes a collection change
func (r *NATSRelay) Forward(c repository.Change) {
	data, err := json.Marshal(c)
	if err != nil {
		r.log.Warn("Failed to encode change", "error", err)
		return
	}
	r.publish(r.ChangeSubject(c.TournamentID, c.Collection), data)
}

// Run forwards every change from sub until ctx is done or sub is closed
func (r *NATSRelay) Run(ctx context.Context, sub *repository.Subscription) {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-sub.C():
			if !ok {
				return
			}
			r.Forward(c)
		}
	}
}

// NotifySubject is the subject a user's notifications are published on
func (r *NATSRelay) NotifySubject(tournamentID, userID string) string {
	return fmt.Sprintf("%s.notify.%s.%s", r.prefix, token(tournamentID), token(userID))
}

// ChangeSubject is the subject a tournament collection's changes are published on
func (r *NATSRelay) ChangeSubject(tournamentID string, c repository.Collection) string {
	return fmt.Sprintf("%s.changes.%s.%s", r.prefix, token(tournamentID), c)
}

func (r *NATSRelay) publish(subject string, data []byte) {
	if r.pub == nil {
		return
	}
	if err := r.pub.Publish(subject, data); err != nil {
		r.log.Warn("NATS publish failed", "subject", subject, "error", err)
	}
}

// token makes s safe as a single NATS subject token
func token(s string) string {
	if s == "" {
		return "_"
	}
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(s)
}
