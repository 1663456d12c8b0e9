// Package notifier derives notification documents from like and comment
// activity against screams.
package notifier

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/socialape/screams-backend/internal/models"
	"github.com/socialape/screams-backend/internal/repositories"
)

// Notifier synthesizes and retracts notifications after engagement
// mutations commit. Derivation failures are logged and swallowed: the
// originating mutation has already succeeded and is never rolled back.
type Notifier struct {
	screamRepo       repositories.ScreamRepository
	notificationRepo repositories.NotificationRepository
	logger           *slog.Logger
	now              func() time.Time
}

// New creates a Notifier.
func New(screamRepo repositories.ScreamRepository, notificationRepo repositories.NotificationRepository, logger *slog.Logger) *Notifier {
	return &Notifier{
		screamRepo:       screamRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// OnLike creates a notification for the scream's owner, keyed by the like
// id. Liking your own scream, or a scream that no longer exists, derives
// nothing.
func (n *Notifier) OnLike(ctx context.Context, like *models.Like) {
	n.derive(ctx, like.ID, like.ScreamID, like.UserHandle, models.NotificationTypeLike)
}

// OnComment creates a notification for the scream's owner, keyed by the
// comment id, under the same self-interaction rule as OnLike.
func (n *Notifier) OnComment(ctx context.Context, comment *models.Comment) {
	n.derive(ctx, comment.ID, comment.ScreamID, comment.UserHandle, models.NotificationTypeComment)
}

// OnUnlike retracts the notification the like produced. A missing
// notification is a no-op.
func (n *Notifier) OnUnlike(ctx context.Context, likeID string) {
	if err := n.notificationRepo.Delete(ctx, likeID); err != nil {
		n.logger.Error("failed to retract notification", "notificationId", likeID, "error", err)
	}
}

func (n *Notifier) derive(ctx context.Context, sourceID, screamID, sender, notificationType string) {
	scream, err := n.screamRepo.GetByID(ctx, screamID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			n.logger.Error("failed to load scream for notification", "screamId", screamID, "error", err)
		}
		return
	}
	if scream.UserHandle == sender {
		return
	}

	notification := &models.Notification{
		ID:        sourceID,
		Recipient: scream.UserHandle,
		Sender:    sender,
		ScreamID:  screamID,
		Type:      notificationType,
		Read:      false,
		CreatedAt: n.now().UTC().Format(time.RFC3339),
	}
	if err := n.notificationRepo.Set(ctx, notification); err != nil {
		n.logger.Error("failed to create notification", "screamId", screamID, "type", notificationType, "error", err)
	}
}
