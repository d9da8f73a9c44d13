// internal/service/notification/notification_service.go
package notification

import (
	"context"

	"agentmarket-service/internal/domain/notification"
	"agentmarket-service/internal/repository/postgres"

	"go.uber.org/zap"
)

type NotificationService struct {
	notifRepo *postgres.NotificationRepository
	logger    *zap.Logger
}

func NewNotificationService(notifRepo *postgres.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		logger:    logger,
	}
}

// Notify records a notification for the user. Failures are logged and
// swallowed: notifications never block the operation that triggered them.
func (s *NotificationService) Notify(ctx context.Context, userID int64, kind notification.Kind, title, body string) {
	n := &notification.Notification{
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
	}

	if err := s.notifRepo.Create(ctx, n); err != nil {
		s.logger.Warn("failed to create notification",
			zap.Int64("user_id", userID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

// List retrieves the user's latest notifications.
func (s *NotificationService) List(ctx context.Context, userID int64, limit int) ([]notification.Notification, error) {
	return s.notifRepo.ListByUser(ctx, userID, limit)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	return s.notifRepo.MarkRead(ctx, userID, id)
}

// UnreadCount returns the user's unread notification count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.notifRepo.UnreadCount(ctx, userID)
}
