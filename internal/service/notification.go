package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/model"
)

// NotificationStore reads and flags notification rows.
type NotificationStore interface {
	ListByUser(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID uint64) error
}

// NotificationService exposes a user's own notifications.
type NotificationService struct {
	store NotificationStore
	log   *zap.Logger
}

func NewNotificationService(store NotificationStore, log *zap.Logger) *NotificationService {
	return &NotificationService{store: store, log: log}
}

const notificationPageSize = 50

func (s *NotificationService) List(ctx context.Context, actor Actor, unreadOnly bool) ([]model.Notification, error) {
	ns, err := s.store.ListByUser(ctx, actor.UserID, unreadOnly, notificationPageSize)
	if err != nil {
		return nil, internal(logFor(ctx, s.log), "notification.list", err)
	}
	return ns, nil
}

// MarkRead flags one of the actor's notifications as read.  Someone else's
// notification is reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id uint64) error {
	if err := s.store.MarkRead(ctx, id, actor.UserID); err != nil {
		return notFoundOr(logFor(ctx, s.log), "notification.mark_read", err, "Notificación no encontrada")
	}
	return nil
}
