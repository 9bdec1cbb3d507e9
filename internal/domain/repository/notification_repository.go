package repository

import (
	"context"

	"farmlink/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	// ListByUser returns the user's notifications descending by creation
	// time, capped to limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
	// MarkAllRead flips every unread notification for the user and returns
	// how many were updated.
	MarkAllRead(ctx context.Context, userID string) (int, error)
	// Subscribe delivers newly inserted notifications for the user until ctx
	// is cancelled.
	Subscribe(ctx context.Context, userID string) (<-chan *entity.Notification, error)
}
