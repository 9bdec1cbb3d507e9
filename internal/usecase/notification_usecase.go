package usecase

import (
	"context"
	"fmt"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/pkg/logger"
)

// notificationListCap bounds how many rows a single list fetch returns.
const notificationListCap = 50

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
}

func NewNotificationUseCase(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
	}
}

// NotificationFeed is one list fetch: the newest rows plus the unread count
// derived from them. The count is never stored anywhere; it is recomputed on
// every fetch so it cannot drift.
type NotificationFeed struct {
	Notifications []*entity.Notification `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

func (uc *NotificationUseCase) List(ctx context.Context, userID string) (*NotificationFeed, error) {
	notifications, err := uc.notificationRepo.ListByUser(ctx, userID, notificationListCap)
	if err != nil {
		return nil, err
	}

	feed := &NotificationFeed{Notifications: notifications}
	for _, n := range notifications {
		if !n.IsRead {
			feed.UnreadCount++
		}
	}

	return feed, nil
}

func (uc *NotificationUseCase) Create(ctx context.Context, notification *entity.Notification) error {
	return uc.notificationRepo.Create(ctx, notification)
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, id string) error {
	return uc.notificationRepo.MarkRead(ctx, id)
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return uc.notificationRepo.MarkAllRead(ctx, userID)
}

// BroadcastNewProduct fans a new_product notification out to every buyer.
// Individual failures are logged and skipped; one bad row must not starve
// the rest of the audience.
func (uc *NotificationUseCase) BroadcastNewProduct(ctx context.Context, product *entity.Product, farmerName string) int {
	const pageSize = 100

	created := 0
	for offset := 0; ; offset += pageSize {
		buyers, _, err := uc.userRepo.FindByField(ctx, "role", entity.RoleBuyer, pageSize, offset)
		if err != nil {
			logger.Error("Failed to page buyers for product broadcast: %v", err)
			break
		}
		if len(buyers) == 0 {
			break
		}

		for _, buyer := range buyers {
			notification := &entity.Notification{
				UserID:    buyer.ID,
				Type:      entity.NotificationNewProduct,
				Title:     "New Product Available",
				Message:   fmt.Sprintf("%s listed %s", farmerName, product.Name),
				RelatedID: product.ID,
			}
			if err := uc.notificationRepo.Create(ctx, notification); err != nil {
				logger.Error("Failed to notify buyer %s of new product: %v", buyer.ID, err)
				continue
			}
			created++
		}

		if len(buyers) < pageSize {
			break
		}
	}

	return created
}
