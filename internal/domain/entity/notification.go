package entity

import "time"

type NotificationType string

const (
	NotificationNewMessage  NotificationType = "new_message"
	NotificationNewProduct  NotificationType = "new_product"
	NotificationOrderUpdate NotificationType = "order_update"
)

// Notification is an append-only user-facing event. Only IsRead is ever
// mutated; rows are never deleted. Unread counts are derived by filtering,
// never stored.
type Notification struct {
	ID        string           `json:"id" firestore:"id"`
	UserID    string           `json:"user_id" firestore:"userId"`
	Type      NotificationType `json:"type" firestore:"type"`
	Title     string           `json:"title" firestore:"title"`
	Message   string           `json:"message" firestore:"message"`
	RelatedID string           `json:"related_id,omitempty" firestore:"relatedId,omitempty"`
	IsRead    bool             `json:"is_read" firestore:"isRead"`
	CreatedAt time.Time        `json:"created_at" firestore:"createdAt"`
}
