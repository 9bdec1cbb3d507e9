package repository

import (
	"context"

	"farmlink/internal/domain/entity"
)

// MessageRepository is the typed adapter over the persistent chat log. It
// performs no aggregation; conversation synthesis happens above it.
type MessageRepository interface {
	// Create appends a message. Fails with a validation error when
	// conversation, sender or receiver is missing.
	Create(ctx context.Context, message *entity.Message) error
	GetByID(ctx context.Context, id string) (*entity.Message, error)
	// ListByConversation returns the conversation's messages ascending by
	// creation time.
	ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error)
	// ListForUser returns every message the user sent or received,
	// descending by creation time.
	ListForUser(ctx context.Context, userID string) ([]*entity.Message, error)
	// MarkConversationRead flips is_read on all unread messages addressed to
	// receiverID in the conversation and returns how many were updated.
	MarkConversationRead(ctx context.Context, conversationID, receiverID string) (int, error)
	// UpdateOfferStatus transitions an offer message out of pending. Fails
	// with a precondition error when the current status is not pending.
	UpdateOfferStatus(ctx context.Context, messageID string, status entity.OfferStatus) (*entity.Message, error)
	// Subscribe delivers insert/update events for messages the user
	// participates in until ctx is cancelled. At-least-once, possibly out of
	// order within a conversation.
	Subscribe(ctx context.Context, userID string) (<-chan entity.MessageEvent, error)
}
