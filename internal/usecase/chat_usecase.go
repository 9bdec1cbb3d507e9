package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/internal/infrastructure/ratelimit"
	"farmlink/pkg/errors"
)

type ChatUseCase struct {
	messageRepo      repository.MessageRepository
	userRepo         repository.UserRepository
	productRepo      repository.ProductRepository
	notificationRepo repository.NotificationRepository
	rateLimiter      *ratelimit.RateLimiter
}

func NewChatUseCase(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	notificationRepo repository.NotificationRepository,
) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		productRepo:      productRepo,
		notificationRepo: notificationRepo,
		rateLimiter:      rateLimiter,
	}
}

type StartConversationInput struct {
	ReceiverID string
	ProductID  string
}

// StartConversation returns the conversation between the caller and the
// receiver about a product, reusing an existing thread when one has messages.
// A fresh conversation gets a new id but persists nothing; it exists only in
// the returned view until the first message is sent.
func (uc *ChatUseCase) StartConversation(ctx context.Context, userID string, input StartConversationInput) (*entity.Conversation, error) {
	if allowed, waitTime := uc.rateLimiter.Allow(userID, "start_conversation"); !allowed {
		return nil, errors.TooManyRequests(fmt.Sprintf("Too many new conversations. Try again in %v", waitTime.Round(time.Second)), waitTime)
	}

	if input.ReceiverID == "" {
		return nil, errors.BadRequest("Receiver is required", nil)
	}
	if input.ReceiverID == userID {
		return nil, errors.BadRequest("Cannot start a conversation with yourself", nil)
	}

	conversationID := ""
	existing, err := uc.messageRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range existing {
		if m.InvolvedWith(input.ReceiverID) && m.ProductID == input.ProductID {
			conversationID = m.ConversationID
			break
		}
	}
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	profiles := make(map[string]*entity.Participant)
	conv := &entity.Conversation{
		ID:          conversationID,
		Participant: *uc.resolveParticipant(ctx, profiles, input.ReceiverID),
	}

	// A reused thread carries its state; callers tell it apart from a fresh
	// one by the presence of a last message.
	for _, m := range existing {
		if m.ConversationID != conversationID {
			continue
		}
		if conv.LastMessage == nil {
			conv.LastMessage = m
		}
		if m.ReceiverID == userID && !m.IsRead {
			conv.UnreadCount++
		}
	}

	if input.ProductID != "" {
		product, err := uc.productRepo.GetByID(ctx, input.ProductID)
		if err != nil {
			return nil, err
		}
		conv.Product = product
	}

	return conv, nil
}

type SendMessageInput struct {
	ConversationID string
	ReceiverID     string
	ProductID      string
	Body           string
}

// SendMessage appends a plain text message. Offers go through the offer
// use case instead.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	if allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message"); !allowed {
		return nil, errors.TooManyRequests(fmt.Sprintf("Message rate limit exceeded. Try again in %v", waitTime.Round(time.Second)), waitTime)
	}

	if strings.TrimSpace(input.Body) == "" {
		return nil, errors.BadRequest("Message body is required", nil)
	}

	message := &entity.Message{
		ConversationID: input.ConversationID,
		SenderID:       senderID,
		ReceiverID:     input.ReceiverID,
		ProductID:      input.ProductID,
		Body:           input.Body,
		IsRead:         false,
		IsOffer:        false,
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	uc.notifyNewMessage(ctx, message)

	return message, nil
}

// GetMessages returns the conversation's messages, ascending by creation
// time. The caller must be a party to the conversation.
func (uc *ChatUseCase) GetMessages(ctx context.Context, userID, conversationID string) ([]*entity.Message, error) {
	messages, err := uc.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if len(messages) > 0 && !messages[0].InvolvedWith(userID) {
		return nil, errors.Forbidden("You are not a participant in this conversation", nil)
	}

	return messages, nil
}

// MarkConversationRead flips every unread message addressed to the user in
// the conversation and returns how many were updated.
func (uc *ChatUseCase) MarkConversationRead(ctx context.Context, userID, conversationID string) (int, error) {
	return uc.messageRepo.MarkConversationRead(ctx, conversationID, userID)
}

// ListConversations loads the user's full message log and synthesizes the
// conversation list from it.
func (uc *ChatUseCase) ListConversations(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	messages, err := uc.messageRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.BuildConversations(ctx, userID, messages, nil), nil
}

// BuildConversations groups the user's messages by conversation and derives
// the participant, product, last message and unread count for each group.
// messages must be ordered descending by creation time. drafts are freshly
// started conversations with no messages yet; they sort first, then groups
// by last-message time descending. The sort is stable so equal timestamps
// keep their grouping order within one pass.
func (uc *ChatUseCase) BuildConversations(ctx context.Context, userID string, messages []*entity.Message, drafts []*entity.Conversation) []*entity.Conversation {
	profiles := make(map[string]*entity.Participant)
	products := make(map[string]*entity.Product)

	order := make([]string, 0)
	groups := make(map[string][]*entity.Message)
	for _, m := range messages {
		if _, ok := groups[m.ConversationID]; !ok {
			order = append(order, m.ConversationID)
		}
		groups[m.ConversationID] = append(groups[m.ConversationID], m)
	}

	conversations := make([]*entity.Conversation, 0, len(order)+len(drafts))

	for _, d := range drafts {
		if _, ok := groups[d.ID]; ok {
			continue
		}
		conversations = append(conversations, d)
	}

	for _, id := range order {
		group := groups[id]
		last := group[0]

		otherID := last.SenderID
		if otherID == userID {
			otherID = last.ReceiverID
		}

		conv := &entity.Conversation{
			ID:          id,
			Participant: *uc.resolveParticipant(ctx, profiles, otherID),
			LastMessage: last,
		}

		for _, m := range group {
			if m.ProductID != "" {
				conv.Product = uc.resolveProduct(ctx, products, m.ProductID)
				break
			}
		}

		for _, m := range group {
			if m.ReceiverID == userID && !m.IsRead {
				conv.UnreadCount++
			}
		}

		conversations = append(conversations, conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i].LastMessage, conversations[j].LastMessage
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	return conversations
}

// resolveParticipant looks up a profile through the per-run cache. A missing
// or unreachable profile resolves to a placeholder name; aggregation never
// fails on a dangling reference.
func (uc *ChatUseCase) resolveParticipant(ctx context.Context, cache map[string]*entity.Participant, id string) *entity.Participant {
	if p, ok := cache[id]; ok {
		return p
	}

	p := &entity.Participant{ID: id, FullName: entity.PlaceholderName}
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		log.Printf("Failed to resolve profile %s: %v", id, err)
	} else {
		p.FullName = user.FullName
	}

	cache[id] = p
	return p
}

func (uc *ChatUseCase) resolveProduct(ctx context.Context, cache map[string]*entity.Product, id string) *entity.Product {
	if p, ok := cache[id]; ok {
		return p
	}

	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		log.Printf("Failed to resolve product %s: %v", id, err)
	}

	cache[id] = product
	return product
}

// notifyNewMessage writes a best-effort new_message notification for the
// receiver. Failures are logged, never surfaced; the message itself is
// already committed.
func (uc *ChatUseCase) notifyNewMessage(ctx context.Context, message *entity.Message) {
	sender := uc.resolveParticipant(ctx, make(map[string]*entity.Participant), message.SenderID)

	notification := &entity.Notification{
		UserID:    message.ReceiverID,
		Type:      entity.NotificationNewMessage,
		Title:     "New Message",
		Message:   fmt.Sprintf("You have a new message from %s", sender.FullName),
		RelatedID: message.ConversationID,
	}

	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("Failed to create new_message notification for %s: %v", message.ReceiverID, err)
	}
}
