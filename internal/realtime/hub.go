package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/internal/usecase"
	"farmlink/pkg/logger"
)

// Hub owns one Session per connected user and pumps the store's change feeds
// into it. Sessions live for exactly as long as the connection.
type Hub struct {
	chatUc           *usecase.ChatUseCase
	messageRepo      repository.MessageRepository
	notificationRepo repository.NotificationRepository
	pusher           Pusher

	mu       sync.Mutex
	sessions map[string]*liveSession
}

type liveSession struct {
	session *Session
	cancel  context.CancelFunc
}

func NewHub(
	chatUc *usecase.ChatUseCase,
	messageRepo repository.MessageRepository,
	notificationRepo repository.NotificationRepository,
	pusher Pusher,
) *Hub {
	return &Hub{
		chatUc:           chatUc,
		messageRepo:      messageRepo,
		notificationRepo: notificationRepo,
		pusher:           pusher,
		sessions:         make(map[string]*liveSession),
	}
}

// Connect starts a session for the user and begins consuming the message and
// notification feeds on its behalf. A reconnect replaces the old session.
func (h *Hub) Connect(userID string) {
	ctx, cancel := context.WithCancel(context.Background())
	session := NewSession(userID, h.chatUc, h.messageRepo, h.pusher)

	h.mu.Lock()
	if old, ok := h.sessions[userID]; ok {
		old.session.Close()
		old.cancel()
	}
	h.sessions[userID] = &liveSession{session: session, cancel: cancel}
	h.mu.Unlock()

	go h.consumeMessages(ctx, session)
	go h.consumeNotifications(ctx, session)

	// Seed the client with its current conversation list.
	go session.refreshConversations(ctx)
}

// Disconnect tears the user's session down and stops its feed consumers.
func (h *Hub) Disconnect(userID string) {
	h.mu.Lock()
	live, ok := h.sessions[userID]
	if ok {
		delete(h.sessions, userID)
	}
	h.mu.Unlock()

	if ok {
		live.session.Close()
		live.cancel()
	}
}

// Session returns the user's live session, or nil when offline.
func (h *Hub) Session(userID string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if live, ok := h.sessions[userID]; ok {
		return live.session
	}
	return nil
}

// AddDraft attaches a freshly started conversation to the user's session so
// it renders before its first message exists.
func (h *Hub) AddDraft(userID string, conv *entity.Conversation) {
	if session := h.Session(userID); session != nil {
		session.AddDraft(conv)
	}
}

type inboundCommand struct {
	Action         string `json:"action"`
	ConversationID string `json:"conversation_id"`
}

// HandleInbound routes a frame the client sent upstream. Unknown actions are
// logged and dropped.
func (h *Hub) HandleInbound(userID string, data []byte) {
	session := h.Session(userID)
	if session == nil {
		return
	}

	var cmd inboundCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		logger.Warn("Malformed frame from %s: %v", userID, err)
		return
	}

	switch cmd.Action {
	case "open_conversation":
		if err := session.OpenConversation(context.Background(), cmd.ConversationID); err != nil {
			logger.Error("Failed to open conversation %s for %s: %v", cmd.ConversationID, userID, err)
		}
	case "close_conversation":
		session.CloseConversation()
	case "ping":
		if payload, err := json.Marshal(Frame{Type: "pong"}); err == nil {
			h.pusher.SendToUser(userID, payload)
		}
	default:
		logger.Warn("Unknown action %q from %s", cmd.Action, userID)
	}
}

// StartPriceFeed relays market price inserts and updates to every connected
// session over a single global subscription. Clients upsert rows by id.
func (h *Hub) StartPriceFeed(ctx context.Context, priceRepo repository.MarketPriceRepository) {
	go func() {
		prices, err := priceRepo.Subscribe(ctx)
		if err != nil {
			logger.Error("Failed to subscribe to market prices: %v", err)
			return
		}

		for price := range prices {
			payload, err := json.Marshal(Frame{Type: "market_price", Data: price})
			if err != nil {
				continue
			}

			h.mu.Lock()
			userIDs := make([]string, 0, len(h.sessions))
			for userID := range h.sessions {
				userIDs = append(userIDs, userID)
			}
			h.mu.Unlock()

			for _, userID := range userIDs {
				h.pusher.SendToUser(userID, payload)
			}
		}
	}()
}

func (h *Hub) consumeMessages(ctx context.Context, session *Session) {
	events, err := h.messageRepo.Subscribe(ctx, session.userID)
	if err != nil {
		logger.Error("Failed to subscribe to messages for %s: %v", session.userID, err)
		return
	}

	// Events apply in arrival order; the session re-sorts per conversation
	// because the feed does not guarantee order within one.
	for event := range events {
		session.ApplyMessageEvent(ctx, event)
	}
}

func (h *Hub) consumeNotifications(ctx context.Context, session *Session) {
	notifications, err := h.notificationRepo.Subscribe(ctx, session.userID)
	if err != nil {
		logger.Error("Failed to subscribe to notifications for %s: %v", session.userID, err)
		return
	}

	for notification := range notifications {
		session.ApplyNotification(notification)
	}
}
