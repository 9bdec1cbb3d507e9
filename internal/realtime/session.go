package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/internal/usecase"
)

// Pusher delivers a payload to a connected user. Satisfied by the WebSocket
// manager; tests substitute a recorder.
type Pusher interface {
	SendToUser(userID string, payload []byte)
}

// Frame is the envelope for everything pushed down a session's connection.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Session is one user's live view: the conversation list, the currently open
// conversation's message list, and any freshly started conversations that
// have no messages yet. Store change events are folded in as idempotent
// patches; a pushed echo of the user's own write must not duplicate state.
type Session struct {
	userID      string
	chatUc      *usecase.ChatUseCase
	messageRepo repository.MessageRepository
	pusher      Pusher

	mu       sync.Mutex
	openConv string
	messages []*entity.Message
	drafts   []*entity.Conversation
	closed   bool
}

func NewSession(userID string, chatUc *usecase.ChatUseCase, messageRepo repository.MessageRepository, pusher Pusher) *Session {
	return &Session{
		userID:      userID,
		chatUc:      chatUc,
		messageRepo: messageRepo,
		pusher:      pusher,
	}
}

// OpenConversation loads the conversation's messages, marks them read and
// makes it the target of subsequent merge events. The conversation becomes
// the merge target before the load so an insert delivered mid-load is kept;
// the loaded list is folded into whatever arrived in the meantime.
func (s *Session) OpenConversation(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	s.openConv = conversationID
	s.messages = nil
	s.mu.Unlock()

	messages, err := s.chatUc.GetMessages(ctx, s.userID, conversationID)
	if err != nil {
		s.mu.Lock()
		if s.openConv == conversationID {
			s.openConv = ""
			s.messages = nil
		}
		s.mu.Unlock()
		return err
	}

	if _, err := s.chatUc.MarkConversationRead(ctx, s.userID, conversationID); err != nil {
		log.Printf("Failed to mark conversation %s read: %v", conversationID, err)
	}

	s.mu.Lock()
	if s.openConv != conversationID {
		// Closed or switched while the load was in flight.
		s.mu.Unlock()
		return nil
	}
	for _, m := range messages {
		if !s.hasMessageLocked(m.ID) {
			s.messages = append(s.messages, m)
		}
	}
	s.sortMessagesLocked()
	snapshot := s.messages
	s.mu.Unlock()

	s.push("messages", snapshot)
	return nil
}

// CloseConversation stops merge events from being applied to the transient
// message list. In-flight writes are unaffected.
func (s *Session) CloseConversation() {
	s.mu.Lock()
	s.openConv = ""
	s.messages = nil
	s.mu.Unlock()
}

// AddDraft registers a freshly started conversation. It renders at the top
// of the list until its first message arrives through the change feed.
func (s *Session) AddDraft(conv *entity.Conversation) {
	s.mu.Lock()
	for _, d := range s.drafts {
		if d.ID == conv.ID {
			s.mu.Unlock()
			return
		}
	}
	s.drafts = append(s.drafts, conv)
	s.mu.Unlock()
}

// Close stops the session from applying any further events.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// ApplyMessageEvent folds one store change into the session. Inserts are
// deduplicated by message id; the open conversation's list is re-sorted
// after every application because the feed may deliver out of order within
// a conversation. The conversation list is re-derived on every event.
func (s *Session) ApplyMessageEvent(ctx context.Context, event entity.MessageEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	m := event.Message
	inOpen := s.openConv != "" && m.ConversationID == s.openConv
	markRead := false

	if inOpen {
		switch event.Kind {
		case entity.MessageInserted:
			if !s.hasMessageLocked(m.ID) {
				s.messages = append(s.messages, m)
				s.sortMessagesLocked()
				markRead = m.ReceiverID == s.userID && !m.IsRead
			}
		case entity.MessageUpdated:
			for i, existing := range s.messages {
				if existing.ID == m.ID {
					s.messages[i] = m
					break
				}
			}
			s.sortMessagesLocked()
		}
	}

	// A draft becomes a real conversation with its first message.
	for i, d := range s.drafts {
		if d.ID == m.ConversationID {
			s.drafts = append(s.drafts[:i], s.drafts[i+1:]...)
			break
		}
	}

	messages := s.messages
	openConv := s.openConv
	s.mu.Unlock()

	if inOpen {
		s.push("messages", messages)
	}
	if markRead {
		if _, err := s.chatUc.MarkConversationRead(ctx, s.userID, openConv); err != nil {
			log.Printf("Failed to mark conversation %s read: %v", openConv, err)
		}
	}

	s.refreshConversations(ctx)
}

// ApplyNotification pushes a freshly inserted notification to the client.
func (s *Session) ApplyNotification(notification *entity.Notification) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.push("notification", notification)
}

// Messages returns a snapshot of the open conversation's message list.
func (s *Session) Messages() []*entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]*entity.Message, len(s.messages))
	copy(snapshot, s.messages)
	return snapshot
}

// refreshConversations re-derives the conversation list from the store and
// pushes it. Held drafts are layered on top.
func (s *Session) refreshConversations(ctx context.Context) {
	messages, err := s.messageRepo.ListForUser(ctx, s.userID)
	if err != nil {
		log.Printf("Failed to refresh conversations for %s: %v", s.userID, err)
		return
	}

	s.mu.Lock()
	drafts := make([]*entity.Conversation, len(s.drafts))
	copy(drafts, s.drafts)
	s.mu.Unlock()

	conversations := s.chatUc.BuildConversations(ctx, s.userID, messages, drafts)
	s.push("conversations", conversations)
}

func (s *Session) hasMessageLocked(id string) bool {
	for _, m := range s.messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) sortMessagesLocked() {
	sort.SliceStable(s.messages, func(i, j int) bool {
		return s.messages[i].CreatedAt.Before(s.messages[j].CreatedAt)
	})
}

func (s *Session) push(frameType string, data interface{}) {
	payload, err := json.Marshal(Frame{Type: frameType, Data: data})
	if err != nil {
		log.Printf("Failed to marshal %s frame: %v", frameType, err)
		return
	}
	s.pusher.SendToUser(s.userID, payload)
}
