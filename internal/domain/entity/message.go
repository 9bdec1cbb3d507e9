package entity

import "time"

type OfferStatus string

const (
	OfferStatusNone     OfferStatus = ""
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusDeclined OfferStatus = "declined"
)

// Message is a single row of the flat chat log. Immutable once written except
// for IsRead and OfferStatus. Conversations are never stored; they are derived
// from messages sharing a ConversationID.
type Message struct {
	ID             string      `json:"id" firestore:"id"`
	ConversationID string      `json:"conversation_id" firestore:"conversationId"`
	SenderID       string      `json:"sender_id" firestore:"senderId"`
	ReceiverID     string      `json:"receiver_id" firestore:"receiverId"`
	Participants   []string    `json:"-" firestore:"participants"` // [sender, receiver], query key
	ProductID      string      `json:"product_id,omitempty" firestore:"productId,omitempty"`
	Body           string      `json:"body" firestore:"body"`
	IsRead         bool        `json:"is_read" firestore:"isRead"`
	IsOffer        bool        `json:"is_offer" firestore:"isOffer"`
	OfferStatus    OfferStatus `json:"offer_status,omitempty" firestore:"offerStatus,omitempty"`
	CreatedAt      time.Time   `json:"created_at" firestore:"createdAt"`
}

// InvolvedWith reports whether userID is a party to this message.
func (m *Message) InvolvedWith(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

type MessageEventKind string

const (
	MessageInserted MessageEventKind = "inserted"
	MessageUpdated  MessageEventKind = "updated"
)

// MessageEvent is one change pushed by the store's realtime feed. Delivery is
// at-least-once and may be out of order within a conversation; consumers must
// dedupe by message id and re-sort.
type MessageEvent struct {
	Kind    MessageEventKind
	Message *Message
}
