package entity

// Participant is the other party of a conversation, resolved from the
// profiles store. A missing profile resolves to a placeholder name rather
// than failing the aggregation.
type Participant struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// Conversation is a derived view over the messages sharing a ConversationID.
// It is synthesized on every load of the per-user message log and never
// persisted; UnreadCount is always recomputable from the message set.
type Conversation struct {
	ID          string      `json:"id"`
	Participant Participant `json:"participant"`
	Product     *Product    `json:"product,omitempty"`
	LastMessage *Message    `json:"last_message,omitempty"`
	UnreadCount int         `json:"unread_count"`
}
