package models

// Event types pushed to websocket subscribers.
const (
	EventMessage     = "message"
	EventSeen        = "seen"
	EventDeleted     = "deleted"
	EventTyping      = "typing"
	EventInboxUpdate = "inbox_update"
)

// ConversationEvent is broadcast to subscribers of a single conversation.
type ConversationEvent struct {
	Type       string   `json:"type"`
	Message    *Message `json:"message,omitempty"`
	MessageID  int64    `json:"message_id,omitempty"`
	MessageIDs []int64  `json:"message_ids,omitempty"`
	UserID     string   `json:"user_id,omitempty"`
	IsTyping   bool     `json:"is_typing,omitempty"`
}

// InboxEvent is broadcast to a user's inbox stream. Entry is nil when the
// conversation no longer has any messages and its entry was removed.
type InboxEvent struct {
	Type            string      `json:"type"`
	ConversationKey string      `json:"conversation_key"`
	Entry           *InboxEntry `json:"entry,omitempty"`
}
