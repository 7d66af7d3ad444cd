package models

import "time"

// Conversation is the durable record of a one-to-one conversation. LastSeq is
// the sequence counter bumped under the row lock on every append.
type Conversation struct {
	Key       string    `db:"key" json:"key"`
	UserA     string    `db:"user_a" json:"user_a"`
	UserB     string    `db:"user_b" json:"user_b"`
	LastSeq   int64     `db:"last_seq" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// InboxEntry is the derived per-user summary of a conversation. It is never
// authored directly; it is recomputed from the message log on every change.
type InboxEntry struct {
	UserID          string    `db:"user_id" json:"-"`
	ConversationKey string    `db:"conversation_key" json:"conversation_key"`
	PeerID          string    `db:"peer_id" json:"peer_id"`
	LastMessageID   int64     `db:"last_message_id" json:"last_message_id"`
	LastSenderID    string    `db:"last_sender_id" json:"last_sender_id"`
	LastKind        string    `db:"last_kind" json:"last_kind"`
	LastPreview     string    `db:"last_preview" json:"last_preview"`
	UnreadCount     int       `db:"unread_count" json:"unread_count"`
	LastActivity    time.Time `db:"last_activity" json:"last_activity"`
}
