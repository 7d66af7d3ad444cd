package models

import "time"

// Message kinds.
const (
	KindText  = "text"
	KindImage = "image"
)

// Delivery states. The transition is one-way: sent -> seen.
const (
	StateSent = "sent"
	StateSeen = "seen"
)

// Message represents a single message inside a conversation. Content is
// immutable after creation; only the delivery state may change.
type Message struct {
	ID              int64     `db:"id" json:"id"`
	ConversationKey string    `db:"conversation_key" json:"conversation_key"`
	Seq             int64     `db:"seq" json:"seq"`
	SenderID        string    `db:"sender_id" json:"sender_id"`
	Kind            string    `db:"kind" json:"kind"`
	Body            string    `db:"body" json:"body,omitempty"`
	ObjectRef       string    `db:"object_ref" json:"object_ref,omitempty"`
	ContentType     string    `db:"content_type" json:"content_type,omitempty"`
	State           string    `db:"state" json:"state"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Payload carries the sender-supplied content of a message. Text messages use
// Text; image messages carry an object-storage reference plus content type.
type Payload struct {
	Text        string `json:"text,omitempty"`
	ObjectRef   string `json:"object_ref,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}
