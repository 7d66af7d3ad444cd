package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"afribase-messaging/internal/identity"
	"afribase-messaging/internal/models"
)

// MessageRepository is the append-only per-conversation message log.
type MessageRepository interface {
	Append(ctx context.Context, conversationKey, senderID, kind string, payload models.Payload) (models.Message, error)
	Get(ctx context.Context, conversationKey string, messageID int64) (models.Message, error)
	MarkSeen(ctx context.Context, conversationKey string, messageID int64, readerID string) (bool, error)
	MarkAllSeen(ctx context.Context, conversationKey, readerID string) ([]models.Message, error)
	Delete(ctx context.Context, conversationKey string, messageID int64, requesterID string) error
	List(ctx context.Context, conversationKey string) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, conversation_key, seq, sender_id, kind, body, object_ref, content_type, state, created_at`

// Append stores a message with the next per-conversation sequence number.
// The conversation row is created implicitly on first append; bumping its
// sequence counter takes the row lock, which serializes appends within one
// conversation while leaving other conversations untouched.
func (r *MessageRepo) Append(ctx context.Context, conversationKey, senderID, kind string, payload models.Payload) (models.Message, error) {
	switch kind {
	case models.KindText:
		if strings.TrimSpace(payload.Text) == "" {
			return models.Message{}, ErrEmptyPayload
		}
	case models.KindImage:
		if payload.ObjectRef == "" {
			return models.Message{}, ErrEmptyPayload
		}
	default:
		return models.Message{}, ErrEmptyPayload
	}

	userA, userB, err := identity.Participants(conversationKey)
	if err != nil {
		return models.Message{}, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowxContext(ctx,
		`INSERT INTO conversations (key, user_a, user_b, last_seq) VALUES ($1, $2, $3, 1)
         ON CONFLICT (key) DO UPDATE SET last_seq = conversations.last_seq + 1
         RETURNING last_seq`,
		conversationKey, userA, userB).Scan(&seq); err != nil {
		return models.Message{}, err
	}

	var msg models.Message
	if err := tx.QueryRowxContext(ctx,
		`INSERT INTO messages (conversation_key, seq, sender_id, kind, body, object_ref, content_type)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING `+messageColumns,
		conversationKey, seq, senderID, kind, payload.Text, payload.ObjectRef, payload.ContentType).
		StructScan(&msg); err != nil {
		return models.Message{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// Get retrieves a single message scoped to its conversation.
func (r *MessageRepo) Get(ctx context.Context, conversationKey string, messageID int64) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT `+messageColumns+` FROM messages WHERE id=$1 AND conversation_key=$2`,
		messageID, conversationKey)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// MarkSeen transitions a message to seen. Only the recipient may do so; a
// message already seen is a no-op. The transition never reverts.
func (r *MessageRepo) MarkSeen(ctx context.Context, conversationKey string, messageID int64, readerID string) (bool, error) {
	msg, err := r.Get(ctx, conversationKey, messageID)
	if err != nil {
		return false, err
	}
	if msg.SenderID == readerID {
		return false, ErrNotRecipient
	}
	if msg.State == models.StateSeen {
		return false, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET state=$1 WHERE id=$2 AND conversation_key=$3 AND state=$4`,
		models.StateSeen, messageID, conversationKey, models.StateSent)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkAllSeen transitions every sent message not authored by the reader and
// returns the affected messages. The conversation must exist.
func (r *MessageRepo) MarkAllSeen(ctx context.Context, conversationKey, readerID string) ([]models.Message, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM conversations WHERE key=$1)`, conversationKey); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrConversationNotFound
	}

	rows, err := r.db.QueryxContext(ctx,
		`UPDATE messages SET state=$1
         WHERE conversation_key=$2 AND sender_id<>$3 AND state=$4
         RETURNING `+messageColumns,
		models.StateSeen, conversationKey, readerID, models.StateSent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.StructScan(&msg); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// Delete removes a message permanently. Only the sender may delete; surviving
// sequence numbers are not renumbered.
func (r *MessageRepo) Delete(ctx context.Context, conversationKey string, messageID int64, requesterID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE id=$1 AND conversation_key=$2 AND sender_id=$3`,
		messageID, conversationKey, requesterID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := r.Get(ctx, conversationKey, messageID); err != nil {
		return err
	}
	return ErrNotAuthorized
}

// List returns the conversation's messages ordered by (timestamp, seq)
// ascending; the sequence number breaks timestamp ties.
func (r *MessageRepo) List(ctx context.Context, conversationKey string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages
         WHERE conversation_key=$1
         ORDER BY created_at ASC, seq ASC`,
		conversationKey)
	return msgs, err
}
