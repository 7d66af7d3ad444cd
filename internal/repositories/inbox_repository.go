package repositories

import (
	"context"
	"database/sql"
	"errors"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"afribase-messaging/internal/identity"
	"afribase-messaging/internal/models"
)

// InboxRepository maintains the derived per-user inbox entries.
type InboxRepository interface {
	Recompute(ctx context.Context, userID, conversationKey string) (*models.InboxEntry, error)
	List(ctx context.Context, userID string) ([]models.InboxEntry, error)
}

// InboxRepo is a sqlx-backed implementation of InboxRepository.
type InboxRepo struct {
	db *sqlx.DB
}

// NewInboxRepo constructs an InboxRepo.
func NewInboxRepo(db *sqlx.DB) *InboxRepo {
	return &InboxRepo{db: db}
}

const previewLimit = 140

// Recompute rewrites the single inbox entry for (userID, conversationKey) from
// the authoritative message log. When no messages survive, the entry is
// removed and nil is returned.
func (r *InboxRepo) Recompute(ctx context.Context, userID, conversationKey string) (*models.InboxEntry, error) {
	peerID, err := identity.Peer(conversationKey, userID)
	if err != nil {
		return nil, err
	}

	var last models.Message
	err = r.db.GetContext(ctx, &last,
		`SELECT `+messageColumns+` FROM messages
         WHERE conversation_key=$1
         ORDER BY created_at DESC, seq DESC
         LIMIT 1`,
		conversationKey)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = r.db.ExecContext(ctx,
			`DELETE FROM inbox_entries WHERE user_id=$1 AND conversation_key=$2`,
			userID, conversationKey)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	var unread int
	if err := r.db.GetContext(ctx, &unread,
		`SELECT COUNT(*) FROM messages
         WHERE conversation_key=$1 AND sender_id=$2 AND state=$3`,
		conversationKey, peerID, models.StateSent); err != nil {
		return nil, err
	}

	entry := models.InboxEntry{
		UserID:          userID,
		ConversationKey: conversationKey,
		PeerID:          peerID,
		LastMessageID:   last.ID,
		LastSenderID:    last.SenderID,
		LastKind:        last.Kind,
		LastPreview:     preview(last),
		UnreadCount:     unread,
		LastActivity:    last.CreatedAt,
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO inbox_entries
            (user_id, conversation_key, peer_id, last_message_id, last_sender_id, last_kind, last_preview, unread_count, last_activity)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
         ON CONFLICT (user_id, conversation_key) DO UPDATE SET
            peer_id = EXCLUDED.peer_id,
            last_message_id = EXCLUDED.last_message_id,
            last_sender_id = EXCLUDED.last_sender_id,
            last_kind = EXCLUDED.last_kind,
            last_preview = EXCLUDED.last_preview,
            unread_count = EXCLUDED.unread_count,
            last_activity = EXCLUDED.last_activity`,
		entry.UserID, entry.ConversationKey, entry.PeerID, entry.LastMessageID,
		entry.LastSenderID, entry.LastKind, entry.LastPreview, entry.UnreadCount, entry.LastActivity)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns the user's inbox, unread conversations first. Within each tier
// entries are ordered by most recent activity.
func (r *InboxRepo) List(ctx context.Context, userID string) ([]models.InboxEntry, error) {
	var entries []models.InboxEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT user_id, conversation_key, peer_id, last_message_id, last_sender_id,
                last_kind, last_preview, unread_count, last_activity
         FROM inbox_entries
         WHERE user_id=$1
         ORDER BY (unread_count > 0) DESC, last_activity DESC`,
		userID)
	return entries, err
}

func preview(msg models.Message) string {
	if msg.Kind == models.KindImage {
		return "image"
	}
	body := msg.Body
	if len(body) <= previewLimit {
		return body
	}
	// Back up to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}
