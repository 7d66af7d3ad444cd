// Package service hosts the messaging facade. All cross-component invariants
// live here: participant authorization, typing-clears-on-send, inbox
// recomputation, and live-update fan-out.
package service

import (
	"context"

	"afribase-messaging/internal/identity"
	"afribase-messaging/internal/logger"
	"afribase-messaging/internal/models"
	"afribase-messaging/internal/observability"
	"afribase-messaging/internal/presence"
	"afribase-messaging/internal/repositories"
)

// Broadcaster pushes live updates to websocket subscribers. Satisfied by
// ws.Hub.
type Broadcaster interface {
	BroadcastConversation(conversationKey string, event models.ConversationEvent)
	BroadcastInbox(userID string, event models.InboxEvent)
}

// MessagingService orchestrates the message store, presence tracker, and
// inbox index.
type MessagingService struct {
	messages repositories.MessageRepository
	inbox    repositories.InboxRepository
	presence presence.Tracker
	hub      Broadcaster
}

// New constructs a MessagingService.
func New(messages repositories.MessageRepository, inbox repositories.InboxRepository, tracker presence.Tracker, hub Broadcaster) *MessagingService {
	return &MessagingService{
		messages: messages,
		inbox:    inbox,
		presence: tracker,
		hub:      hub,
	}
}

// Send appends a message to the conversation between sender and recipient,
// creating the conversation implicitly on first contact. The sender's typing
// signal is cleared immediately, both inboxes are recomputed, and subscribers
// are notified.
func (s *MessagingService) Send(ctx context.Context, senderID, recipientID, kind string, payload models.Payload) (models.Message, error) {
	conversationKey, err := identity.Key(senderID, recipientID)
	if err != nil {
		return models.Message{}, err
	}

	msg, err := s.messages.Append(ctx, conversationKey, senderID, kind, payload)
	if err != nil {
		return models.Message{}, err
	}

	// Sending supersedes any typing signal; the indicator must vanish now,
	// not at TTL expiry.
	if err := s.presence.SetTyping(ctx, conversationKey, senderID, false); err != nil {
		logger.Warn().Err(err).Str("conversation", conversationKey).Msg("clear typing signal failed")
	}

	s.refreshInboxes(ctx, conversationKey, senderID, recipientID)
	s.hub.BroadcastConversation(conversationKey, models.ConversationEvent{
		Type:    models.EventMessage,
		Message: &msg,
	})

	observability.IncMessageSent(kind)
	observability.EmitEvent(ctx, "message_events.sent", observability.Envelope{
		Type:    "message_events",
		Name:    "message_sent",
		Payload: msg,
	}, nil)

	return msg, nil
}

// MarkRead transitions every sent message in the conversation not authored by
// the reader to seen, as one logical batch. Idempotent per message: a second
// call finds nothing to transition and changes nothing.
func (s *MessagingService) MarkRead(ctx context.Context, readerID, conversationKey string) ([]models.Message, error) {
	if !identity.Includes(conversationKey, readerID) {
		return nil, repositories.ErrNotAuthorized
	}

	seen, err := s.messages.MarkAllSeen(ctx, conversationKey, readerID)
	if err != nil {
		return nil, err
	}
	if len(seen) == 0 {
		return nil, nil
	}

	userA, userB, err := identity.Participants(conversationKey)
	if err != nil {
		return nil, err
	}
	s.refreshInboxes(ctx, conversationKey, userA, userB)

	ids := make([]int64, 0, len(seen))
	for _, msg := range seen {
		ids = append(ids, msg.ID)
	}
	s.hub.BroadcastConversation(conversationKey, models.ConversationEvent{
		Type:       models.EventSeen,
		MessageIDs: ids,
		UserID:     readerID,
	})

	observability.AddMessagesSeen(len(seen))
	return seen, nil
}

// MarkMessageSeen transitions a single message to seen, the per-message read
// receipt. Idempotent: a message already seen reports false with no error and
// triggers no notifications.
func (s *MessagingService) MarkMessageSeen(ctx context.Context, readerID, conversationKey string, messageID int64) (bool, error) {
	if !identity.Includes(conversationKey, readerID) {
		return false, repositories.ErrNotAuthorized
	}

	changed, err := s.messages.MarkSeen(ctx, conversationKey, messageID, readerID)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	userA, userB, err := identity.Participants(conversationKey)
	if err != nil {
		return false, err
	}
	s.refreshInboxes(ctx, conversationKey, userA, userB)

	s.hub.BroadcastConversation(conversationKey, models.ConversationEvent{
		Type:       models.EventSeen,
		MessageIDs: []int64{messageID},
		UserID:     readerID,
	})

	observability.AddMessagesSeen(1)
	return true, nil
}

// DeleteMessage removes a message permanently. Only the sender may delete.
func (s *MessagingService) DeleteMessage(ctx context.Context, requesterID, conversationKey string, messageID int64) error {
	if !identity.Includes(conversationKey, requesterID) {
		return repositories.ErrNotAuthorized
	}

	if err := s.messages.Delete(ctx, conversationKey, messageID, requesterID); err != nil {
		return err
	}

	userA, userB, err := identity.Participants(conversationKey)
	if err != nil {
		return err
	}
	s.refreshInboxes(ctx, conversationKey, userA, userB)
	s.hub.BroadcastConversation(conversationKey, models.ConversationEvent{
		Type:      models.EventDeleted,
		MessageID: messageID,
		UserID:    requesterID,
	})

	observability.IncMessageDeleted()
	return nil
}

// History returns the conversation's full ordered message log. This is also
// the resynchronization path after a dropped live stream.
func (s *MessagingService) History(ctx context.Context, userID, conversationKey string) ([]models.Message, error) {
	if !identity.Includes(conversationKey, userID) {
		return nil, repositories.ErrNotAuthorized
	}
	return s.messages.List(ctx, conversationKey)
}

// SetTyping records the user's typing signal and notifies conversation
// subscribers. The broadcast is droppable: a lost typing frame is harmless.
func (s *MessagingService) SetTyping(ctx context.Context, userID, conversationKey string, isTyping bool) error {
	if !identity.Includes(conversationKey, userID) {
		return repositories.ErrNotAuthorized
	}

	if err := s.presence.SetTyping(ctx, conversationKey, userID, isTyping); err != nil {
		return err
	}

	s.hub.BroadcastConversation(conversationKey, models.ConversationEvent{
		Type:     models.EventTyping,
		UserID:   userID,
		IsTyping: isTyping,
	})
	observability.IncTypingSignal(isTyping)
	return nil
}

// PeerTyping reports whether the other participant is currently typing.
func (s *MessagingService) PeerTyping(ctx context.Context, userID, conversationKey string) (bool, error) {
	peerID, err := identity.Peer(conversationKey, userID)
	if err != nil {
		return false, repositories.ErrNotAuthorized
	}
	return s.presence.IsTyping(ctx, conversationKey, peerID)
}

// Inbox returns the user's derived inbox entries, unread conversations first.
func (s *MessagingService) Inbox(ctx context.Context, userID string) ([]models.InboxEntry, error) {
	return s.inbox.List(ctx, userID)
}

func (s *MessagingService) refreshInboxes(ctx context.Context, conversationKey string, users ...string) {
	for _, userID := range users {
		entry, err := s.inbox.Recompute(ctx, userID, conversationKey)
		if err != nil {
			logger.Error().Err(err).
				Str("conversation", conversationKey).
				Str("user_id", userID).
				Msg("inbox recompute failed")
			continue
		}
		s.hub.BroadcastInbox(userID, models.InboxEvent{
			Type:            models.EventInboxUpdate,
			ConversationKey: conversationKey,
			Entry:           entry,
		})
	}
}
