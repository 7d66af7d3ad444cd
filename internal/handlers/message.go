package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"afribase-messaging/internal/identity"
	"afribase-messaging/internal/middleware"
	"afribase-messaging/internal/models"
	"afribase-messaging/internal/repositories"
	"afribase-messaging/internal/telemetry"
)

// Messaging is the slice of the messaging service the HTTP layer needs.
type Messaging interface {
	Send(ctx context.Context, senderID, recipientID, kind string, payload models.Payload) (models.Message, error)
	MarkRead(ctx context.Context, readerID, conversationKey string) ([]models.Message, error)
	MarkMessageSeen(ctx context.Context, readerID, conversationKey string, messageID int64) (bool, error)
	DeleteMessage(ctx context.Context, requesterID, conversationKey string, messageID int64) error
	History(ctx context.Context, userID, conversationKey string) ([]models.Message, error)
	SetTyping(ctx context.Context, userID, conversationKey string, isTyping bool) error
	PeerTyping(ctx context.Context, userID, conversationKey string) (bool, error)
	Inbox(ctx context.Context, userID string) ([]models.InboxEntry, error)
}

// MessageHandler exposes the messaging core over REST.
type MessageHandler struct {
	svc   Messaging
	audit *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(svc Messaging, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{svc: svc, audit: audit}
}

// SendMessage stores a message addressed to another user.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req struct {
		RecipientID string `json:"recipient_id" binding:"required"`
		Kind        string `json:"kind" binding:"required,oneof=text image"`
		Text        string `json:"text"`
		ObjectRef   string `json:"object_ref"`
		ContentType string `json:"content_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	senderID := c.GetString(middleware.UserIDContextKey)
	msg, err := h.svc.Send(c.Request.Context(), senderID, req.RecipientID, req.Kind, models.Payload{
		Text:        req.Text,
		ObjectRef:   req.ObjectRef,
		ContentType: req.ContentType,
	})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidParticipant):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient"})
		case errors.Is(err, repositories.ErrEmptyPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty payload"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		}
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetConversationMessages returns the ordered message log; also the resync
// path after a dropped websocket stream.
func (h *MessageHandler) GetConversationMessages(c *gin.Context) {
	conversationKey := c.Param("conversation_key")
	userID := c.GetString(middleware.UserIDContextKey)

	msgs, err := h.svc.History(c.Request.Context(), userID, conversationKey)
	if err != nil {
		if errors.Is(err, repositories.ErrNotAuthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// MarkRead transitions every unread message from the peer to seen.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	conversationKey := c.Param("conversation_key")
	readerID := c.GetString(middleware.UserIDContextKey)

	seen, err := h.svc.MarkRead(c.Request.Context(), readerID, conversationKey)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		case errors.Is(err, repositories.ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages read"})
		}
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("conversation %s marked read (%d messages)", conversationKey, len(seen)),
		requestIDFromContext(c), userIDFromContext(c))

	c.JSON(http.StatusOK, gin.H{"seen_count": len(seen)})
}

// MarkMessageSeen records a read receipt for a single message. A message that
// is already seen reports seen=false and changes nothing.
func (h *MessageHandler) MarkMessageSeen(c *gin.Context) {
	conversationKey := c.Param("conversation_key")
	messageID, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	readerID := c.GetString(middleware.UserIDContextKey)
	changed, err := h.svc.MarkMessageSeen(c.Request.Context(), readerID, conversationKey, messageID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		case errors.Is(err, repositories.ErrNotRecipient):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the recipient can mark a message seen"})
		case errors.Is(err, repositories.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark message seen"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"seen": changed})
}

// DeleteMessage removes a message permanently; sender only.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	conversationKey := c.Param("conversation_key")
	messageID, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	requesterID := c.GetString(middleware.UserIDContextKey)
	if err := h.svc.DeleteMessage(c.Request.Context(), requesterID, conversationKey, messageID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the sender can delete a message"})
		case errors.Is(err, repositories.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		}
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("message %d deleted from conversation %s", messageID, conversationKey),
		requestIDFromContext(c), userIDFromContext(c))

	c.Status(http.StatusNoContent)
}

// SetTyping records a typing signal for the conversation.
func (h *MessageHandler) SetTyping(c *gin.Context) {
	conversationKey := c.Param("conversation_key")

	var req struct {
		IsTyping *bool `json:"is_typing" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString(middleware.UserIDContextKey)
	if err := h.svc.SetTyping(c.Request.Context(), userID, conversationKey, *req.IsTyping); err != nil {
		if errors.Is(err, repositories.ErrNotAuthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record typing signal"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetTyping reports whether the peer is currently typing.
func (h *MessageHandler) GetTyping(c *gin.Context) {
	conversationKey := c.Param("conversation_key")
	userID := c.GetString(middleware.UserIDContextKey)

	typing, err := h.svc.PeerTyping(c.Request.Context(), userID, conversationKey)
	if err != nil {
		if errors.Is(err, repositories.ErrNotAuthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read typing state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"peer_typing": typing})
}
