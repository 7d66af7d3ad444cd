package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afribase-messaging/internal/middleware"
	"afribase-messaging/internal/models"
)

// Inbox returns the authenticated user's derived inbox, unread conversations
// first.
func (h *MessageHandler) Inbox(c *gin.Context) {
	userID := c.GetString(middleware.UserIDContextKey)

	entries, err := h.svc.Inbox(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inbox"})
		return
	}
	if entries == nil {
		entries = []models.InboxEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
