package ws

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"afribase-messaging/internal/identity"
	"afribase-messaging/internal/middleware"
	"afribase-messaging/internal/observability"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ConversationWebSocketHandler streams live conversation events to
// participants.
type ConversationWebSocketHandler struct {
	hub       *Hub
	validator *middleware.TokenValidator
}

// NewConversationWebSocketHandler constructs the handler.
func NewConversationWebSocketHandler(hub *Hub, validator *middleware.TokenValidator) *ConversationWebSocketHandler {
	return &ConversationWebSocketHandler{hub: hub, validator: validator}
}

// Handle upgrades the connection and registers the client in the
// conversation's room. Only participants may subscribe.
func (h *ConversationWebSocketHandler) Handle(c *gin.Context) {
	conversationKey := c.Param("conversation_key")

	ctx, span := otel.Tracer("afribase-messaging/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := userIDFromRequest(c, h.validator)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if !identity.Includes(conversationKey, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := connInfoFromRequest(c.Request, userID, span.SpanContext().TraceID().String())
	client := NewClient(conn, info)
	h.hub.AddConversationClient(conversationKey, client)

	observability.IncWSActive("conversation")
	publishLifecycle(ctx, "conversation", conversationKey, "ws_connect", "", info)

	go func() {
		var closeReason string
		defer func() {
			client.Close()
			h.hub.RemoveConversationClient(conversationKey, client)
			observability.DecWSActive("conversation")
			publishLifecycle(ctx, "conversation", conversationKey, "ws_disconnect", closeReason, info)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					publishLifecycle(ctx, "conversation", conversationKey, "ws_error", closeReason, info)
				}
				return
			}
		}
	}()
}

// userIDFromRequest validates the token carried either in the Authorization
// header or, for browser websocket clients, the token query parameter.
func userIDFromRequest(c *gin.Context, validator *middleware.TokenValidator) (string, error) {
	token := c.GetHeader("Authorization")
	if token != "" {
		parts := strings.SplitN(token, " ", 2)
		if len(parts) == 2 {
			token = parts[1]
		}
	} else {
		token = c.Query("token")
	}
	return validator.Validate(token)
}
