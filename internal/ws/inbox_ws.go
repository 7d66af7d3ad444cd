package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"afribase-messaging/internal/middleware"
	"afribase-messaging/internal/observability"
)

// InboxWebSocketHandler streams inbox updates to a single user.
type InboxWebSocketHandler struct {
	hub       *Hub
	validator *middleware.TokenValidator
}

// NewInboxWebSocketHandler constructs the handler.
func NewInboxWebSocketHandler(hub *Hub, validator *middleware.TokenValidator) *InboxWebSocketHandler {
	return &InboxWebSocketHandler{hub: hub, validator: validator}
}

// Handle upgrades the connection and registers the client on the
// authenticated user's inbox stream.
func (h *InboxWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("afribase-messaging/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := userIDFromRequest(c, h.validator)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := connInfoFromRequest(c.Request, userID, span.SpanContext().TraceID().String())
	client := NewClient(conn, info)
	h.hub.AddInboxClient(userID, client)

	observability.IncWSActive("inbox")
	publishLifecycle(ctx, "inbox", userID, "ws_connect", "", info)

	go func() {
		var closeReason string
		defer func() {
			client.Close()
			h.hub.RemoveInboxClient(userID, client)
			observability.DecWSActive("inbox")
			publishLifecycle(ctx, "inbox", userID, "ws_disconnect", closeReason, info)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					publishLifecycle(ctx, "inbox", userID, "ws_error", closeReason, info)
				}
				return
			}
		}
	}()
}
