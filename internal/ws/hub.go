package ws

import (
	"context"
	"encoding/json"
	"sync"

	"afribase-messaging/internal/logger"
	"afribase-messaging/internal/models"
)

// Hub maintains active websocket rooms: one per conversation and one per-user
// inbox stream.
type Hub struct {
	conversations map[string]map[*Client]bool
	inboxes       map[string]map[*Client]bool
	mu            sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conversations: make(map[string]map[*Client]bool),
		inboxes:       make(map[string]map[*Client]bool),
	}
}

// AddConversationClient registers a subscriber to a conversation room.
func (h *Hub) AddConversationClient(conversationKey string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conversations[conversationKey]; !ok {
		h.conversations[conversationKey] = make(map[*Client]bool)
	}
	h.conversations[conversationKey][c] = true
}

// RemoveConversationClient removes a conversation subscriber.
func (h *Hub) RemoveConversationClient(conversationKey string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.conversations[conversationKey]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.conversations, conversationKey)
		}
	}
}

// AddInboxClient registers a subscriber to a user's inbox stream.
func (h *Hub) AddInboxClient(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.inboxes[userID]; !ok {
		h.inboxes[userID] = make(map[*Client]bool)
	}
	h.inboxes[userID][c] = true
}

// RemoveInboxClient removes an inbox subscriber.
func (h *Hub) RemoveInboxClient(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.inboxes[userID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.inboxes, userID)
		}
	}
}

// BroadcastConversation fans an event out to every subscriber of the
// conversation. Typing events are droppable; any other event that cannot be
// queued closes the lagging subscriber instead of blocking.
func (h *Hub) BroadcastConversation(conversationKey string, event models.ConversationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("marshal conversation event")
		return
	}
	out := outbound{payload: payload, droppable: event.Type == models.EventTyping}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.conversations[conversationKey]))
	for c := range h.conversations[conversationKey] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(out) {
			logger.Warn().Str("conn_id", c.info.ConnID).Msg("subscriber lagging, closing connection")
			c.Close()
			h.RemoveConversationClient(conversationKey, c)
			h.publishWSError("conversation", conversationKey, c, "send buffer full")
		}
	}
}

// BroadcastInbox fans an inbox update out to the user's inbox subscribers.
func (h *Hub) BroadcastInbox(userID string, event models.InboxEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("marshal inbox event")
		return
	}
	out := outbound{payload: payload}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.inboxes[userID]))
	for c := range h.inboxes[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(out) {
			logger.Warn().Str("conn_id", c.info.ConnID).Msg("subscriber lagging, closing connection")
			c.Close()
			h.RemoveInboxClient(userID, c)
			h.publishWSError("inbox", userID, c, "send buffer full")
		}
	}
}

func (h *Hub) publishWSError(kind, resourceKey string, c *Client, reason string) {
	publishLifecycle(context.Background(), kind, resourceKey, "ws_error", reason, c.info)
}
