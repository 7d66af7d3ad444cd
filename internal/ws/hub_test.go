package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"afribase-messaging/internal/models"
)

// newIdleClient builds a client without a writer goroutine so queued frames
// stay observable on the send channel.
func newIdleClient(buffer int) *Client {
	return &Client{
		send: make(chan outbound, buffer),
		done: make(chan struct{}),
		info: ConnInfo{ConnID: "test"},
	}
}

func TestHubAddAndRemoveConversationClient(t *testing.T) {
	hub := NewHub()
	client := newIdleClient(1)

	hub.AddConversationClient("alice:bob", client)
	if len(hub.conversations) != 1 {
		t.Fatalf("expected conversation room to be created")
	}

	hub.RemoveConversationClient("alice:bob", client)
	if len(hub.conversations) != 0 {
		t.Fatalf("expected conversation room to be removed")
	}
}

func TestHubAddAndRemoveInboxClient(t *testing.T) {
	hub := NewHub()
	client := newIdleClient(1)

	hub.AddInboxClient("alice", client)
	if len(hub.inboxes) != 1 {
		t.Fatalf("expected inbox room to be created")
	}

	hub.RemoveInboxClient("alice", client)
	if len(hub.inboxes) != 0 {
		t.Fatalf("expected inbox room to be removed")
	}
}

func TestBroadcastConversationDeliversToSubscribers(t *testing.T) {
	hub := NewHub()
	client := newIdleClient(4)
	hub.AddConversationClient("alice:bob", client)

	msg := models.Message{ID: 7, ConversationKey: "alice:bob", SenderID: "alice", Kind: models.KindText, Body: "hi"}
	hub.BroadcastConversation("alice:bob", models.ConversationEvent{Type: models.EventMessage, Message: &msg})

	select {
	case out := <-client.send:
		var event models.ConversationEvent
		require.NoError(t, json.Unmarshal(out.payload, &event))
		require.Equal(t, models.EventMessage, event.Type)
		require.Equal(t, int64(7), event.Message.ID)
		require.False(t, out.droppable)
	default:
		t.Fatal("expected a queued frame")
	}
}

func TestTypingEventsDropWhenBufferFull(t *testing.T) {
	hub := NewHub()
	client := newIdleClient(1)
	hub.AddConversationClient("alice:bob", client)

	// Fill the buffer, then broadcast a typing signal; the signal is dropped
	// and the connection stays registered.
	require.True(t, client.enqueue(outbound{payload: []byte("{}")}))
	hub.BroadcastConversation("alice:bob", models.ConversationEvent{Type: models.EventTyping, UserID: "alice", IsTyping: true})

	require.Len(t, hub.conversations, 1)
	select {
	case <-client.done:
		t.Fatal("typing overflow must not close the client")
	default:
	}
}

func TestMessageEventsCloseLaggingSubscriber(t *testing.T) {
	hub := NewHub()
	client := newIdleClient(1)
	hub.AddConversationClient("alice:bob", client)

	require.True(t, client.enqueue(outbound{payload: []byte("{}")}))
	msg := models.Message{ID: 1, ConversationKey: "alice:bob", SenderID: "alice"}
	hub.BroadcastConversation("alice:bob", models.ConversationEvent{Type: models.EventMessage, Message: &msg})

	require.Len(t, hub.conversations, 0)
	select {
	case <-client.done:
	default:
		t.Fatal("expected lagging client to be closed")
	}
}
