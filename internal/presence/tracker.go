// Package presence tracks ephemeral per-conversation typing signals. Signals
// are never durable: a client that disconnects without clearing its signal is
// reset by TTL expiry, not by an explicit call.
package presence

import (
	"context"
	"time"
)

// DefaultTTL is the time a typing signal stays live after its last update.
const DefaultTTL = 2 * time.Second

// Tracker records and reports typing signals. Every true write rearms the
// TTL; a false write clears immediately.
type Tracker interface {
	SetTyping(ctx context.Context, conversationKey, userID string, isTyping bool) error
	IsTyping(ctx context.Context, conversationKey, userID string) (bool, error)
	Close() error
}

func signalKey(conversationKey, userID string) string {
	return "typing:" + conversationKey + ":" + userID
}
