package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryTrackerSetAndClear(t *testing.T) {
	tracker := NewMemoryTracker(time.Minute)
	defer tracker.Close()
	ctx := context.Background()

	require.NoError(t, tracker.SetTyping(ctx, "alice:bob", "alice", true))
	typing, err := tracker.IsTyping(ctx, "alice:bob", "alice")
	require.NoError(t, err)
	require.True(t, typing)

	// Other user in the same conversation is unaffected.
	typing, err = tracker.IsTyping(ctx, "alice:bob", "bob")
	require.NoError(t, err)
	require.False(t, typing)

	require.NoError(t, tracker.SetTyping(ctx, "alice:bob", "alice", false))
	typing, err = tracker.IsTyping(ctx, "alice:bob", "alice")
	require.NoError(t, err)
	require.False(t, typing)
}

func TestMemoryTrackerExpiresWithoutExplicitClear(t *testing.T) {
	tracker := NewMemoryTracker(20 * time.Millisecond)
	defer tracker.Close()
	ctx := context.Background()

	require.NoError(t, tracker.SetTyping(ctx, "alice:bob", "alice", true))

	time.Sleep(60 * time.Millisecond)

	typing, err := tracker.IsTyping(ctx, "alice:bob", "alice")
	require.NoError(t, err)
	require.False(t, typing)
}

func TestMemoryTrackerRearmExtendsTTL(t *testing.T) {
	tracker := NewMemoryTracker(50 * time.Millisecond)
	defer tracker.Close()
	ctx := context.Background()

	require.NoError(t, tracker.SetTyping(ctx, "alice:bob", "alice", true))
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, tracker.SetTyping(ctx, "alice:bob", "alice", true))
	time.Sleep(30 * time.Millisecond)

	// The rearm reset the clock, so the signal is still live.
	typing, err := tracker.IsTyping(ctx, "alice:bob", "alice")
	require.NoError(t, err)
	require.True(t, typing)
}
