package presence

import (
	"context"
	"sync"
	"time"
)

// MemoryTracker keeps typing signals in process memory with one cancellable
// timer per signal. Used when Redis is not configured, and in tests.
type MemoryTracker struct {
	ttl    time.Duration
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewMemoryTracker builds an in-memory tracker with the given TTL.
func NewMemoryTracker(ttl time.Duration) *MemoryTracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryTracker{
		ttl:    ttl,
		timers: make(map[string]*time.Timer),
	}
}

func (t *MemoryTracker) SetTyping(_ context.Context, conversationKey, userID string, isTyping bool) error {
	key := signalKey(conversationKey, userID)

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.timers[key]; ok {
		existing.Stop()
		delete(t.timers, key)
	}
	if !isTyping {
		return nil
	}

	var timer *time.Timer
	timer = time.AfterFunc(t.ttl, func() {
		t.mu.Lock()
		// A rearm may have replaced this timer after it fired.
		if t.timers[key] == timer {
			delete(t.timers, key)
		}
		t.mu.Unlock()
	})
	t.timers[key] = timer
	return nil
}

func (t *MemoryTracker) IsTyping(_ context.Context, conversationKey, userID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.timers[signalKey(conversationKey, userID)]
	return ok, nil
}

func (t *MemoryTracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, timer := range t.timers {
		timer.Stop()
		delete(t.timers, key)
	}
	return nil
}

var _ Tracker = (*MemoryTracker)(nil)
