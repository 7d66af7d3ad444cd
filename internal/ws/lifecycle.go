package ws

import (
	"context"
	"time"

	"afribase-messaging/internal/observability"
)

// publishLifecycle emits a ws_connect/ws_disconnect/ws_error event for one
// connection. Delivery is best-effort; failures never affect the connection.
func publishLifecycle(ctx context.Context, kind, resourceKey, event, reason string, info ConnInfo) {
	var durationMS int64
	if event != "ws_connect" {
		durationMS = time.Since(info.ConnectedAt).Milliseconds()
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":         kind,
			"resource_key": resourceKey,
			"event":        event,
			"conn_id":      info.ConnID,
			"duration_ms":  durationMS,
			"reason":       reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	observability.IncWSEvent(kind, event)
	observability.EmitEvent(ctx, wsRoutingKey(kind), observability.Envelope{
		Type:    "ws_events",
		Name:    event,
		Payload: payload,
	}, observability.CorrelationHeaders(info.RequestID, info.TraceID))
}
