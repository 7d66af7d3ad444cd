package ws

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// ConnInfo is the per-connection metadata snapshot taken at handshake time.
// It travels with every lifecycle event the connection emits.
type ConnInfo struct {
	ConnID      string
	UserID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

// connInfoFromRequest captures the caller's identity and network metadata for
// the lifetime of the connection.
func connInfoFromRequest(r *http.Request, userID, traceID string) ConnInfo {
	return ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    r.Header.Get("X-Device-Id"),
		IP:          clientIP(r),
		RequestID:   r.Header.Get("X-Request-Id"),
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
}

// clientIP prefers the first X-Forwarded-For hop, which the edge proxy sets.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
