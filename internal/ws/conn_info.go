package ws

import "time"

// ConnInfo identifies one channel connection for metrics and audit events.
type ConnInfo struct {
	ConnID      string
	UserID      int
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
