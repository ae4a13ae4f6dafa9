// Package wire defines the envelope exchanged over the notification
// WebSocket. Both the gateway and the client controller speak this format.
package wire

import "encoding/json"

// Server -> client events.
const (
	EventNewNotification = "new-notification"
)

// Client -> server events. Room membership is connection-scoped: a client
// must re-join after every reconnect.
const (
	EventJoinAdmin = "join-admin"
	EventJoinUser  = "join-user"
	EventLeaveUser = "leave-user"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinPayload accompanies join-user / leave-user.
type JoinPayload struct {
	UserID string `json:"user_id"`
}
