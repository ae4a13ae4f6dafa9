package gateway

import (
	"log"
	"sync"
)

// Room names. Admin sessions fan out through RoomAdmin; per-user rooms exist
// for targeted delivery.
const RoomAdmin = "admin"

func RoomForUser(userID string) string {
	return "user:" + userID
}

// Hub tracks which connections are in which rooms and multicasts payloads.
// Membership is connection-scoped: when a connection drops, all of its
// memberships drop with it.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

// Join is idempotent; joining a room twice is a no-op.
func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[room] = members
	}
	members[c] = true
}

func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(room, c)
}

// Remove drops the client from every room it joined.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.rooms {
		h.leaveLocked(room, c)
	}
}

func (h *Hub) leaveLocked(room string, c *Client) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast queues the payload on every member of the room. A member whose
// send buffer is full is disconnected rather than blocked on, so one slow
// consumer cannot stall the fan-out.
func (h *Hub) Broadcast(room string, payload []byte) {
	h.mu.RLock()
	var stalled []*Client
	for c := range h.rooms[room] {
		select {
		case c.send <- payload:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		log.Printf("dropping slow websocket client in room %s", room)
		c.closeSend()
		h.Remove(c)
	}
}

// RoomSize reports current membership, mainly for tests and diagnostics.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
