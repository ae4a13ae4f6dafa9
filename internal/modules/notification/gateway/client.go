package gateway

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"evergreenrx.com/pharmanotify/pkg/wire"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	// sendBuffer bounds per-connection backlog; overflow drops the client.
	sendBuffer = 64
)

// Client is one WebSocket connection attached to the hub. The caller decides
// rooms by sending join/leave envelopes; nothing is joined implicitly.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	admin  bool

	send     chan []byte
	sendOnce sync.Once
}

// Serve attaches the connection to the hub and runs the read/write pumps.
// It returns when the connection is gone.
func Serve(hub *Hub, conn *websocket.Conn, userID string, admin bool) {
	c := &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		admin:  admin,
		send:   make(chan []byte, sendBuffer),
	}

	go c.writePump()
	c.readPump()
}

func (c *Client) closeSend() {
	c.sendOnce.Do(func() { close(c.send) })
}

// readPump consumes client envelopes (room membership changes) until the
// connection errors out, then tears everything down.
func (c *Client) readPump() {
	defer func() {
		c.hub.Remove(c)
		c.closeSend()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		var env wire.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		c.handleEnvelope(env)
	}
}

func (c *Client) handleEnvelope(env wire.Envelope) {
	switch env.Event {
	case wire.EventJoinAdmin:
		if c.admin {
			c.hub.Join(RoomAdmin, c)
		}
	case wire.EventJoinUser:
		if room, ok := c.userRoom(env.Data); ok {
			c.hub.Join(room, c)
		}
	case wire.EventLeaveUser:
		if room, ok := c.userRoom(env.Data); ok {
			c.hub.Leave(room, c)
		}
	}
}

// userRoom resolves a join-user/leave-user payload to a room. A connection
// may only manage its own user room; the payload is optional shorthand.
func (c *Client) userRoom(data json.RawMessage) (string, bool) {
	var p wire.JoinPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			return "", false
		}
	}
	if p.UserID == "" {
		p.UserID = c.userID
	}
	if p.UserID != c.userID {
		return "", false
	}
	return RoomForUser(p.UserID), true
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
