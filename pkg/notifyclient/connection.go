package notifyclient

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"evergreenrx.com/pharmanotify/pkg/wire"
	"github.com/gorilla/websocket"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// run dials the gateway and keeps redialing until the controller is closed.
// Dial failures back off exponentially; a successful connection resets the
// backoff. Connection failures are never surfaced to the caller, only
// reflected in Connected().
func (c *Controller) run(ctx context.Context) {
	defer close(c.done)

	backoff := initialBackoff
	for {
		conn, err := c.dial(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = initialBackoff

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.mu.Unlock()

		// Room membership is connection-scoped, so the join declaration is
		// re-issued on every connect, not just the first one.
		if err := conn.WriteJSON(wire.Envelope{Event: wire.EventJoinAdmin}); err != nil {
			conn.Close()
			continue
		}

		c.setConnected(true)
		c.readLoop(conn)
		c.setConnected(false)
		conn.Close()

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (c *Controller) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if c.opts.Token != nil {
		if token := c.opts.Token(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.opts.WSURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// readLoop applies pushes in arrival order until the connection dies.
func (c *Controller) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env wire.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		if env.Event != wire.EventNewNotification {
			continue
		}

		var n Notification
		if err := json.Unmarshal(env.Data, &n); err != nil {
			log.Printf("dropping malformed notification push: %v", err)
			continue
		}
		c.handlePush(n)
	}
}
