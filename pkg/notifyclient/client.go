// Package notifyclient implements the admin-side notification controller:
// it owns one live connection to the notification gateway, a local
// newest-first cache reconciled from REST fetches and real-time pushes, and
// the mutation calls that keep the cache in step with the server.
package notifyclient

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Notification mirrors the server's wire shape. Data is carried through
// unmodified.
type Notification struct {
	ID        uint            `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Read      bool            `json:"read"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SeverityFor picks the toast variant for a notification type.
func SeverityFor(notifType string) Severity {
	switch notifType {
	case "payment":
		return SeverityCritical
	case "inventory":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Hooks are the controller's outward side effects. All are optional.
// PlaySound errors are swallowed (browser-autoplay style restrictions are
// not the controller's problem); OnToast fires for every accepted push.
type Hooks struct {
	OnToast           func(n Notification, severity Severity)
	PlaySound         func() error
	OnConnectedChange func(connected bool)
}

type Options struct {
	// BaseURL is the REST prefix, e.g. "http://host/api".
	BaseURL string
	// WSURL is the gateway endpoint, e.g. "ws://host/api/notifications/ws".
	WSURL string
	// Token supplies the bearer credential per request. A nil or
	// empty-returning func degrades mutations to auth failures, never a
	// crash.
	Token func() string

	HTTPClient *http.Client
	Dialer     *websocket.Dialer
	Hooks      Hooks
}

// Controller is safe for use from multiple goroutines. One mutex guards the
// cache and the closed flag; every cache change is a read-then-write inside
// a single critical section so interleaved completions cannot lose updates.
type Controller struct {
	opts       Options
	httpClient *http.Client
	dialer     *websocket.Dialer

	mu        sync.Mutex
	cache     []Notification
	closed    bool
	connected bool
	soundOn   bool
	conn      *websocket.Conn

	cancel context.CancelFunc
	done   chan struct{}
}

func New(opts Options) *Controller {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	return &Controller{
		opts:       opts,
		httpClient: httpClient,
		dialer:     dialer,
		done:       make(chan struct{}),
	}
}

// Start opens the channel and keeps it open until Close. Reconnection is
// automatic; a disconnected gateway is a normal state, not an error.
func (c *Controller) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx)
}

// Close tears the controller down deterministically: the connection is
// closed, the reconnect loop exits, and any event still in flight is
// dropped silently. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	if conn != nil {
		conn.Close()
	}
	if c.cancel != nil {
		<-c.done
	}
}

func (c *Controller) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Controller) SetSoundEnabled(enabled bool) {
	c.mu.Lock()
	c.soundOn = enabled
	c.mu.Unlock()
}

// Notifications returns a snapshot copy; callers never touch the cache
// directly.
func (c *Controller) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.cache))
	copy(out, c.cache)
	return out
}

// UnreadCount is always derived from the cache, never tracked separately,
// so it cannot drift from the read flags.
func (c *Controller) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, n := range c.cache {
		if !n.Read {
			count++
		}
	}
	return count
}

// handlePush merges one pushed notification into the cache. Duplicate IDs
// (reconnect replay) are a no-op: no reorder, no duplicate entry. New
// entries land at the front, preserving newest-first ordering.
func (c *Controller) handlePush(n Notification) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	for _, existing := range c.cache {
		if existing.ID == n.ID {
			c.mu.Unlock()
			return
		}
	}
	c.cache = append([]Notification{n}, c.cache...)
	sound := c.soundOn
	c.mu.Unlock()

	if c.opts.Hooks.OnToast != nil {
		c.opts.Hooks.OnToast(n, SeverityFor(n.Type))
	}
	if sound && c.opts.Hooks.PlaySound != nil {
		if err := c.opts.Hooks.PlaySound(); err != nil {
			log.Printf("notification sound failed: %v", err)
		}
	}
}

func (c *Controller) setConnected(connected bool) {
	c.mu.Lock()
	if c.closed && connected {
		c.mu.Unlock()
		return
	}
	changed := c.connected != connected
	c.connected = connected
	c.mu.Unlock()

	if changed && c.opts.Hooks.OnConnectedChange != nil {
		c.opts.Hooks.OnConnectedChange(connected)
	}
}
